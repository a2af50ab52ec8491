package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Member Dashboard Stats ---
//

type MemberStats struct {
	SaleCount           int             `json:"saleCount"`
	SalesTotal          decimal.Decimal `json:"salesTotal"`
	UnreadNotifications int             `json:"unreadNotifications"`
	LowInventoryItems   int             `json:"lowInventoryItems"`
}

// GetDashboardStats returns KPI data for the member dashboard
// GET /v1/dashboard
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	userID := currentUserID(c)
	stats := MemberStats{}

	// 1. Sales count and total
	// COALESCE(..., 0) returns 0 instead of NULL for a member without sales
	err := h.DB.QueryRowContext(c,
		"SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM sales WHERE member_id = ?", userID).
		Scan(&stats.SaleCount, &stats.SalesTotal)
	if err != nil {
		h.serverError(c, err, "Failed to calculate sales total")
		return
	}
	stats.SalesTotal = stats.SalesTotal.Round(2)

	// 2. Unread notifications triggered by this member
	err = h.DB.QueryRowContext(c,
		"SELECT COUNT(*) FROM notifications WHERE triggered_by = ? AND is_read = 0", userID).
		Scan(&stats.UnreadNotifications)
	if err != nil {
		h.serverError(c, err, "Failed to count notifications")
		return
	}

	// 3. Items at or below the low inventory threshold
	err = h.DB.QueryRowContext(c,
		"SELECT COUNT(*) FROM inventory WHERE remaining_quantity <= ?", h.Sales.LowInventoryThreshold()).
		Scan(&stats.LowInventoryItems)
	if err != nil {
		h.serverError(c, err, "Failed to count low inventory items")
		return
	}

	c.JSON(http.StatusOK, stats)
}
