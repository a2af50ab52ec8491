package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Sale Handlers ---
//

type RecordSaleInput struct {
	ItemName         string           `json:"itemName" binding:"required,max=255"`
	PurchaseQuantity int              `json:"purchaseQuantity" binding:"required"`
	PricePerUnit     *decimal.Decimal `json:"pricePerUnit" binding:"required"`
}

// RecordSale is the handler for POST /v1/sales
func (h *Handlers) RecordSale(c *gin.Context) {
	var input RecordSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.Sales.Record(c.Request.Context(), currentUserID(c), input.ItemName, input.PurchaseQuantity, *input.PricePerUnit)
	if err != nil {
		h.respondSalesError(c, err, "Failed to record sale")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale recorded successfully",
		"sale":    sale,
	})
}

// GetSalesHistory is the handler for GET /v1/sales
// It lists the logged-in member's sales, newest first.
func (h *Handlers) GetSalesHistory(c *gin.Context) {
	sales, err := h.Sales.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.serverError(c, err, "Failed to fetch sales")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

type UpdateSaleInput struct {
	PurchaseQuantity int `json:"purchaseQuantity" binding:"required"`
}

// UpdateSale is the handler for PUT /v1/sales/:id
// Only the quantity of a sale can change.
func (h *Handlers) UpdateSale(c *gin.Context) {
	saleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	var input UpdateSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.Sales.Update(c.Request.Context(), currentUserID(c), saleID, input.PurchaseQuantity)
	if err != nil {
		h.respondSalesError(c, err, "Failed to update sale")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale updated successfully",
		"sale":    sale,
	})
}

type DeleteByIDsInput struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// DeleteSales is the handler for POST /v1/sales/delete
func (h *Handlers) DeleteSales(c *gin.Context) {
	var input DeleteByIDsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.Sales.Delete(c.Request.Context(), currentUserID(c), input.IDs)
	if err != nil {
		h.respondSalesError(c, err, "Failed to delete sales")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Selected sales have been deleted.",
		"deleted": deleted,
	})
}
