package handlers

import (
	"net/http"

	"github.com/01moynul/gotogro-members/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

const notificationColumns = `id, type, message, link, is_read, created_at, triggered_by`

func (h *Handlers) listNotifications(c *gin.Context, where string, args ...any) ([]*models.Notification, error) {
	// Unread and newest first, capped to avoid unbounded responses.
	query := `SELECT ` + notificationColumns + ` FROM notifications ` + where + `
		ORDER BY is_read ASC, created_at DESC, id DESC
		LIMIT 50`

	rows, err := h.DB.QueryContext(c, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.Type,
			&notif.Message,
			&notif.Link,
			&notif.IsRead,
			&notif.CreatedAt,
			&notif.TriggeredBy,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, &notif)
	}
	return notifications, rows.Err()
}

// GetMyNotifications is the handler for GET /v1/notifications
// It lists the notifications the logged-in member triggered.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	notifications, err := h.listNotifications(c, "WHERE triggered_by = ?", currentUserID(c))
	if err != nil {
		h.serverError(c, err, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetAllNotifications is the handler for GET /v1/manager/notifications
func (h *Handlers) GetAllNotifications(c *gin.Context) {
	notifications, err := h.listNotifications(c, "")
	if err != nil {
		h.serverError(c, err, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
// Members may only mark their own notifications; managers may mark any.
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	notificationID := c.Param("id")

	query := `UPDATE notifications SET is_read = 1 WHERE id = ?`
	args := []any{notificationID}
	if role, _ := c.Get("userRole"); role != models.RoleManager {
		query += ` AND triggered_by = ?`
		args = append(args, currentUserID(c))
	}

	result, err := h.DB.ExecContext(c, query, args...)
	if err != nil {
		h.serverError(c, err, "Failed to update notification")
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.serverError(c, err, "Failed to check affected rows")
		return
	}

	// Either missing or not visible to this user.
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or you do not have permission to update it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
