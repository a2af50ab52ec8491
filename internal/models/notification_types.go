package models

import "time"

// NotificationType is one of the business-threshold alerts.
type NotificationType string

const (
	NotificationHighPurchaseQuantity NotificationType = "high_purchase_quantity"
	NotificationHighSalesAmount      NotificationType = "high_sales_amount"
	NotificationLowInventory         NotificationType = "low_inventory"
)

// Notification is the model for the 'notifications' table
type Notification struct {
	ID          int64            `json:"id" db:"id"`
	Type        NotificationType `json:"type" db:"type"`
	Message     string           `json:"message" db:"message"`
	Link        *string          `json:"link,omitempty" db:"link"`
	IsRead      bool             `json:"isRead" db:"is_read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	TriggeredBy *int64           `json:"triggeredBy,omitempty" db:"triggered_by"`
}
