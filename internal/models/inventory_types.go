package models

import "time"

// Inventory is the model for the 'inventory' table, one row per item name.
type Inventory struct {
	ID                        int64     `json:"id" db:"id"`
	ItemName                  string    `json:"itemName" db:"item_name"`
	Slug                      string    `json:"slug" db:"slug"`
	InventoryAmount           int       `json:"inventoryAmount" db:"inventory_amount"`
	RemainingQuantity         int       `json:"remainingQuantity" db:"remaining_quantity"`
	RecommendedInventoryLevel int       `json:"recommendedInventoryLevel" db:"recommended_inventory_level"`
	UpdatedAt                 time.Time `json:"updatedAt" db:"updated_at"`
}
