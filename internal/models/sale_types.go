package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the model for the 'sales' table.
// TotalPrice is always PurchaseQuantity * PricePerUnit; PurchaseDate never changes after insert.
type Sale struct {
	ID               int64           `json:"id" db:"id"`
	MemberID         int64           `json:"memberId" db:"member_id"`
	ItemName         string          `json:"itemName" db:"item_name"`
	PurchaseQuantity int             `json:"purchaseQuantity" db:"purchase_quantity"`
	PricePerUnit     decimal.Decimal `json:"pricePerUnit" db:"price_per_unit"`
	TotalPrice       decimal.Decimal `json:"totalPrice" db:"total_price"`
	PurchaseDate     time.Time       `json:"purchaseDate" db:"purchase_date"`
}
