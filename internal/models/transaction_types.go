package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the model for the 'transactions' table: a member's personal money record.
type Transaction struct {
	ID          int64           `json:"id" db:"id"`
	UserID      int64           `json:"userId" db:"user_id"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
}
