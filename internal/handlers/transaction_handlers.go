package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/gotogro-members/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Personal Transaction Handlers ---
//

// GetTransactions is the handler for GET /v1/transactions
func (h *Handlers) GetTransactions(c *gin.Context) {
	query := `
		SELECT id, user_id, date, amount, description
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`

	rows, err := h.DB.QueryContext(c, query, currentUserID(c))
	if err != nil {
		h.serverError(c, err, "Failed to fetch transactions")
		return
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Amount, &t.Description); err != nil {
			h.serverError(c, err, "Failed to scan transaction")
			return
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		h.serverError(c, err, "Error iterating transaction rows")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

type AddTransactionInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required,max=255"`
}

// AddTransaction is the handler for POST /v1/transactions
func (h *Handlers) AddTransaction(c *gin.Context) {
	var input AddTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must have at most 2 decimal places"})
		return
	}
	// DECIMAL(10,2)
	if input.Amount.Abs().GreaterThanOrEqual(decimal.New(1, 8)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is too large"})
		return
	}

	t := models.Transaction{
		UserID:      currentUserID(c),
		Date:        time.Now(),
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
	}

	result, err := h.DB.ExecContext(c,
		"INSERT INTO transactions (user_id, date, amount, description) VALUES (?, ?, ?, ?)",
		t.UserID, t.Date, t.Amount, t.Description)
	if err != nil {
		h.serverError(c, err, "Failed to add transaction")
		return
	}
	if t.ID, err = result.LastInsertId(); err != nil {
		h.serverError(c, err, "Failed to get new transaction ID")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Transaction added successfully.",
		"transaction": t,
	})
}

// DeleteTransactions is the handler for POST /v1/transactions/delete
func (h *Handlers) DeleteTransactions(c *gin.Context) {
	var input DeleteByIDsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No transactions have been selected for deletion."})
		return
	}

	args := []any{currentUserID(c)}
	for _, id := range input.IDs {
		args = append(args, id)
	}
	query := "DELETE FROM transactions WHERE user_id = ? AND id IN (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(input.IDs)), ", ") + ")"

	result, err := h.DB.ExecContext(c, query, args...)
	if err != nil {
		h.serverError(c, err, "Failed to delete transactions")
		return
	}
	deleted, _ := result.RowsAffected()

	c.JSON(http.StatusOK, gin.H{
		"message": "Selected transactions have been deleted.",
		"deleted": deleted,
	})
}
