package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/01moynul/gotogro-members/internal/auth"
	"github.com/01moynul/gotogro-members/internal/sales"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB
	Sales  *sales.Service
	Tokens *auth.Manager
	Log    *zap.Logger
}

// Querier is implemented by both *sql.DB and *sql.Tx, so helpers can run
// in or out of a transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// currentUserID returns the member id stored by AuthMiddleware.
func currentUserID(c *gin.Context) int64 {
	userID_raw, _ := c.Get("userID")
	return userID_raw.(int64)
}

// respondSalesError maps sales errors onto HTTP responses. Unknown errors
// are logged and reported as 500 with the given message.
func (h *Handlers) respondSalesError(c *gin.Context, err error, message string) {
	var short *sales.InsufficientInventoryError
	var below *sales.BelowCommittedError

	switch {
	case errors.As(err, &short):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "available": short.Available})
	case errors.As(err, &below):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "committed": below.Committed})
	case errors.Is(err, sales.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.serverError(c, err, message)
	}
}

func (h *Handlers) serverError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	h.Log.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
