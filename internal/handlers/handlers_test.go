package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/01moynul/gotogro-members/internal/sales"
)

func TestRespondSalesError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handlers{Log: zap.NewNop()}

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{
			name: "insufficient inventory",
			err:  &sales.InsufficientInventoryError{ItemName: "Rice", Requested: 10, Available: 4},
			code: http.StatusConflict,
			body: `{"error":"insufficient inventory for Rice: requested 10, available 4","available":4}`,
		},
		{
			name: "below committed",
			err:  fmt.Errorf("set amount: %w", &sales.BelowCommittedError{ItemName: "Rice", Amount: 5, Committed: 9}),
			code: http.StatusConflict,
			body: `{"error":"set amount: inventory amount 5 for Rice is below the 9 units already sold","committed":9}`,
		},
		{
			name: "invalid input",
			err:  fmt.Errorf("%w: purchase quantity must be a positive integer", sales.ErrInvalidInput),
			code: http.StatusBadRequest,
			body: `{"error":"invalid input: purchase quantity must be a positive integer"}`,
		},
		{
			name: "not found",
			err:  fmt.Errorf("sale 3: %w", sales.ErrNotFound),
			code: http.StatusNotFound,
			body: `{"error":"sale 3: not found"}`,
		},
		{
			name: "unexpected",
			err:  errors.New("disk full"),
			code: http.StatusInternalServerError,
			body: `{"error":"Failed to record sale"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/v1/sales", nil)

			h.respondSalesError(c, tt.err, "Failed to record sale")

			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
