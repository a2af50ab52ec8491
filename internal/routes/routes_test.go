package routes

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/01moynul/gotogro-members/internal/auth"
	"github.com/01moynul/gotogro-members/internal/database"
	"github.com/01moynul/gotogro-members/internal/handlers"
	"github.com/01moynul/gotogro-members/internal/sales"
)

type testAPI struct {
	t      *testing.T
	db     *sql.DB
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, dialect, err := database.Open(ctx, "sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, dialect))

	tokens, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	h := &handlers.Handlers{
		DB:     db,
		Sales:  sales.NewService(db, dialect, sales.DefaultConfig(), zap.NewNop()),
		Tokens: tokens,
		Log:    zap.NewNop(),
	}
	router := SetupRouter(h, Options{CORSOrigin: "http://localhost:5173", LoginPerMin: 3})
	return &testAPI{t: t, db: db, router: router}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

// register creates a member and returns its token and id.
func (a *testAPI) register(username string) (string, int64) {
	a.t.Helper()
	w, body := a.do(http.MethodPost, "/v1/register", "", gin.H{
		"username":        username,
		"email":           username + "@example.com",
		"firstName":       "Test",
		"lastName":        "Member",
		"password":        "greenGrocer#42",
		"confirmPassword": "greenGrocer#42",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	user := body["user"].(map[string]any)
	return body["token"].(string), int64(user["id"].(float64))
}

func (a *testAPI) promote(userID int64) {
	a.t.Helper()
	_, err := a.db.Exec(`UPDATE users SET role = 'manager' WHERE id = ?`, userID)
	require.NoError(a.t, err)
}

func TestPing(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(http.MethodGet, "/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong!", body["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightIsAnswered(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodOptions, "/v1/sales", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	w, body := api.do(http.MethodPost, "/v1/register", "", gin.H{
		"username":        "alice",
		"email":           "other@example.com",
		"firstName":       "Other",
		"lastName":        "Person",
		"password":        "greenGrocer#42",
		"confirmPassword": "greenGrocer#42",
	})
	assert.Equal(t, http.StatusConflict, w.Code, body)

	w, body = api.do(http.MethodPost, "/v1/register", "", gin.H{
		"username":        "bob",
		"email":           "bob@example.com",
		"firstName":       "Bob",
		"lastName":        "Member",
		"password":        "12345678901",
		"confirmPassword": "12345678901",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "your password cannot be entirely numeric", body["error"])

	w, body = api.do(http.MethodPost, "/v1/login", "", gin.H{"username": "alice", "password": "greenGrocer#42"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])

	w, _ = api.do(http.MethodPost, "/v1/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	api := newTestAPI(t)

	var last int
	for i := 0; i < 4; i++ {
		w, _ := api.do(http.MethodPost, "/v1/login", "", gin.H{"username": "nobody", "password": "whatever1"})
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestMemberRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/v1/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/v1/sales", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordSaleFlow(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("alice")

	w, body := api.do(http.MethodPost, "/v1/sales", token, gin.H{
		"itemName":         "Rice 5kg",
		"purchaseQuantity": 950,
		"pricePerUnit":     "2.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := body["sale"].(map[string]any)
	assert.Equal(t, "1900", sale["totalPrice"])
	saleID := int64(sale["id"].(float64))

	w, body = api.do(http.MethodGet, "/v1/inventory/rice-5kg", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inv := body["inventory"].(map[string]any)
	assert.EqualValues(t, 50, inv["remainingQuantity"])
	assert.EqualValues(t, 1900, inv["recommendedInventoryLevel"])

	w, body = api.do(http.MethodPost, "/v1/sales", token, gin.H{
		"itemName":         "Rice 5kg",
		"purchaseQuantity": 51,
		"pricePerUnit":     2,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 50, body["available"])

	w, body = api.do(http.MethodGet, "/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifications := body["notifications"].([]any)
	assert.Len(t, notifications, 2)

	w, body = api.do(http.MethodPut, fmt.Sprintf("/v1/sales/%d", saleID), token, gin.H{"purchaseQuantity": 900})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1800", body["sale"].(map[string]any)["totalPrice"])

	w, body = api.do(http.MethodGet, "/v1/sales", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["sales"].([]any), 1)

	w, body = api.do(http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["saleCount"])
	assert.Equal(t, "1800", body["salesTotal"])
	assert.EqualValues(t, 3, body["unreadNotifications"])
	assert.EqualValues(t, 0, body["lowInventoryItems"])

	w, body = api.do(http.MethodPost, "/v1/sales/delete", token, gin.H{"ids": []int64{saleID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["deleted"])

	w, body = api.do(http.MethodGet, "/v1/inventory/rice-5kg", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1000, body["inventory"].(map[string]any)["remainingQuantity"])
}

func TestRecordSaleValidation(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("alice")

	cases := []gin.H{
		{"itemName": "Tea", "purchaseQuantity": 0, "pricePerUnit": "1"},
		{"itemName": "Tea", "purchaseQuantity": -1, "pricePerUnit": "1"},
		{"itemName": "Tea", "purchaseQuantity": 1, "pricePerUnit": "-1"},
		{"itemName": "Tea", "purchaseQuantity": 1, "pricePerUnit": "1.999"},
		{"purchaseQuantity": 1, "pricePerUnit": "1"},
		{"itemName": "Rice", "purchaseQuantity": 5},
		{"itemName": "Rice", "purchaseQuantity": 5, "pricePerUnit": nil},
		{"itemName": "!!!", "purchaseQuantity": 1, "pricePerUnit": "1"},
		{"itemName": "Tea", "purchaseQuantity": 1, "pricePerUnit": "100000000"},
	}
	for _, input := range cases {
		w, _ := api.do(http.MethodPost, "/v1/sales", token, input)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", input)
	}

	var sales int
	require.NoError(t, api.db.QueryRow("SELECT COUNT(*) FROM sales").Scan(&sales))
	assert.Zero(t, sales)
}

func TestUpdateOtherMembersSaleIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	alice, _ := api.register("alice")
	bob, _ := api.register("bob")

	w, body := api.do(http.MethodPost, "/v1/sales", alice, gin.H{"itemName": "Jam", "purchaseQuantity": 3, "pricePerUnit": "4.25"})
	require.Equal(t, http.StatusCreated, w.Code)
	saleID := int64(body["sale"].(map[string]any)["id"].(float64))

	w, _ = api.do(http.MethodPut, fmt.Sprintf("/v1/sales/%d", saleID), bob, gin.H{"purchaseQuantity": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodPut, "/v1/sales/abc", alice, gin.H{"purchaseQuantity": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManagerRoutes(t *testing.T) {
	api := newTestAPI(t)
	member, _ := api.register("alice")
	manager, managerID := api.register("mgr")
	api.promote(managerID)

	w, _ := api.do(http.MethodGet, "/v1/manager/notifications", member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := api.do(http.MethodPost, "/v1/manager/inventory", manager, gin.H{"itemName": "Olive Oil", "inventoryAmount": 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 120, body["inventory"].(map[string]any)["remainingQuantity"])

	w, _ = api.do(http.MethodPost, "/v1/sales", member, gin.H{"itemName": "Olive Oil", "purchaseQuantity": 100, "pricePerUnit": "9.99"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = api.do(http.MethodPut, "/v1/manager/inventory/olive-oil", manager, gin.H{"inventoryAmount": 99})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 100, body["committed"])

	w, body = api.do(http.MethodPut, "/v1/manager/inventory/olive-oil", manager, gin.H{"inventoryAmount": 400})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 300, body["inventory"].(map[string]any)["remainingQuantity"])

	w, _ = api.do(http.MethodPut, "/v1/manager/inventory/unknown", manager, gin.H{"inventoryAmount": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = api.do(http.MethodGet, "/v1/manager/notifications", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifications := body["notifications"].([]any)
	require.Len(t, notifications, 2)

	// Members see nothing they did not trigger, managers may mark any notification.
	w, body = api.do(http.MethodGet, "/v1/notifications", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["notifications"])

	first := notifications[0].(map[string]any)
	w, _ = api.do(http.MethodPatch, fmt.Sprintf("/v1/notifications/%d/read", int64(first["id"].(float64))), manager, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMarkNotificationAsRead(t *testing.T) {
	api := newTestAPI(t)
	alice, _ := api.register("alice")
	bob, _ := api.register("bob")

	w, _ := api.do(http.MethodPost, "/v1/sales", alice, gin.H{"itemName": "Flour", "purchaseQuantity": 150, "pricePerUnit": "1"})
	require.Equal(t, http.StatusCreated, w.Code)

	_, body := api.do(http.MethodGet, "/v1/notifications", alice, nil)
	notifications := body["notifications"].([]any)
	require.Len(t, notifications, 1)
	path := fmt.Sprintf("/v1/notifications/%d/read", int64(notifications[0].(map[string]any)["id"].(float64)))

	w, _ = api.do(http.MethodPatch, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodPatch, path, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, body = api.do(http.MethodGet, "/v1/notifications", alice, nil)
	assert.Equal(t, true, body["notifications"].([]any)[0].(map[string]any)["isRead"])
}

func TestProfileAndTransactions(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("alice")

	w, body := api.do(http.MethodPut, "/v1/profile", token, gin.H{
		"username":    "alice",
		"email":       "alice@example.org",
		"firstName":   "Alice",
		"lastName":    "Grocer",
		"address":     "1 Market St",
		"phoneNumber": "0400000000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alice", body["profile"].(map[string]any)["firstName"])

	w, body = api.do(http.MethodPost, "/v1/transactions", token, gin.H{"amount": "12.50", "description": "lunch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	txID := int64(body["transaction"].(map[string]any)["id"].(float64))

	w, _ = api.do(http.MethodPost, "/v1/transactions", token, gin.H{"amount": "1.005", "description": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(http.MethodGet, "/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["transactions"].([]any), 1)

	w, body = api.do(http.MethodPost, "/v1/transactions/delete", token, gin.H{"ids": []int64{txID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["deleted"])

	w, _ = api.do(http.MethodPost, "/v1/profile/password", token, gin.H{
		"oldPassword":     "wrong",
		"newPassword":     "freshProduce#7",
		"confirmPassword": "freshProduce#7",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/v1/profile/password", token, gin.H{
		"oldPassword":     "greenGrocer#42",
		"newPassword":     "freshProduce#7",
		"confirmPassword": "freshProduce#7",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodPost, "/v1/login", "", gin.H{"username": "alice", "password": "freshProduce#7"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteProfile(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("alice")

	w, _ := api.do(http.MethodPost, "/v1/sales", token, gin.H{"itemName": "Salt", "purchaseQuantity": 10, "pricePerUnit": "1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = api.do(http.MethodDelete, "/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The token outlives the account but no longer grants access.
	w, _ = api.do(http.MethodGet, "/v1/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var remaining int
	require.NoError(t, api.db.QueryRow(`SELECT remaining_quantity FROM inventory WHERE item_name = 'Salt'`).Scan(&remaining))
	assert.Equal(t, 1000, remaining)
}
