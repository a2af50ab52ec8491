package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Inventory Handlers ---
//

// GetInventory is the handler for GET /v1/inventory
func (h *Handlers) GetInventory(c *gin.Context) {
	items, err := h.Sales.ListInventory(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "Failed to fetch inventory")
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": items})
}

// GetInventoryItem is the handler for GET /v1/inventory/:slug
func (h *Handlers) GetInventoryItem(c *gin.Context) {
	inv, err := h.Sales.InventoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondSalesError(c, err, "Failed to fetch inventory item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": inv})
}

type SetInventoryAmountInput struct {
	InventoryAmount *int `json:"inventoryAmount" binding:"required"`
}

// SetInventoryAmount is the handler for PUT /v1/manager/inventory/:slug
func (h *Handlers) SetInventoryAmount(c *gin.Context) {
	var input SetInventoryAmountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	current, err := h.Sales.InventoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.respondSalesError(c, err, "Failed to fetch inventory item")
		return
	}

	inv, err := h.Sales.SetAmount(ctx, current.ItemName, *input.InventoryAmount)
	if err != nil {
		h.respondSalesError(c, err, "Failed to update inventory")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Inventory updated",
		"inventory": inv,
	})
}

type StockItemInput struct {
	ItemName        string `json:"itemName" binding:"required,max=255"`
	InventoryAmount *int   `json:"inventoryAmount" binding:"required"`
}

// StockItem is the handler for POST /v1/manager/inventory.
// It sets the amount of an item, creating its inventory row when needed.
func (h *Handlers) StockItem(c *gin.Context) {
	var input StockItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.Sales.SetAmount(c.Request.Context(), input.ItemName, *input.InventoryAmount)
	if err != nil {
		h.respondSalesError(c, err, "Failed to update inventory")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Inventory updated",
		"inventory": inv,
	})
}
