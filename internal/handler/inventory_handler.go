package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-pos-backoffice/internal/service"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// GetTransactions lists the stock ledger, newest first.
// GET /api/v1/inventory/transactions
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	transactions, err := h.inventoryService.GetTransactions(limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(transactions)
}

// GetProductHistory lists ledger entries for one product.
// GET /api/v1/inventory/products/:id/transactions
func (h *InventoryHandler) GetProductHistory(c *fiber.Ctx) error {
	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	transactions, err := h.inventoryService.GetProductHistory(productID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(transactions)
}
