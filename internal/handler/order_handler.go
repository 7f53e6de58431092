package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
	"go-pos-backoffice/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder opens a new order, reserves stock, and optionally records the
// first payment in the same unit of work.
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.CreateOrder(&req, getUserUUID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

// AddItems appends lines to an open order and re-prices it.
// POST /api/v1/orders/:id/items
func (h *OrderHandler) AddItems(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.AddItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.AddItems(orderID, &req, getUserUUID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Items added", "data": order})
}

// UpdateDiscount replaces the order's discount and re-prices it.
// PUT /api/v1/orders/:id/discount
func (h *OrderHandler) UpdateDiscount(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.DiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.UpdateDiscount(orderID, &req, getUserUUID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Discount updated", "data": order})
}

// AddPayment records a payment against the order's remaining balance.
// POST /api/v1/orders/:id/payments
func (h *OrderHandler) AddPayment(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.AddPayment(orderID, &req, getUserUUID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Payment recorded", "data": order})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder voids the order and returns reserved stock.
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.CancelOrder(orderID, req.Reason, getUserUUID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Order cancelled", "data": order})
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateStatus is the admin override for order status. Setting cancelled goes
// through the regular cancellation path so stock is still returned.
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.UpdateStatus(orderID, req.Status, getUserUUID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Status updated", "data": order})
}

// GetOrder returns one order with its items and payments.
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.orderService.GetOrder(orderID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(order)
}

// ListOrders supports status, payment status, customer and date filters.
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		Status:        model.OrderStatus(c.Query("status")),
		PaymentStatus: model.PaymentStatus(c.Query("payment_status")),
		Limit:         queryInt(c, "limit", 50),
		Offset:        queryInt(c, "offset", 0),
	}

	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
		}
		filter.CustomerID = &id
	}

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid from date, use YYYY-MM-DD"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid to date, use YYYY-MM-DD"})
		}
		filter.To = &t
	}

	orders, total, err := h.orderService.ListOrders(filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data":  orders,
		"total": total,
	})
}
