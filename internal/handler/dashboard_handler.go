package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-pos-backoffice/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// GET /api/v1/dashboard/sales?days=7
func (h *DashboardHandler) GetSalesByDay(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetSalesByDay(queryInt(c, "days", 7))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(data)
}

// GET /api/v1/dashboard/stock-movement?days=7
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetStockMovement(queryInt(c, "days", 7))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(data)
}
