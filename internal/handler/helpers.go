package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/service"
)

// getUserID reads the acting user from locals set by RequireAuth.
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserUUID(c *fiber.Ctx) uuid.UUID {
	id, err := uuid.Parse(getUserID(c))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func queryInt(c *fiber.Ctx, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// respondError maps the service error taxonomy onto HTTP statuses. Domain
// rule violations are client errors; only unknown failures become 500s.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr   *apperr.ValidationError
		notFoundErr     *apperr.NotFoundError
		inactiveErr     *apperr.InactiveProductError
		stockErr        *apperr.InsufficientStockError
		overpaymentErr  *apperr.OverpaymentError
		invalidStateErr *apperr.InvalidStateError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &inactiveErr),
		errors.As(err, &stockErr),
		errors.As(err, &overpaymentErr):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &notFoundErr):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &invalidStateErr):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSKUExists),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrCategoryNameExists),
		errors.Is(err, apperr.ErrOrderNumberConflict):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "record not found"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
