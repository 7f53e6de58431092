package handler

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/service"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, reqErr)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRespondErrorStatusMapping(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, 400, statusFor(t, apperr.NewValidation("quantity", "must be greater than zero")))
	assert.Equal(t, 400, statusFor(t, &apperr.InactiveProductError{ProductID: id, ProductName: "Old Blend"}))
	assert.Equal(t, 400, statusFor(t, &apperr.InsufficientStockError{ProductID: id, Requested: 5, Available: 2}))
	assert.Equal(t, 400, statusFor(t, &apperr.OverpaymentError{OrderID: id}))

	assert.Equal(t, 404, statusFor(t, apperr.NewNotFound("order", id)))

	assert.Equal(t, 409, statusFor(t, &apperr.InvalidStateError{OrderID: id, Status: "cancelled", Operation: "add items"}))
	assert.Equal(t, 409, statusFor(t, service.ErrSKUExists))

	assert.Equal(t, 500, statusFor(t, errors.New("boom")))
}

func TestRespondErrorMapsWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("loading order"), apperr.NewNotFound("order", uuid.New()))
	assert.Equal(t, 404, statusFor(t, wrapped))
}
