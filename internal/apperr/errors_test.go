package apperr

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{
		ProductName: "Iced Latte",
		Requested:   5,
		Available:   3,
	}
	assert.Equal(t, "insufficient stock for 'Iced Latte': requested 5, available 3", err.Error())
}

func TestOverpaymentErrorMessage(t *testing.T) {
	err := &OverpaymentError{
		OrderID:   uuid.New(),
		Remaining: decimal.RequireFromString("12.5"),
	}
	assert.Equal(t, "payment exceeds order total: remaining balance is 12.50", err.Error())
}

func TestInvalidStateErrorMessage(t *testing.T) {
	err := &InvalidStateError{
		OrderID:   uuid.New(),
		Status:    "cancelled",
		Operation: "add payment",
	}
	assert.Equal(t, "cannot add payment: order is cancelled", err.Error())
}

func TestIsNotFound(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("loading order: %w", NewNotFound("order", id))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(ErrOrderNumberConflict))
}
