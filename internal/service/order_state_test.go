package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-pos-backoffice/internal/model"
)

func TestStatusAfterPayment(t *testing.T) {
	assert.Equal(t, model.OrderCompleted, StatusAfterPayment(model.OrderPending, model.PaymentPaid))

	// Partial payments never promote.
	assert.Equal(t, model.OrderPending, StatusAfterPayment(model.OrderPending, model.PaymentPartial))

	// Already completed stays completed.
	assert.Equal(t, model.OrderCompleted, StatusAfterPayment(model.OrderCompleted, model.PaymentPaid))
}

func TestCanMutate(t *testing.T) {
	assert.True(t, CanMutate(model.OrderPending))
	assert.True(t, CanMutate(model.OrderCompleted))
	assert.False(t, CanMutate(model.OrderCancelled))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(model.OrderPending))
	assert.True(t, CanCancel(model.OrderCompleted))
	assert.False(t, CanCancel(model.OrderCancelled))
}

func TestRestockOnCancel(t *testing.T) {
	assert.True(t, RestockOnCancel(model.OrderPending))

	// Items on a completed order stay sold.
	assert.False(t, RestockOnCancel(model.OrderCompleted))
}
