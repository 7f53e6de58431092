package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/model"
)

func TestTotalPaid(t *testing.T) {
	payments := []model.Payment{
		{Amount: dec("30")},
		{Amount: dec("12.55")},
	}
	assertDecEqual(t, dec("42.55"), TotalPaid(payments))
	assertDecEqual(t, decimal.Zero, TotalPaid(nil))
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, model.PaymentUnpaid, DerivePaymentStatus(decimal.Zero, dec("100")))
	assert.Equal(t, model.PaymentPartial, DerivePaymentStatus(dec("40"), dec("100")))
	assert.Equal(t, model.PaymentPaid, DerivePaymentStatus(dec("100"), dec("100")))

	// A fully discounted order owes nothing and counts as paid.
	assert.Equal(t, model.PaymentPaid, DerivePaymentStatus(decimal.Zero, decimal.Zero))
}

func TestApplyPaymentAccumulates(t *testing.T) {
	existing := []model.Payment{{Amount: dec("40")}}

	paid, status, err := ApplyPayment(existing, dec("35"), dec("100"), uuid.New())
	require.NoError(t, err)
	assertDecEqual(t, dec("75"), paid)
	assert.Equal(t, model.PaymentPartial, status)
}

func TestApplyPaymentExactBalance(t *testing.T) {
	existing := []model.Payment{{Amount: dec("40")}}

	paid, status, err := ApplyPayment(existing, dec("60"), dec("100"), uuid.New())
	require.NoError(t, err)
	assertDecEqual(t, dec("100"), paid)
	assert.Equal(t, model.PaymentPaid, status)
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	existing := []model.Payment{{Amount: dec("80")}}
	orderID := uuid.New()

	_, _, err := ApplyPayment(existing, dec("30"), dec("100"), orderID)
	require.Error(t, err)

	var overErr *apperr.OverpaymentError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, orderID, overErr.OrderID)
	assertDecEqual(t, dec("20"), overErr.Remaining)
	assert.Contains(t, err.Error(), "20.00")
}
