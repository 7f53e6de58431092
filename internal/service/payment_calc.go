package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/model"
)

// TotalPaid sums the live payment rows. Total paid is always derived from the
// payment log, never read from a cached column.
func TotalPaid(payments []model.Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// DerivePaymentStatus is the pure derivation of payment status from
// (total paid, order total). It is recomputed on every mutation.
func DerivePaymentStatus(totalPaid, orderTotal decimal.Decimal) model.PaymentStatus {
	if totalPaid.GreaterThanOrEqual(orderTotal) {
		return model.PaymentPaid
	}
	if totalPaid.IsPositive() {
		return model.PaymentPartial
	}
	return model.PaymentUnpaid
}

// ApplyPayment accumulates a new payment against the existing rows. Payments
// may never exceed the order total; there is no change-making or credit.
func ApplyPayment(existing []model.Payment, newAmount, orderTotal decimal.Decimal, orderID uuid.UUID) (decimal.Decimal, model.PaymentStatus, error) {
	paid := TotalPaid(existing)
	newTotal := paid.Add(newAmount)

	if newTotal.GreaterThan(orderTotal) {
		return paid, "", &apperr.OverpaymentError{
			OrderID:   orderID,
			Remaining: orderTotal.Sub(paid),
		}
	}

	return newTotal, DerivePaymentStatus(newTotal, orderTotal), nil
}
