package service

import (
	"github.com/shopspring/decimal"

	"go-pos-backoffice/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountSpec is a fixed amount or a percentage of the subtotal.
type DiscountSpec struct {
	Type  model.DiscountType
	Value decimal.Decimal
}

// OrderTotals is the result of a totals recomputation.
// Total = Subtotal - Discount + Tax always holds.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineSubtotal returns unitPrice * quantity rounded to cents.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ResolveDiscount converts a discount spec into a concrete amount, clamped to
// [0, subtotal]. An oversized discount is clamped, never rejected.
func ResolveDiscount(subtotal decimal.Decimal, spec DiscountSpec) decimal.Decimal {
	var amount decimal.Decimal
	switch spec.Type {
	case model.DiscountPercentage:
		amount = subtotal.Mul(spec.Value).Div(oneHundred).Round(2)
	default:
		amount = spec.Value.Round(2)
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// CalculateTotals recomputes an order's money columns from its subtotal, a
// discount spec, and an explicit tax rate percent. Tax is computed on the
// post-discount base. The rate is always threaded in by the caller so every
// order path applies the same policy.
func CalculateTotals(subtotal decimal.Decimal, spec DiscountSpec, taxRatePercent decimal.Decimal) OrderTotals {
	subtotal = subtotal.Round(2)
	discount := ResolveDiscount(subtotal, spec)
	tax := subtotal.Sub(discount).Mul(taxRatePercent).Div(oneHundred).Round(2)

	return OrderTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}

// SumLineSubtotals folds the line subtotals of the given items.
func SumLineSubtotals(items []model.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}
