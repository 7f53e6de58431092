package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-pos-backoffice/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecEqual(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestLineSubtotal(t *testing.T) {
	assertDecEqual(t, dec("59.97"), LineSubtotal(dec("19.99"), 3))
	assertDecEqual(t, dec("2.50"), LineSubtotal(dec("2.50"), 1))
}

func TestResolveDiscountFixed(t *testing.T) {
	assertDecEqual(t, dec("20"), ResolveDiscount(dec("100"), DiscountSpec{Type: model.DiscountFixed, Value: dec("20")}))
}

func TestResolveDiscountPercentage(t *testing.T) {
	assertDecEqual(t, dec("10.00"), ResolveDiscount(dec("100"), DiscountSpec{Type: model.DiscountPercentage, Value: dec("10")}))
	// 33% of 99.99 rounds to cents
	assertDecEqual(t, dec("33.00"), ResolveDiscount(dec("99.99"), DiscountSpec{Type: model.DiscountPercentage, Value: dec("33")}))
}

func TestResolveDiscountClampsToSubtotal(t *testing.T) {
	assertDecEqual(t, dec("100"), ResolveDiscount(dec("100"), DiscountSpec{Type: model.DiscountFixed, Value: dec("150")}))
	assertDecEqual(t, dec("100"), ResolveDiscount(dec("100"), DiscountSpec{Type: model.DiscountPercentage, Value: dec("150")}))
}

func TestResolveDiscountNegativeBecomesZero(t *testing.T) {
	assertDecEqual(t, decimal.Zero, ResolveDiscount(dec("100"), DiscountSpec{Type: model.DiscountFixed, Value: dec("-5")}))
}

func TestCalculateTotalsTaxOnPostDiscountBase(t *testing.T) {
	totals := CalculateTotals(dec("200"), DiscountSpec{Type: model.DiscountFixed, Value: dec("50")}, dec("10"))

	assertDecEqual(t, dec("200"), totals.Subtotal)
	assertDecEqual(t, dec("50"), totals.Discount)
	assertDecEqual(t, dec("15.00"), totals.Tax)
	assertDecEqual(t, dec("165.00"), totals.Total)
}

func TestCalculateTotalsZeroTaxRate(t *testing.T) {
	totals := CalculateTotals(dec("80"), DiscountSpec{Type: model.DiscountPercentage, Value: dec("25")}, decimal.Zero)

	assertDecEqual(t, dec("20.00"), totals.Discount)
	assertDecEqual(t, decimal.Zero, totals.Tax)
	assertDecEqual(t, dec("60.00"), totals.Total)
}

func TestCalculateTotalsFullDiscount(t *testing.T) {
	// Discount covering the whole subtotal leaves nothing to tax.
	totals := CalculateTotals(dec("80"), DiscountSpec{Type: model.DiscountFixed, Value: dec("80")}, dec("10"))

	assertDecEqual(t, dec("80"), totals.Discount)
	assertDecEqual(t, decimal.Zero, totals.Tax)
	assertDecEqual(t, decimal.Zero, totals.Total)
}

func TestCalculateTotalsIdentity(t *testing.T) {
	totals := CalculateTotals(dec("123.45"), DiscountSpec{Type: model.DiscountPercentage, Value: dec("7.5")}, dec("8.25"))

	assertDecEqual(t, totals.Total, totals.Subtotal.Sub(totals.Discount).Add(totals.Tax))
}

func TestSumLineSubtotals(t *testing.T) {
	items := []model.OrderItem{
		{Subtotal: dec("10.50")},
		{Subtotal: dec("4.25")},
	}
	assertDecEqual(t, dec("14.75"), SumLineSubtotals(items))
}
