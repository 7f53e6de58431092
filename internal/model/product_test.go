package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductIsLowStock(t *testing.T) {
	p := Product{Stock: 3, LowStockAlert: 5}
	assert.True(t, p.IsLowStock())

	p.Stock = 5
	assert.True(t, p.IsLowStock())

	p.Stock = 6
	assert.False(t, p.IsLowStock())

	// Zero threshold disables the alert entirely.
	p = Product{Stock: 0, LowStockAlert: 0}
	assert.False(t, p.IsLowStock())
}

func TestProductHasVariant(t *testing.T) {
	p := Product{HasVariants: true, Variants: []string{"small", "large"}}
	assert.True(t, p.HasVariant("large"))
	assert.False(t, p.HasVariant("medium"))
}

func TestSettingsEffectiveTaxRate(t *testing.T) {
	s := Settings{TaxEnabled: true, TaxRatePercent: decimal.RequireFromString("11")}
	assert.True(t, s.EffectiveTaxRate().Equal(decimal.RequireFromString("11")))

	s.TaxEnabled = false
	assert.True(t, s.EffectiveTaxRate().IsZero())
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderPending.Valid())
	assert.True(t, OrderCompleted.Valid())
	assert.True(t, OrderCancelled.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
}

func TestOrderTotalPaid(t *testing.T) {
	o := Order{Payments: []Payment{
		{Amount: decimal.RequireFromString("10")},
		{Amount: decimal.RequireFromString("2.50")},
	}}
	assert.True(t, o.TotalPaid().Equal(decimal.RequireFromString("12.50")))
}
