package model

import "github.com/shopspring/decimal"

// Settings is the singleton store configuration row.
type Settings struct {
	BaseModel
	StoreName      string          `gorm:"type:varchar(255);not null" json:"store_name"`
	Address        string          `gorm:"type:text" json:"address"`
	Phone          string          `gorm:"type:varchar(20)" json:"phone"`
	Currency       string          `gorm:"type:varchar(10);default:'USD'" json:"currency"`
	TaxEnabled     bool            `gorm:"default:false" json:"tax_enabled"`
	TaxRatePercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate_percent"`
	ReceiptFooter  string          `gorm:"type:text" json:"receipt_footer"`
	LowStockAlerts bool            `gorm:"default:true" json:"low_stock_alerts"` // broadcast over ws
}

// EffectiveTaxRate returns the configured rate, or zero when tax is disabled.
// Threaded explicitly into the total calculator so every order path applies
// the same rate.
func (s *Settings) EffectiveTaxRate() decimal.Decimal {
	if !s.TaxEnabled {
		return decimal.Zero
	}
	return s.TaxRatePercent
}
