package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Stock is mutated only through the
// stock adjuster inside an order transaction; no other code path writes it.
type Product struct {
	BaseModel
	SKU           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price" validate:"required"`
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	LowStockAlert int             `gorm:"default:0" json:"low_stock_alert"` // 0 disables the alert
	Active        bool            `gorm:"default:true" json:"active"`
	HasVariants   bool            `gorm:"default:false" json:"has_variants"`
	Variants      []string        `gorm:"serializer:json" json:"variants,omitempty"`
	ImageURL      string          `gorm:"type:varchar(512)" json:"image_url,omitempty"`

	Transactions []InventoryTransaction `json:"transactions,omitempty"`
}

// IsLowStock reports whether the product has dropped to or below its alert threshold.
func (p *Product) IsLowStock() bool {
	return p.LowStockAlert > 0 && p.Stock <= p.LowStockAlert
}

// HasVariant reports whether the given variant label is configured on the product.
func (p *Product) HasVariant(label string) bool {
	for _, v := range p.Variants {
		if v == label {
			return true
		}
	}
	return false
}
