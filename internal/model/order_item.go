package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one order line. ProductName and UnitPrice are snapshots taken
// at time of sale so historical orders are unaffected by later product edits;
// ProductID is nullable so the line survives product deletion.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index;constraint:OnDelete:SET NULL" json:"product_id,omitempty"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Variant     string          `gorm:"type:varchar(100)" json:"variant,omitempty"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"` // unit_price * quantity
}
