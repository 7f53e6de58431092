package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodTransfer   PaymentMethod = "transfer"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodTransfer:
		return true
	}
	return false
}

// Payment is an append-only record of money received against an order.
// Rows are never updated or deleted; an order's total paid is always the sum
// of its live rows.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount" validate:"required"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null" json:"method" validate:"required,oneof=cash credit_card debit_card transfer"`
	Reference string          `gorm:"type:varchar(255)" json:"reference,omitempty"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// BeforeCreate generates the UUID on insert.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
