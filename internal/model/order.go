package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Order is a single checkout. Totals always satisfy
// total = subtotal - discount + tax, and payment status is derived from the
// live payment rows, never trusted from storage alone.
type Order struct {
	BaseModel
	OrderNumber   int64           `gorm:"uniqueIndex;not null" json:"order_number"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountType  DiscountType    `gorm:"type:varchar(20);default:'fixed'" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount_value"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount"` // resolved, clamped amount
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Notes         string          `gorm:"type:text" json:"notes"`

	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
}

// TotalPaid sums the order's live payment rows.
func (o *Order) TotalPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}
