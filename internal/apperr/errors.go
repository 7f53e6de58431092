package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNumberConflict = errors.New("order number conflict, please retry")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation failed on '%s': %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing entity (order, product, customer, ...).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// InactiveProductError reports an attempt to sell a deactivated product.
type InactiveProductError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *InactiveProductError) Error() string {
	return fmt.Sprintf("product '%s' is inactive and cannot be sold", e.ProductName)
}

// InsufficientStockError carries requested vs. available so the caller can
// render a specific message ("requested 5, available 3").
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s': requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// OverpaymentError carries the remaining balance that can still be paid.
type OverpaymentError struct {
	OrderID   uuid.UUID
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds order total: remaining balance is %s", e.Remaining.StringFixed(2))
}

// InvalidStateError reports an operation not allowed in the order's current status.
type InvalidStateError struct {
	OrderID   uuid.UUID
	Status    string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: order is %s", e.Operation, e.Status)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
