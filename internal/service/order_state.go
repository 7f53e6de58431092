package service

import "go-pos-backoffice/internal/model"

// Cross-entity transition rules of the order state machine. Implicit side
// effects (full payment completes the order, adding items downgrades a paid
// order) live here as named rules rather than inline at call sites.

// StatusAfterPayment returns the order status after a payment lands.
// Full payment promotes a pending order to completed; no other transition is
// implicit on payment.
func StatusAfterPayment(current model.OrderStatus, payment model.PaymentStatus) model.OrderStatus {
	if current == model.OrderPending && payment == model.PaymentPaid {
		return model.OrderCompleted
	}
	return current
}

// CanMutate reports whether items, discount, or payments may still change.
// Cancelled orders are terminal for every mutation.
func CanMutate(status model.OrderStatus) bool {
	return status != model.OrderCancelled
}

// CanCancel reports whether the order may be cancelled at all.
func CanCancel(status model.OrderStatus) bool {
	return status != model.OrderCancelled
}

// RestockOnCancel reports whether cancellation returns the items to stock.
// Items on a completed order are treated as consumed and stay sold.
func RestockOnCancel(status model.OrderStatus) bool {
	return status != model.OrderCompleted
}
