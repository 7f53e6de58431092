package repository

import (
	"go-pos-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	// Append writes one payment row inside the caller's transaction.
	// Payments are append-only.
	Append(tx *gorm.DB, payment *model.Payment) error
	FindByOrder(orderID uuid.UUID) ([]model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Append(tx *gorm.DB, payment *model.Payment) error {
	return tx.Create(payment).Error
}

func (r *paymentRepo) FindByOrder(orderID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Preload("User").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
