package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
)

// StockAdjuster is the sole mutation path for product stock. Every write
// pairs the stock counter update with one appended ledger row, so the sum of
// a product's deltas always accounts for its stock level.
type StockAdjuster struct {
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
}

func NewStockAdjuster(productRepo repository.ProductRepository, inventoryRepo repository.InventoryRepository) *StockAdjuster {
	return &StockAdjuster{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
	}
}

// Adjust applies a signed quantity delta to a product inside the caller's
// transaction. The product row is locked FOR UPDATE before the check, so a
// concurrent sale cannot pass the same stock check and drive stock negative.
func (a *StockAdjuster) Adjust(tx *gorm.DB, productID uuid.UUID, delta int, txType model.InventoryTxType, reference, notes string, actingUser uuid.UUID) (*model.Product, *model.InventoryTransaction, error) {
	product, err := a.productRepo.LockByID(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NewNotFound("product", productID)
		}
		return nil, nil, err
	}

	return a.AdjustLocked(tx, product, delta, txType, reference, notes, actingUser)
}

// AdjustLocked is Adjust for a product row the caller has already locked in
// this transaction. Used by the order engine, which locks all products up
// front to validate every line before mutating any stock.
func (a *StockAdjuster) AdjustLocked(tx *gorm.DB, product *model.Product, delta int, txType model.InventoryTxType, reference, notes string, actingUser uuid.UUID) (*model.Product, *model.InventoryTransaction, error) {
	newStock := product.Stock + delta
	if newStock < 0 {
		return nil, nil, &apperr.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   -delta,
			Available:   product.Stock,
		}
	}

	if err := a.productRepo.UpdateStock(tx, product.ID, newStock, actingUser.String()); err != nil {
		return nil, nil, err
	}
	product.Stock = newStock

	record := &model.InventoryTransaction{
		ProductID: product.ID,
		Quantity:  delta,
		Type:      txType,
		Reference: reference,
		Notes:     notes,
		UserID:    actingUser,
	}
	if err := a.inventoryRepo.Append(tx, record); err != nil {
		return nil, nil, err
	}

	return product, record, nil
}
