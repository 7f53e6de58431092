package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
)

// InventoryService exposes read access to the stock ledger. Writes only
// happen through the StockAdjuster inside engine and catalog transactions.
type InventoryService interface {
	GetTransactions(limit, offset int) ([]model.InventoryTransaction, error)
	GetProductHistory(productID uuid.UUID, limit, offset int) ([]model.InventoryTransaction, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
}

func NewInventoryService(inventoryRepo repository.InventoryRepository, productRepo repository.ProductRepository) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
	}
}

func (s *inventoryService) GetTransactions(limit, offset int) ([]model.InventoryTransaction, error) {
	return s.inventoryRepo.FindAll(limit, offset)
}

func (s *inventoryService) GetProductHistory(productID uuid.UUID, limit, offset int) ([]model.InventoryTransaction, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("product", productID)
		}
		return nil, err
	}
	return s.inventoryRepo.FindByProduct(productID, limit, offset)
}
