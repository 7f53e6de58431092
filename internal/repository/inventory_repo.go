package repository

import (
	"time"

	"go-pos-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepository interface {
	// Append writes one ledger row inside the caller's transaction. The log
	// is append-only; there are no update or delete methods.
	Append(tx *gorm.DB, record *model.InventoryTransaction) error
	FindByProduct(productID uuid.UUID, limit, offset int) ([]model.InventoryTransaction, error)
	FindAll(limit, offset int) ([]model.InventoryTransaction, error)
	SumDeltas(productID uuid.UUID) (int64, error)
	GetStockMovement(start, end time.Time) ([]StockMovementData, error)
}

// StockMovementData is one chart bucket of inbound vs. outbound quantities.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) Append(tx *gorm.DB, record *model.InventoryTransaction) error {
	return tx.Create(record).Error
}

func (r *inventoryRepo) FindByProduct(productID uuid.UUID, limit, offset int) ([]model.InventoryTransaction, error) {
	var records []model.InventoryTransaction
	err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *inventoryRepo) FindAll(limit, offset int) ([]model.InventoryTransaction, error) {
	var records []model.InventoryTransaction
	err := r.db.Preload("Product").Preload("User").
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *inventoryRepo) SumDeltas(productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.Model(&model.InventoryTransaction{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *inventoryRepo) GetStockMovement(start, end time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.InventoryTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
