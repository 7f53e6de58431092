package repository

import (
	"time"

	"go-pos-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	CustomerID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindAll(filter OrderFilter) ([]model.Order, int64, error)
	// LockByID loads the order row FOR UPDATE inside tx; items and payments
	// are loaded with separate queries under the same transaction.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	// NextOrderNumber allocates the next monotonic order number under a lock
	// on the newest order row.
	NextOrderNumber(tx *gorm.DB) (int64, error)
	Save(tx *gorm.DB, order *model.Order) error
	CreateItem(tx *gorm.DB, item *model.OrderItem) error
	ItemsByOrder(tx *gorm.DB, orderID uuid.UUID) ([]model.OrderItem, error)
	CountToday() (int64, error)
	RevenueToday() (string, error)
	SalesByDay(start, end time.Time) ([]SalesByDayData, error)
}

// SalesByDayData is one chart bucket of order count and revenue.
type SalesByDayData struct {
	Date    string `json:"date"`
	Orders  int    `json:"orders"`
	Revenue string `json:"revenue"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Omit("Items", "Payments").Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.
		Preload("Items").
		Preload("Payments").
		Preload("Customer").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll(filter OrderFilter) ([]model.Order, int64, error) {
	q := r.db.Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var orders []model.Order
	err := q.
		Preload("Items").
		Preload("Customer").
		Order("order_number DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Find(&order.Items).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Find(&order.Payments).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) NextOrderNumber(tx *gorm.DB) (int64, error) {
	var last model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Unscoped().
		Order("order_number DESC").
		Limit(1).
		Find(&last).Error
	if err != nil {
		return 0, err
	}
	return last.OrderNumber + 1, nil
}

func (r *orderRepo) Save(tx *gorm.DB, order *model.Order) error {
	return tx.Omit("Items", "Payments").Save(order).Error
}

func (r *orderRepo) CreateItem(tx *gorm.DB, item *model.OrderItem) error {
	return tx.Create(item).Error
}

func (r *orderRepo) ItemsByOrder(tx *gorm.DB, orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := tx.Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *orderRepo) CountToday() (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("created_at >= CURRENT_DATE AND status <> ?", model.OrderCancelled).
		Count(&count).Error
	return count, err
}

func (r *orderRepo) RevenueToday() (string, error) {
	var revenue string
	err := r.db.Model(&model.Order{}).
		Where("created_at >= CURRENT_DATE AND status <> ?", model.OrderCancelled).
		Select("COALESCE(SUM(total), 0)::text").
		Scan(&revenue).Error
	return revenue, err
}

func (r *orderRepo) SalesByDay(start, end time.Time) ([]SalesByDayData, error) {
	var results []SalesByDayData

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(total), 0)::text as revenue
		`).
		Where("created_at BETWEEN ? AND ? AND status <> ?", start, end, model.OrderCancelled).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesByDayData
		if err := rows.Scan(&data.Date, &data.Orders, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
