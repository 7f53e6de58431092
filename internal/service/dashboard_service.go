package service

import (
	"time"

	"go-pos-backoffice/internal/repository"
)

type DashboardStats struct {
	TotalProducts  int64  `json:"total_products"`
	LowStockCount  int64  `json:"low_stock_count"`
	OrdersToday    int64  `json:"orders_today"`
	RevenueToday   string `json:"revenue_today"`
	TotalCustomers int64  `json:"total_customers"`
}

type DashboardService interface {
	GetStats() (*DashboardStats, error)
	GetSalesByDay(days int) ([]repository.SalesByDayData, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type dashboardService struct {
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	customerRepo  repository.CustomerRepository
}

func NewDashboardService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	customerRepo repository.CustomerRepository,
) DashboardService {
	return &dashboardService{
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
	}
}

func (s *dashboardService) GetStats() (*DashboardStats, error) {
	products, err := s.productRepo.FindAll(false)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.productRepo.CountLowStock()
	if err != nil {
		return nil, err
	}

	ordersToday, err := s.orderRepo.CountToday()
	if err != nil {
		return nil, err
	}

	revenueToday, err := s.orderRepo.RevenueToday()
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.FindAll("")
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts:  int64(len(products)),
		LowStockCount:  lowStock,
		OrdersToday:    ordersToday,
		RevenueToday:   revenueToday,
		TotalCustomers: int64(len(customers)),
	}, nil
}

func (s *dashboardService) GetSalesByDay(days int) ([]repository.SalesByDayData, error) {
	days = clampDays(days)
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.orderRepo.SalesByDay(start, end)
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	days = clampDays(days)
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.inventoryRepo.GetStockMovement(start, end)
}

func clampDays(days int) int {
	if days <= 0 {
		return 7
	}
	if days > 90 {
		return 90
	}
	return days
}
