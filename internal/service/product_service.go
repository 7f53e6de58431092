package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/cache"
	"go-pos-backoffice/internal/metrics"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
	"go-pos-backoffice/internal/ws"
	"go-pos-backoffice/pkg/validator"
)

const (
	productListCacheKey = "products:all"
	productListCacheTTL = 30 * time.Second
)

var ErrSKUExists = errors.New("SKU already exists")

type ProductService interface {
	CreateProduct(req *CreateProductRequest, actingUser uuid.UUID) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actingUser uuid.UUID) (*model.Product, error)
	AdjustStock(id uuid.UUID, req *AdjustStockRequest, actingUser uuid.UUID) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actingUser uuid.UUID) error
	GetAllProducts(activeOnly bool) ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
}

type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	InitialStock  int             `json:"initial_stock" validate:"gte=0"`
	LowStockAlert int             `json:"low_stock_alert" validate:"gte=0"`
	HasVariants   bool            `json:"has_variants"`
	Variants      []string        `json:"variants"`
	ImageURL      string          `json:"image_url"`
}

type UpdateProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	LowStockAlert int             `json:"low_stock_alert" validate:"gte=0"`
	Active        *bool           `json:"active"`
	HasVariants   *bool           `json:"has_variants"`
	Variants      []string        `json:"variants"`
	ImageURL      string          `json:"image_url"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	adjuster     *StockAdjuster
	productCache cache.ProductCache
	wsHub        *ws.Hub
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	adjuster *StockAdjuster,
	productCache cache.ProductCache,
	hub *ws.Hub,
	m *metrics.Metrics,
	log *zap.Logger,
) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		adjuster:     adjuster,
		productCache: productCache,
		wsHub:        hub,
		metrics:      m,
		log:          log,
	}
}

func (s *productService) CreateProduct(req *CreateProductRequest, actingUser uuid.UUID) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}
	if !req.Price.IsPositive() {
		return nil, apperr.NewValidation("price", "must be greater than zero")
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*req.CategoryID); err != nil {
			return nil, apperr.NewNotFound("category", *req.CategoryID)
		}
	}

	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil {
		return nil, ErrSKUExists
	}

	product := &model.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		LowStockAlert: req.LowStockAlert,
		Active:        true,
		HasVariants:   req.HasVariants,
		Variants:      req.Variants,
		ImageURL:      req.ImageURL,
	}
	product.CreatedBy = actingUser.String()
	product.UpdatedBy = actingUser.String()

	// Initial stock is recorded as a ledger entry like every other stock
	// change, so the transaction log fully accounts for the counter.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		if req.InitialStock > 0 {
			if _, _, err := s.adjuster.AdjustLocked(tx, product, req.InitialStock, model.TxInitial, "initial stock", "", actingUser); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.InitialStock > 0 {
		s.metrics.IncStockAdjustment(string(model.TxInitial))
	}
	s.invalidateCache()
	s.log.Info("product created", zap.String("sku", product.SKU), zap.Int("stock", product.Stock))
	return product, nil
}

func (s *productService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actingUser uuid.UUID) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}
	if !req.Price.IsPositive() {
		return nil, apperr.NewValidation("price", "must be greater than zero")
	}

	var updated *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("product", id)
			}
			return err
		}

		// Stock is deliberately not writable here; it only moves through
		// the stock adjuster.
		existing.Name = req.Name
		existing.CategoryID = req.CategoryID
		existing.Price = req.Price
		existing.LowStockAlert = req.LowStockAlert
		existing.ImageURL = req.ImageURL
		existing.Variants = req.Variants
		if req.Active != nil {
			existing.Active = *req.Active
		}
		if req.HasVariants != nil {
			existing.HasVariants = *req.HasVariants
		}
		existing.UpdatedBy = actingUser.String()

		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache()
	return updated, nil
}

func (s *productService) AdjustStock(id uuid.UUID, req *AdjustStockRequest, actingUser uuid.UUID) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}

	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		product, _, err = s.adjuster.Adjust(tx, id, req.Delta, model.TxAdjustment, "manual adjustment", req.Reason, actingUser)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockAdjustment(string(model.TxAdjustment))
	s.invalidateCache()
	s.broadcastStock(product)
	s.log.Info("stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int("delta", req.Delta),
		zap.String("reason", req.Reason))
	return product, nil
}

func (s *productService) DeleteProduct(id uuid.UUID, actingUser uuid.UUID) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("product", id)
		}
		return err
	}
	if err := s.productRepo.Delete(id, actingUser.String()); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *productService) GetAllProducts(activeOnly bool) ([]model.Product, error) {
	// Only the unfiltered listing is cached; it is what the dashboard polls.
	if !activeOnly {
		if cached, ok, err := s.productCache.Get(context.Background(), productListCacheKey); err == nil && ok {
			return cached, nil
		}
	}

	products, err := s.productRepo.FindAll(activeOnly)
	if err != nil {
		return nil, err
	}

	if !activeOnly {
		if err := s.productCache.Set(context.Background(), productListCacheKey, products, productListCacheTTL); err != nil {
			s.log.Warn("product cache set failed", zap.Error(err))
		}
	}
	return products, nil
}

func (s *productService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("product", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) invalidateCache() {
	if err := s.productCache.Invalidate(context.Background(), productListCacheKey); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Error(err))
	}
}

func (s *productService) broadcastStock(product *model.Product) {
	go s.wsHub.BroadcastEvent("stock_update", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
		"name":       product.Name,
		"stock":      product.Stock,
	})
}
