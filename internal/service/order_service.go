package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

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

// OrderService is the order transaction engine. Every mutating operation runs
// as one database transaction with FOR UPDATE locks on the touched product
// and order rows; a failed validation aborts the whole unit with no partial
// writes.
type OrderService interface {
	CreateOrder(req *CreateOrderRequest, actingUser uuid.UUID) (*model.Order, error)
	AddItems(orderID uuid.UUID, req *AddItemsRequest, actingUser uuid.UUID) (*model.Order, error)
	UpdateDiscount(orderID uuid.UUID, req *DiscountRequest, actingUser uuid.UUID) (*model.Order, error)
	AddPayment(orderID uuid.UUID, req *PaymentRequest, actingUser uuid.UUID) (*model.Order, error)
	CancelOrder(orderID uuid.UUID, reason string, actingUser uuid.UUID) (*model.Order, error)
	UpdateStatus(orderID uuid.UUID, newStatus model.OrderStatus, actingUser uuid.UUID) (*model.Order, error)
	GetOrder(orderID uuid.UUID) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	Variant   string    `json:"variant"`
}

type DiscountRequest struct {
	Type  model.DiscountType `json:"type" validate:"required,oneof=fixed percentage"`
	Value decimal.Decimal    `json:"value"`
}

type PaymentRequest struct {
	Amount    decimal.Decimal     `json:"amount" validate:"required"`
	Method    model.PaymentMethod `json:"method" validate:"required,oneof=cash credit_card debit_card transfer"`
	Reference string              `json:"reference"`
	Notes     string              `json:"notes"`
}

type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerID *uuid.UUID         `json:"customer_id"`
	Discount   *DiscountRequest   `json:"discount"`
	Payment    *PaymentRequest    `json:"payment"`
	Notes      string             `json:"notes"`
}

type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderService struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	settingsRepo repository.SettingsRepository
	adjuster     *StockAdjuster
	productCache cache.ProductCache
	wsHub        *ws.Hub
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	settingsRepo repository.SettingsRepository,
	adjuster *StockAdjuster,
	productCache cache.ProductCache,
	hub *ws.Hub,
	m *metrics.Metrics,
	log *zap.Logger,
) OrderService {
	return &orderService{
		db:           db,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		adjuster:     adjuster,
		productCache: productCache,
		wsHub:        hub,
		metrics:      m,
		log:          log,
	}
}

// lockedLine pairs a locked product with the validated request line.
type lockedLine struct {
	product *model.Product
	req     OrderItemRequest
}

// lockAndValidateItems locks every product FOR UPDATE in a stable order and
// validates all lines before the caller mutates any stock. Lock order is
// sorted by product ID so two concurrent orders cannot deadlock.
func (s *orderService) lockAndValidateItems(tx *gorm.DB, items []OrderItemRequest) ([]lockedLine, error) {
	sorted := make([]OrderItemRequest, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	lines := make([]lockedLine, 0, len(sorted))
	locked := make(map[uuid.UUID]*model.Product, len(sorted))

	for _, item := range sorted {
		product, ok := locked[item.ProductID]
		if !ok {
			var err error
			product, err = s.productRepo.LockByID(tx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperr.NewNotFound("product", item.ProductID)
				}
				return nil, err
			}
			locked[item.ProductID] = product
		}

		if !product.Active {
			return nil, &apperr.InactiveProductError{ProductID: product.ID, ProductName: product.Name}
		}
		if product.HasVariants && item.Variant != "" && !product.HasVariant(item.Variant) {
			return nil, apperr.NewValidation("variant",
				fmt.Sprintf("product '%s' has no variant '%s'", product.Name, item.Variant))
		}

		lines = append(lines, lockedLine{product: product, req: item})
	}

	// The stock check covers the summed quantity per product, so duplicate
	// lines for one product cannot jointly oversell it.
	needed := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		needed[line.product.ID] += line.req.Quantity
	}
	for id, qty := range needed {
		if product := locked[id]; product.Stock < qty {
			return nil, &apperr.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Stock,
			}
		}
	}

	return lines, nil
}

func (s *orderService) effectiveTaxRate() (decimal.Decimal, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return decimal.Zero, err
	}
	return settings.EffectiveTaxRate(), nil
}

func (s *orderService) CreateOrder(req *CreateOrderRequest, actingUser uuid.UUID) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}
	if req.Payment != nil && !req.Payment.Amount.IsPositive() {
		return nil, apperr.NewValidation("payment.amount", "must be greater than zero")
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.FindByID(*req.CustomerID); err != nil {
			return nil, apperr.NewNotFound("customer", *req.CustomerID)
		}
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		return nil, err
	}

	discount := DiscountSpec{Type: model.DiscountFixed, Value: decimal.Zero}
	if req.Discount != nil {
		discount = DiscountSpec{Type: req.Discount.Type, Value: req.Discount.Value}
	}

	var created *model.Order

	// Retried because the order number is allocated under a lock on the
	// newest order row; with an empty table two creates can still race to
	// the same number and one insert loses on the unique index.
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		created = nil
		err = s.db.Transaction(func(tx *gorm.DB) error {
			lines, err := s.lockAndValidateItems(tx, req.Items)
			if err != nil {
				return err
			}

			orderNumber, err := s.orderRepo.NextOrderNumber(tx)
			if err != nil {
				return err
			}

			subtotal := decimal.Zero
			for _, line := range lines {
				subtotal = subtotal.Add(LineSubtotal(line.product.Price, line.req.Quantity))
			}
			totals := CalculateTotals(subtotal, discount, taxRate)

			order := &model.Order{
				OrderNumber:   orderNumber,
				Status:        model.OrderPending,
				PaymentStatus: model.PaymentUnpaid,
				Subtotal:      totals.Subtotal,
				DiscountType:  discount.Type,
				DiscountValue: discount.Value,
				Discount:      totals.Discount,
				TaxRate:       taxRate,
				Tax:           totals.Tax,
				Total:         totals.Total,
				Notes:         req.Notes,
				UserID:        actingUser,
				CustomerID:    req.CustomerID,
			}
			order.CreatedBy = actingUser.String()
			order.UpdatedBy = actingUser.String()
			if err := s.orderRepo.Create(tx, order); err != nil {
				return err
			}

			reference := fmt.Sprintf("order:%d", orderNumber)
			for _, line := range lines {
				item := &model.OrderItem{
					OrderID:     order.ID,
					ProductID:   &line.product.ID,
					ProductName: line.product.Name,
					UnitPrice:   line.product.Price,
					Quantity:    line.req.Quantity,
					Variant:     line.req.Variant,
					Subtotal:    LineSubtotal(line.product.Price, line.req.Quantity),
				}
				item.CreatedBy = actingUser.String()
				item.UpdatedBy = actingUser.String()
				if err := s.orderRepo.CreateItem(tx, item); err != nil {
					return err
				}
			}
			for _, line := range lines {
				if _, _, err := s.adjuster.AdjustLocked(tx, line.product, -line.req.Quantity, model.TxSale, reference, "", actingUser); err != nil {
					return err
				}
			}

			if req.Payment != nil {
				_, status, err := ApplyPayment(nil, req.Payment.Amount, order.Total, order.ID)
				if err != nil {
					return err
				}
				payment := &model.Payment{
					OrderID:   order.ID,
					Amount:    req.Payment.Amount,
					Method:    req.Payment.Method,
					Reference: req.Payment.Reference,
					Notes:     req.Payment.Notes,
					UserID:    actingUser,
				}
				if err := s.paymentRepo.Append(tx, payment); err != nil {
					return err
				}
				order.PaymentStatus = status
				order.Status = StatusAfterPayment(order.Status, status)
				if err := s.orderRepo.Save(tx, order); err != nil {
					return err
				}
			}

			created = order
			return nil
		})

		if err == nil {
			break
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		s.log.Warn("order number conflict, retrying", zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, apperr.ErrOrderNumberConflict
	}

	s.metrics.IncOrdersCreated()
	if req.Payment != nil {
		s.metrics.IncPayment(string(req.Payment.Method))
	}
	s.afterStockChange(req.Items)
	s.log.Info("order created",
		zap.Int64("order_number", created.OrderNumber),
		zap.String("total", created.Total.StringFixed(2)),
		zap.Int("items", len(req.Items)))

	return s.orderRepo.FindByID(created.ID)
}

func (s *orderService) AddItems(orderID uuid.UUID, req *AddItemsRequest, actingUser uuid.UUID) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !CanMutate(order.Status) {
			return &apperr.InvalidStateError{OrderID: orderID, Status: string(order.Status), Operation: "add items"}
		}

		lines, err := s.lockAndValidateItems(tx, req.Items)
		if err != nil {
			return err
		}

		reference := fmt.Sprintf("order:%d", order.OrderNumber)
		added := decimal.Zero
		for _, line := range lines {
			item := &model.OrderItem{
				OrderID:     order.ID,
				ProductID:   &line.product.ID,
				ProductName: line.product.Name,
				UnitPrice:   line.product.Price,
				Quantity:    line.req.Quantity,
				Variant:     line.req.Variant,
				Subtotal:    LineSubtotal(line.product.Price, line.req.Quantity),
			}
			item.CreatedBy = actingUser.String()
			item.UpdatedBy = actingUser.String()
			if err := s.orderRepo.CreateItem(tx, item); err != nil {
				return err
			}
			added = added.Add(item.Subtotal)
		}
		for _, line := range lines {
			if _, _, err := s.adjuster.AdjustLocked(tx, line.product, -line.req.Quantity, model.TxSale, reference, "", actingUser); err != nil {
				return err
			}
		}

		totals := CalculateTotals(order.Subtotal.Add(added),
			DiscountSpec{Type: order.DiscountType, Value: order.DiscountValue}, taxRate)

		order.Subtotal = totals.Subtotal
		order.Discount = totals.Discount
		order.TaxRate = taxRate
		order.Tax = totals.Tax
		order.Total = totals.Total
		// Adding unpaid value cannot leave the order paid; the derivation
		// downgrades it against the new total.
		order.PaymentStatus = DerivePaymentStatus(TotalPaid(order.Payments), order.Total)
		order.UpdatedBy = actingUser.String()
		return s.orderRepo.Save(tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.afterStockChange(req.Items)
	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) UpdateDiscount(orderID uuid.UUID, req *DiscountRequest, actingUser uuid.UUID) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}
	if req.Value.IsNegative() {
		return nil, apperr.NewValidation("value", "must not be negative")
	}

	taxRate, err := s.effectiveTaxRate()
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !CanMutate(order.Status) {
			return &apperr.InvalidStateError{OrderID: orderID, Status: string(order.Status), Operation: "update discount"}
		}

		totals := CalculateTotals(order.Subtotal,
			DiscountSpec{Type: req.Type, Value: req.Value}, taxRate)

		order.DiscountType = req.Type
		order.DiscountValue = req.Value
		order.Discount = totals.Discount
		order.TaxRate = taxRate
		order.Tax = totals.Tax
		order.Total = totals.Total
		// A discount change can move the order between partial and paid in
		// either direction.
		order.PaymentStatus = DerivePaymentStatus(TotalPaid(order.Payments), order.Total)
		order.UpdatedBy = actingUser.String()
		return s.orderRepo.Save(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) AddPayment(orderID uuid.UUID, req *PaymentRequest, actingUser uuid.UUID) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.NewValidation("amount", "must be greater than zero")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The order row is locked before summing payments so two concurrent
		// payments cannot both pass the overpayment check.
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !CanMutate(order.Status) {
			return &apperr.InvalidStateError{OrderID: orderID, Status: string(order.Status), Operation: "add payment"}
		}

		_, status, err := ApplyPayment(order.Payments, req.Amount, order.Total, order.ID)
		if err != nil {
			return err
		}

		payment := &model.Payment{
			OrderID:   order.ID,
			Amount:    req.Amount,
			Method:    req.Method,
			Reference: req.Reference,
			Notes:     req.Notes,
			UserID:    actingUser,
		}
		if err := s.paymentRepo.Append(tx, payment); err != nil {
			return err
		}

		order.PaymentStatus = status
		order.Status = StatusAfterPayment(order.Status, status)
		order.UpdatedBy = actingUser.String()
		return s.orderRepo.Save(tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayment(string(req.Method))
	s.log.Info("payment recorded",
		zap.String("order_id", orderID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("method", string(req.Method)))

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) CancelOrder(orderID uuid.UUID, reason string, actingUser uuid.UUID) (*model.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		return s.cancelLocked(tx, order, reason, actingUser)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersCancelled()
	s.invalidateProductCache()
	s.log.Info("order cancelled", zap.String("order_id", orderID.String()), zap.String("reason", reason))

	return s.orderRepo.FindByID(orderID)
}

// cancelLocked performs cancellation on an order row already locked in tx.
// Shared by CancelOrder and the administrative status override so both paths
// run the same stock reversal.
func (s *orderService) cancelLocked(tx *gorm.DB, order *model.Order, reason string, actingUser uuid.UUID) error {
	if !CanCancel(order.Status) {
		return &apperr.InvalidStateError{OrderID: order.ID, Status: string(order.Status), Operation: "cancel"}
	}

	if RestockOnCancel(order.Status) {
		reference := fmt.Sprintf("order:%d", order.OrderNumber)
		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if _, _, err := s.adjuster.Adjust(tx, *item.ProductID, item.Quantity, model.TxReturn, reference, "order cancelled", actingUser); err != nil {
				return err
			}
		}
	}

	order.Status = model.OrderCancelled
	if reason != "" {
		if order.Notes != "" {
			order.Notes += "\n"
		}
		order.Notes += "Cancelled: " + reason
	}
	order.UpdatedBy = actingUser.String()
	return s.orderRepo.Save(tx, order)
}

func (s *orderService) UpdateStatus(orderID uuid.UUID, newStatus model.OrderStatus, actingUser uuid.UUID) (*model.Order, error) {
	if !newStatus.Valid() {
		return nil, apperr.NewValidation("status", "must be one of pending, completed, cancelled")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}

		// Setting cancelled goes through the cancellation path so the
		// override cannot skip stock reversal and drift inventory.
		if newStatus == model.OrderCancelled {
			return s.cancelLocked(tx, order, "status override", actingUser)
		}

		order.Status = newStatus
		order.UpdatedBy = actingUser.String()
		return s.orderRepo.Save(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) GetOrder(orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("order", orderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.FindAll(filter)
}

func (s *orderService) lockOrder(tx *gorm.DB, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.LockByID(tx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("order", orderID)
		}
		return nil, err
	}
	return order, nil
}

// afterStockChange invalidates the product cache and broadcasts the touched
// products' new stock levels after a commit.
func (s *orderService) afterStockChange(items []OrderItemRequest) {
	s.invalidateProductCache()

	settings, err := s.settingsRepo.Get()
	if err != nil {
		s.log.Warn("failed to load settings for broadcast", zap.Error(err))
		return
	}

	go func() {
		for _, item := range items {
			product, err := s.productRepo.FindByID(item.ProductID)
			if err != nil {
				continue
			}
			s.wsHub.BroadcastEvent("stock_update", map[string]interface{}{
				"product_id": product.ID,
				"sku":        product.SKU,
				"name":       product.Name,
				"stock":      product.Stock,
			})
			if settings.LowStockAlerts && product.IsLowStock() {
				s.wsHub.BroadcastEvent("low_stock_alert", map[string]interface{}{
					"product_id": product.ID,
					"sku":        product.SKU,
					"name":       product.Name,
					"stock":      product.Stock,
					"threshold":  product.LowStockAlert,
				})
			}
		}
	}()
}

func (s *orderService) invalidateProductCache() {
	if err := s.productCache.Invalidate(context.Background(), productListCacheKey); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Error(err))
	}
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
