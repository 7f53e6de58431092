package service

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/cache"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
	"go-pos-backoffice/internal/ws"
)

// The engine tests run against a real database because the semantics under
// test are transactional: FOR UPDATE locking, atomic rollback, and the
// unique order number index.

type engineEnv struct {
	db            *gorm.DB
	orders        OrderService
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	user          uuid.UUID
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()

	dsn := os.Getenv("POS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set POS_TEST_DATABASE_URL to run postgres integration tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Category{}, &model.Product{}, &model.Customer{},
		&model.Order{}, &model.OrderItem{}, &model.Payment{},
		&model.InventoryTransaction{}, &model.Settings{},
	))

	hub := ws.NewHub()
	go hub.Run()

	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	adjuster := NewStockAdjuster(productRepo, inventoryRepo)

	orders := NewOrderService(db, orderRepo, productRepo, paymentRepo, customerRepo, settingsRepo,
		adjuster, cache.NoopProductCache{}, hub, nil, zap.NewNop())

	// Totals below assume tax is off.
	settings, err := settingsRepo.Get()
	require.NoError(t, err)
	if settings.TaxEnabled {
		settings.TaxEnabled = false
		require.NoError(t, settingsRepo.Update(settings))
	}

	cashier := &model.User{
		Email:    fmt.Sprintf("cashier-it-%d@example.com", time.Now().UnixNano()),
		FullName: "Integration Cashier",
		IsActive: true,
	}
	require.NoError(t, cashier.SetPassword("secret1"))
	require.NoError(t, db.Create(cashier).Error)
	t.Cleanup(func() { db.Unscoped().Delete(cashier) })

	return &engineEnv{
		db:            db,
		orders:        orders,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		user:          cashier.ID,
	}
}

func (e *engineEnv) seedProduct(t *testing.T, price string, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		SKU:    fmt.Sprintf("SKU-IT-%d", time.Now().UnixNano()),
		Name:   "Integration Product",
		Price:  dec(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, e.db.Create(product).Error)

	t.Cleanup(func() {
		e.db.Unscoped().Where("product_id = ?", product.ID).Delete(&model.InventoryTransaction{})
		e.db.Unscoped().Delete(product)
	})
	return product
}

func (e *engineEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	product, err := e.productRepo.FindByID(id)
	require.NoError(t, err)
	return product.Stock
}

func (e *engineEnv) cleanupOrder(order *model.Order) {
	if order == nil {
		return
	}
	e.db.Unscoped().Where("order_id = ?", order.ID).Delete(&model.Payment{})
	e.db.Unscoped().Where("order_id = ?", order.ID).Delete(&model.OrderItem{})
	e.db.Unscoped().Delete(order)
}

func TestCreateOrderReservesStockAndWritesLedger(t *testing.T) {
	env := newEngineEnv(t)
	p1 := env.seedProduct(t, "10.00", 5)
	p2 := env.seedProduct(t, "4.50", 8)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 3},
		},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })

	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.PaymentUnpaid, order.PaymentStatus)
	assertDecEqual(t, dec("33.50"), order.Subtotal)
	assertDecEqual(t, dec("33.50"), order.Total)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 3, env.stockOf(t, p1.ID))
	assert.Equal(t, 5, env.stockOf(t, p2.ID))

	ledger, err := env.inventoryRepo.FindByProduct(p1.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, model.TxSale, ledger[0].Type)
	assert.Equal(t, -2, ledger[0].Quantity)
	assert.Equal(t, fmt.Sprintf("order:%d", order.OrderNumber), ledger[0].Reference)
}

func TestCreateOrderInsufficientStockIsAtomic(t *testing.T) {
	env := newEngineEnv(t)
	ok := env.seedProduct(t, "10.00", 5)
	scarce := env.seedProduct(t, "7.00", 1)

	_, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: ok.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
	}, env.user)

	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// Nothing moved for either product.
	assert.Equal(t, 5, env.stockOf(t, ok.ID))
	assert.Equal(t, 1, env.stockOf(t, scarce.ID))

	ledger, err := env.inventoryRepo.FindByProduct(ok.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestCreateOrderSumsDuplicateLines(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "5.00", 4)

	// 3 + 2 exceeds stock even though each line alone fits.
	_, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: p.ID, Quantity: 3},
			{ProductID: p.ID, Quantity: 2},
		},
	}, env.user)

	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 4, env.stockOf(t, p.ID))
}

func TestPaymentAccumulationCompletesOrder(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "25.00", 10)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 4}},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })

	order, err = env.orders.AddPayment(order.ID, &PaymentRequest{Amount: dec("40.00"), Method: model.MethodCash}, env.user)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartial, order.PaymentStatus)
	assert.Equal(t, model.OrderPending, order.Status)

	// Overpaying the remaining balance is rejected and records nothing.
	_, err = env.orders.AddPayment(order.ID, &PaymentRequest{Amount: dec("70.00"), Method: model.MethodCash}, env.user)
	var overErr *apperr.OverpaymentError
	require.ErrorAs(t, err, &overErr)
	assertDecEqual(t, dec("60.00"), overErr.Remaining)

	order, err = env.orders.AddPayment(order.ID, &PaymentRequest{Amount: dec("60.00"), Method: model.MethodTransfer}, env.user)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderCompleted, order.Status)
	require.Len(t, order.Payments, 2)
}

func TestCancelPendingOrderRestocks(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "12.00", 6)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 4}},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })
	require.Equal(t, 2, env.stockOf(t, p.ID))

	order, err = env.orders.CancelOrder(order.ID, "customer walked away", env.user)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, order.Status)
	assert.Contains(t, order.Notes, "customer walked away")
	assert.Equal(t, 6, env.stockOf(t, p.ID))

	ledger, err := env.inventoryRepo.FindByProduct(p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, model.TxReturn, ledger[0].Type)
	assert.Equal(t, 4, ledger[0].Quantity)

	// Cancelling twice is an invalid state transition.
	_, err = env.orders.CancelOrder(order.ID, "", env.user)
	var stateErr *apperr.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestCancelCompletedOrderKeepsStockSold(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "10.00", 5)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items:   []OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
		Payment: &PaymentRequest{Amount: dec("20.00"), Method: model.MethodCash},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })
	require.Equal(t, model.OrderCompleted, order.Status)

	order, err = env.orders.CancelOrder(order.ID, "refund without return", env.user)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, order.Status)

	// Items on a completed order stay sold.
	assert.Equal(t, 3, env.stockOf(t, p.ID))
}

func TestStatusOverrideToCancelledRestocks(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "9.00", 7)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 3}},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })
	require.Equal(t, 4, env.stockOf(t, p.ID))

	order, err = env.orders.UpdateStatus(order.ID, model.OrderCancelled, env.user)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, order.Status)
	assert.Equal(t, 7, env.stockOf(t, p.ID))
}

func TestAddItemsRepricesAndDowngradesPayment(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "10.00", 10)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items:   []OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
		Payment: &PaymentRequest{Amount: dec("20.00"), Method: model.MethodCash},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })
	require.Equal(t, model.PaymentPaid, order.PaymentStatus)

	order, err = env.orders.AddItems(order.ID, &AddItemsRequest{
		Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	}, env.user)
	require.NoError(t, err)

	assertDecEqual(t, dec("30.00"), order.Total)
	assert.Equal(t, model.PaymentPartial, order.PaymentStatus)
	assert.Equal(t, 7, env.stockOf(t, p.ID))
}

func TestUpdateDiscountClampAndRederive(t *testing.T) {
	env := newEngineEnv(t)
	p := env.seedProduct(t, "10.00", 10)

	order, err := env.orders.CreateOrder(&CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 3}},
	}, env.user)
	require.NoError(t, err)
	t.Cleanup(func() { env.cleanupOrder(order) })

	order, err = env.orders.UpdateDiscount(order.ID, &DiscountRequest{Type: model.DiscountFixed, Value: dec("500")}, env.user)
	require.NoError(t, err)

	// Oversized discount clamps to the subtotal; a zero-total order with no
	// payments derives as paid.
	assertDecEqual(t, dec("30.00"), order.Discount)
	assertDecEqual(t, dec("0"), order.Total)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderPending, order.Status)
}
