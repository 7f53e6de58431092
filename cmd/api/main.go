package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-pos-backoffice/internal/cache"
	"go-pos-backoffice/internal/handler"
	"go-pos-backoffice/internal/metrics"
	"go-pos-backoffice/internal/middleware"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
	"go-pos-backoffice/internal/service"
	"go-pos-backoffice/internal/ws"
	"go-pos-backoffice/pkg/database"
	"go-pos-backoffice/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional outside local development
	}

	log := logger.New()
	defer log.Sync()

	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Category{}, &model.Product{}, &model.Customer{},
		&model.Order{}, &model.OrderItem{}, &model.Payment{},
		&model.InventoryTransaction{}, &model.Settings{},
	); err != nil {
		log.Fatal("auto-migration failed", zap.Error(err))
	}

	seedDefaults(db, log)

	wsHub := ws.NewHub()
	go wsHub.Run()

	productCache := newProductCache(log)
	m := metrics.New()

	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	adjuster := service.NewStockAdjuster(productRepo, inventoryRepo)

	orderService := service.NewOrderService(db, orderRepo, productRepo, paymentRepo, customerRepo, settingsRepo, adjuster, productCache, wsHub, m, log)
	productService := service.NewProductService(db, productRepo, categoryRepo, adjuster, productCache, wsHub, m, log)
	categoryService := service.NewCategoryService(categoryRepo)
	customerService := service.NewCustomerService(customerRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, productRepo)
	settingsService := service.NewSettingsService(settingsRepo, log)
	dashboardService := service.NewDashboardService(productRepo, orderRepo, inventoryRepo, customerRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	orderHandler := handler.NewOrderHandler(orderService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	customerHandler := handler.NewCustomerHandler(customerService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	app := fiber.New(fiber.Config{
		AppName: "POS Backoffice v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/validate", authHandler.Validate)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Orders
	protected.Get("/orders", middleware.RequirePrivilege("order:view"), orderHandler.ListOrders)
	protected.Get("/orders/:id", middleware.RequirePrivilege("order:view"), orderHandler.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege("order:create"), orderHandler.CreateOrder)
	protected.Post("/orders/:id/items", middleware.RequirePrivilege("order:update"), orderHandler.AddItems)
	protected.Put("/orders/:id/discount", middleware.RequirePrivilege("order:update"), orderHandler.UpdateDiscount)
	protected.Post("/orders/:id/payments", middleware.RequirePrivilege("payment:create"), orderHandler.AddPayment)
	protected.Post("/orders/:id/cancel", middleware.RequirePrivilege("order:cancel"), orderHandler.CancelOrder)
	protected.Put("/orders/:id/status", middleware.RequirePrivilege("order:update"), orderHandler.UpdateStatus)

	// Catalog
	protected.Get("/products", middleware.RequirePrivilege("product:view"), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeleteProduct)
	protected.Post("/products/:id/adjust-stock", middleware.RequirePrivilege("product:adjust_stock"), productHandler.AdjustStock)

	protected.Get("/categories", middleware.RequirePrivilege("product:view"), categoryHandler.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege("category:manage"), categoryHandler.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege("category:manage"), categoryHandler.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege("category:manage"), categoryHandler.DeleteCategory)

	// Customers
	protected.Get("/customers", middleware.RequirePrivilege("customer:view"), customerHandler.GetCustomers)
	protected.Get("/customers/:id", middleware.RequirePrivilege("customer:view"), customerHandler.GetCustomer)
	protected.Post("/customers", middleware.RequirePrivilege("customer:manage"), customerHandler.CreateCustomer)
	protected.Put("/customers/:id", middleware.RequirePrivilege("customer:manage"), customerHandler.UpdateCustomer)
	protected.Delete("/customers/:id", middleware.RequirePrivilege("customer:manage"), customerHandler.DeleteCustomer)

	// Inventory ledger
	protected.Get("/inventory/transactions", middleware.RequirePrivilege("product:view"), inventoryHandler.GetTransactions)
	protected.Get("/inventory/products/:id/transactions", middleware.RequirePrivilege("product:view"), inventoryHandler.GetProductHistory)

	// Settings
	protected.Get("/settings", settingsHandler.GetSettings)
	protected.Put("/settings", middleware.RequirePrivilege("settings:update"), settingsHandler.UpdateSettings)

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetStats)
	protected.Get("/dashboard/sales", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetSalesByDay)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.GetStockMovement)

	// Users and roles
	protected.Get("/users", middleware.RequirePrivilege("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege("user:view"), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket route for stock and presence events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// newProductCache returns a Redis-backed cache when REDIS_ADDR is set and
// reachable, otherwise a no-op cache.
func newProductCache(log *zap.Logger) cache.ProductCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Info("REDIS_ADDR not set, product cache disabled")
		return cache.NoopProductCache{}
	}

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			redisDB = parsed
		}
	}

	c := cache.NewRedisProductCache(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := c.Ping(context.Background()); err != nil {
		log.Warn("redis unreachable, product cache disabled", zap.Error(err))
		return cache.NoopProductCache{}
	}

	log.Info("redis product cache enabled", zap.String("addr", addr))
	return c
}

// seedDefaults creates privileges, roles, the settings row and the admin
// account on first boot.
func seedDefaults(db *gorm.DB, log *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed privileges", zap.Error(err))
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed roles", zap.Error(err))
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets everything.
	if masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin); err == nil && len(masterRole.Privileges) == 0 {
		if err := db.Model(masterRole).Association("Privileges").Replace(allPrivileges); err != nil {
			log.Warn("failed to assign master admin privileges", zap.Error(err))
		}
	}

	// ADMIN gets everything except user management.
	if adminRole, err := roleRepo.FindByCode(model.RoleAdmin); err == nil && len(adminRole.Privileges) == 0 {
		var adminPrivileges []model.Privilege
		for _, p := range allPrivileges {
			switch p.Code {
			case "user:create", "user:update", "user:delete", "user:update_privilege":
			default:
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		if err := db.Model(adminRole).Association("Privileges").Replace(adminPrivileges); err != nil {
			log.Warn("failed to assign admin privileges", zap.Error(err))
		}
	}

	// CASHIER can sell and look things up, nothing more.
	if cashierRole, err := roleRepo.FindByCode(model.RoleCashier); err == nil && len(cashierRole.Privileges) == 0 {
		cashierCodes := map[string]bool{
			"product:view": true, "customer:view": true, "customer:manage": true,
			"order:view": true, "order:create": true, "order:update": true,
			"payment:create": true,
		}
		var cashierPrivileges []model.Privilege
		for _, p := range allPrivileges {
			if cashierCodes[p.Code] {
				cashierPrivileges = append(cashierPrivileges, p)
			}
		}
		if err := db.Model(cashierRole).Association("Privileges").Replace(cashierPrivileges); err != nil {
			log.Warn("failed to assign cashier privileges", zap.Error(err))
		}
	}

	if _, err := settingsRepo.Get(); err != nil {
		log.Warn("failed to initialize settings", zap.Error(err))
	}

	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
		if err != nil {
			log.Warn("master admin role missing, skipping admin seed", zap.Error(err))
			return
		}

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Master Administrator",
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Warn("failed to hash admin password", zap.Error(err))
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Warn("failed to create admin user", zap.Error(err))
		} else {
			log.Info("admin user created", zap.String("email", admin.Email))
		}
	}
}
