package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/ledgerpos/settlement-api/internal/application/service"
	"github.com/ledgerpos/settlement-api/internal/config"
	"github.com/ledgerpos/settlement-api/internal/infrastructure/database"
	"github.com/ledgerpos/settlement-api/internal/infrastructure/repository"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/handler"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/routes"
	"github.com/ledgerpos/settlement-api/pkg/events"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	repairRepo := repository.NewRepairRepository(db)
	damageLogRepo := repository.NewDamageLogRepository(db)
	paymentMethodRepo := repository.NewPaymentMethodRepository(db)
	courierRepo := repository.NewCourierRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize event bus
	bus := events.NewBus()

	// Initialize services
	saleService := service.NewSaleService(invoiceRepo, customerRepo, productRepo, transactionRepo, paymentMethodRepo, courierRepo, &cfg.Settlement, bus)
	returnService := service.NewReturnService(returnRepo, invoiceRepo, productRepo, transactionRepo, &cfg.Settlement, bus)
	repairService := service.NewRepairService(repairRepo, damageLogRepo, productRepo, customerRepo, transactionRepo, saleService, bus)
	customerService := service.NewCustomerService(customerRepo, transactionRepo)
	productService := service.NewProductService(productRepo, damageLogRepo)
	ledgerService := service.NewLedgerService(transactionRepo, customerRepo)
	settingsService := service.NewSettingsService(paymentMethodRepo, courierRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Sale:     handler.NewSaleHandler(saleService),
		Return:   handler.NewReturnHandler(returnService),
		Repair:   handler.NewRepairHandler(repairService),
		Customer: handler.NewCustomerHandler(customerService, ledgerService),
		Product:  handler.NewProductHandler(productService),
		Ledger:   handler.NewLedgerHandler(ledgerService),
		Settings: handler.NewSettingsHandler(settingsService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
