package database

import (
	"fmt"
	"log"

	"github.com/ledgerpos/settlement-api/internal/config"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Parties and catalogue
		&entity.Customer{},
		&entity.Product{},

		// Settlement configuration
		&entity.PaymentMethod{},
		&entity.Courier{},

		// Sales
		&entity.Invoice{},
		&entity.LineItem{},
		&entity.BundleComponent{},
		&entity.InvoicePayment{},

		// Ledger
		&entity.Transaction{},

		// Returns
		&entity.ReturnRecord{},
		&entity.ReturnItem{},
		&entity.ReturnExpense{},
		&entity.ReturnPayment{},

		// Repairs
		&entity.Repair{},
		&entity.RepairItem{},
		&entity.DamageLog{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds the configured payment methods a fresh install needs
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	methods := []entity.PaymentMethod{
		{Name: "cash"},
		{Name: "card"},
		{Name: "cheque", RequiresReference: true},
		{Name: "bank transfer"},
	}

	for i := range methods {
		var existing entity.PaymentMethod
		if err := db.Where("name = ?", methods[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&methods[i]).Error; err != nil {
				log.Printf("Warning: failed to create payment method %s: %v", methods[i].Name, err)
			}
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
