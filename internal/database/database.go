package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/domain"
)

// NewDatabase opens the configured database and applies pool settings
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		// foreign keys are off by default in SQLite
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	default:
		dialector = postgres.Open(cfg.ConnectionString())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck pings the database within the context deadline
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.Category{},
		&domain.Product{},
		&domain.ProductVariant{},
		&domain.Client{},
		&domain.ClientContact{},
		&domain.Provider{},
		&domain.Purchase{},
		&domain.PurchaseItem{},
		&domain.Quote{},
		&domain.QuoteItem{},
		&domain.QuoteComment{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.OrderPayment{},
		&domain.User{},
		&domain.File{},
		&domain.Activity{},
		&domain.NumberSequence{},
	}
}

// AutoMigrate creates or updates tables from the models (for development and tests only)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
