package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/database"
	"github.com/bandera-print/backoffice-api/internal/domain"
)

var dbCounter int64

// SetupTestDB opens a private in-memory SQLite database with every table migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb%d_%s?mode=memory&cache=shared&_foreign_keys=on",
		atomic.AddInt64(&dbCounter, 1), uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// UserContext returns a context carrying a staff user
func UserContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "test-user",
		DisplayName: "Test User",
		Email:       "test@bandera.local",
		Role:        domain.UserRoleStaff,
	})
}

// Dec parses a decimal literal and panics on bad input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateClient inserts an active client
func CreateClient(t *testing.T, db *gorm.DB, name, email string) *domain.Client {
	t.Helper()
	c := &domain.Client{Name: name, Email: email, Type: domain.ClientTypeCompany, Status: domain.RecordStatusActive}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateCategory inserts a category
func CreateCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateProduct inserts a product with scalar price and stock in one category
func CreateProduct(t *testing.T, db *gorm.DB, name string, price string, stock int, category *domain.Category) *domain.Product {
	t.Helper()
	p := Dec(price)
	p2 := &domain.Product{Name: name, Price: &p, Stock: &stock, IsActive: true}
	require.NoError(t, db.Omit("Categories.*").Create(p2).Error)
	if category != nil {
		require.NoError(t, db.Model(p2).Omit("Categories.*").Association("Categories").Append(category))
	}
	return p2
}

// CreateProvider inserts an active provider
func CreateProvider(t *testing.T, db *gorm.DB, name string) *domain.Provider {
	t.Helper()
	p := &domain.Provider{Name: name, Status: domain.RecordStatusActive}
	require.NoError(t, db.Create(p).Error)
	return p
}
