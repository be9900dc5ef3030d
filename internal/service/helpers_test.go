package service_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
	"github.com/bandera-print/backoffice-api/internal/testutil"
)

type testServices struct {
	db         *gorm.DB
	activities *service.ActivityService
	numbers    *service.NumberSequenceService
	categories *service.CategoryService
	products   *service.ProductService
	clients    *service.ClientService
	providers  *service.ProviderService
	purchases  *service.PurchaseService
	quotes     *service.QuoteService
	orders     *service.OrderService
	dashboard  *service.DashboardService
	mailer     *fakeMailer
}

// fakeMailer records quotes passed to SendQuote
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Enabled() bool { return true }

func (m *fakeMailer) SendQuote(ctx context.Context, q *domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, q.Number)
	return m.err
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	providerRepo := repository.NewProviderRepository(db)

	activities := service.NewActivityService(repository.NewActivityRepository(db), logger)
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)
	products := service.NewProductService(productRepo, categoryRepo, nil, activities, logger)
	mailer := &fakeMailer{}

	return &testServices{
		db:         db,
		activities: activities,
		numbers:    numbers,
		categories: service.NewCategoryService(categoryRepo, activities, logger),
		products:   products,
		clients:    service.NewClientService(clientRepo, activities, logger),
		providers:  service.NewProviderService(providerRepo, activities, logger),
		purchases:  service.NewPurchaseService(repository.NewPurchaseRepository(db), providerRepo, activities, logger),
		quotes: service.NewQuoteService(db, quoteRepo, clientRepo, productRepo, numbers, activities, mailer, nil,
			service.QuoteDefaults{TaxRate: testutil.Dec("0.21"), ValidityDays: 15}, logger),
		orders:    service.NewOrderService(orderRepo, activities, nil, logger),
		dashboard: service.NewDashboardService(quoteRepo, orderRepo, products, 5, logger),
		mailer:    mailer,
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
