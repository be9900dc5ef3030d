package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
	"github.com/bandera-print/backoffice-api/internal/testutil"
)

func createOpenOrder(t *testing.T, s *testServices) *domain.OrderDTO {
	t.Helper()
	sent := createSentQuote(t, s)
	res, err := s.quotes.Confirm(testutil.UserContext(), sent.ID)
	require.NoError(t, err)
	return &res.Order
}

func TestOrderService_RecordPayment(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	order := createOpenOrder(t, s)

	t.Run("partial payment lowers the balance", func(t *testing.T) {
		updated, err := s.orders.RecordPayment(ctx, order.ID, &domain.RecordPaymentRequest{
			Amount: testutil.Dec("100"),
			Method: domain.PaymentMethodTransfer,
		})
		require.NoError(t, err)
		assert.True(t, testutil.Dec("142").Equal(updated.Balance))
		require.Len(t, updated.PaymentHistory, 1)
		assert.Equal(t, "Test User", updated.PaymentHistory[0].RecordedBy)

		stored, err := s.orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, testutil.Dec("142").Equal(stored.Balance))
		assert.Len(t, stored.PaymentHistory, 1)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		_, err := s.orders.RecordPayment(ctx, order.ID, &domain.RecordPaymentRequest{
			Amount: testutil.Dec("142.01"),
			Method: domain.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)
	})

	t.Run("settling keeps the order in process", func(t *testing.T) {
		updated, err := s.orders.RecordPayment(ctx, order.ID, &domain.RecordPaymentRequest{
			Amount: testutil.Dec("142"),
			Method: domain.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.True(t, updated.Balance.IsZero())
		assert.Equal(t, domain.OrderStatusInProcess, updated.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := s.orders.RecordPayment(ctx, uuid.New(), &domain.RecordPaymentRequest{
			Amount: testutil.Dec("1"),
			Method: domain.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})
}

func TestOrderService_ConcurrentPayments(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	order := createOpenOrder(t, s)

	const workers = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, refused := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.orders.RecordPayment(ctx, order.ID, &domain.RecordPaymentRequest{
				Amount: testutil.Dec("100"),
				Method: domain.PaymentMethodCash,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrPaymentExceedsBalance):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	down := testutil.Dec("10")
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.orders.UpdateDetails(ctx, order.ID, &domain.UpdateOrderRequest{DownPayment: &down})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	assert.Equal(t, workers-2, refused)

	// 242 - 10 down - 2x100
	stored, err := s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("32").Equal(stored.Balance), "got %s", stored.Balance)
	assert.True(t, testutil.Dec("10").Equal(stored.DownPayment))
	assert.Len(t, stored.PaymentHistory, 2)
}

func TestOrderService_UpdateDetails(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	order := createOpenOrder(t, s)

	delivery := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	method := domain.PaymentMethodCard
	invoice := domain.InvoiceTypeB
	number := " 0001-00001234 "
	down := testutil.Dec("42")

	updated, err := s.orders.UpdateDetails(ctx, order.ID, &domain.UpdateOrderRequest{
		EstimatedDeliveryDate: &delivery,
		PaymentMethod:         &method,
		DownPayment:           &down,
		InvoiceType:           &invoice,
		InvoiceNumber:         &number,
	})
	require.NoError(t, err)
	assert.True(t, testutil.Dec("200").Equal(updated.Balance))
	assert.Equal(t, domain.PaymentMethodCard, updated.PaymentMethod)
	assert.Equal(t, domain.InvoiceTypeB, updated.InvoiceType)
	assert.Equal(t, "0001-00001234", updated.InvoiceNumber)
	require.NotNil(t, updated.EstimatedDeliveryDate)

	t.Run("down payment above total", func(t *testing.T) {
		tooMuch := testutil.Dec("243")
		_, err := s.orders.UpdateDetails(ctx, order.ID, &domain.UpdateOrderRequest{DownPayment: &tooMuch})
		assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)
	})

	t.Run("closed order", func(t *testing.T) {
		_, err := s.orders.Cancel(ctx, order.ID, &domain.CancelOrderRequest{Reason: "client withdrew"})
		require.NoError(t, err)

		notes := "late edit"
		_, err = s.orders.UpdateDetails(ctx, order.ID, &domain.UpdateOrderRequest{Notes: &notes})
		assert.ErrorIs(t, err, domain.ErrOrderClosed)
	})
}

func TestOrderService_CompleteAndCancel(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()

	t.Run("complete", func(t *testing.T) {
		order := createOpenOrder(t, s)
		completed, err := s.orders.Complete(ctx, order.ID, &domain.CompleteOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, completed.Status)
		assert.NotNil(t, completed.CompletedAt)
		assert.NotNil(t, completed.ActualDeliveryDate)

		_, err = s.orders.Cancel(ctx, order.ID, &domain.CancelOrderRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("cancel", func(t *testing.T) {
		order := createOpenOrder(t, s)
		cancelled, err := s.orders.Cancel(ctx, order.ID, &domain.CancelOrderRequest{Reason: "no stock"})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, "no stock", cancelled.CancellationReason)

		_, err = s.orders.Complete(ctx, order.ID, &domain.CompleteOrderRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		activities, err := s.orders.Activities(ctx, order.ID)
		require.NoError(t, err)
		require.NotEmpty(t, activities)
		assert.Equal(t, "Order cancelled", activities[0].Title)
	})
}

func TestOrderService_List(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	open := createOpenOrder(t, s)
	closed := createOpenOrder(t, s)
	_, err := s.orders.Cancel(ctx, closed.ID, &domain.CancelOrderRequest{})
	require.NoError(t, err)

	past := time.Now().UTC().AddDate(0, 0, -5)
	_, err = s.orders.UpdateDetails(ctx, open.ID, &domain.UpdateOrderRequest{EstimatedDeliveryDate: &past})
	require.NoError(t, err)

	res, err := s.orders.List(ctx, repository.ListOptions{Status: string(domain.OrderStatusInProcess)}, repository.OrderFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	res, err = s.orders.List(ctx, repository.ListOptions{}, repository.OrderFilters{OverdueOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	orders := res.Data.([]domain.OrderDTO)
	assert.Equal(t, open.ID, orders[0].ID)
	assert.True(t, orders[0].IsOverdue)

	_, err = s.orders.List(ctx, repository.ListOptions{Status: "delivered"}, repository.OrderFilters{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDashboardService_GetSummary(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	order := createOpenOrder(t, s)
	_, err := s.orders.RecordPayment(ctx, order.ID, &domain.RecordPaymentRequest{Amount: testutil.Dec("100"), Method: domain.PaymentMethodCash})
	require.NoError(t, err)

	category := testutil.CreateCategory(t, s.db, "Vinilos")
	testutil.CreateProduct(t, s.db, "Vinilo blanco", "10", 2, category)
	testutil.CreateProduct(t, s.db, "Vinilo negro", "10", 50, category)

	summary, err := s.dashboard.GetSummary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.QuotesByStatus[domain.QuoteStatusConfirmed])
	assert.EqualValues(t, 0, summary.QuotesByStatus[domain.QuoteStatusDraft])
	assert.EqualValues(t, 1, summary.OrdersByStatus[domain.OrderStatusInProcess])
	assert.True(t, testutil.Dec("142").Equal(summary.OutstandingBalance))
	assert.Equal(t, 1, summary.LowStockProducts)
	assert.Len(t, summary.RecentQuotes, 1)
}
