package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/testutil"
)

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	current, err := repo.GetCurrentSequence(ctx, domain.SequenceQuote, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	for want := 1; want <= 3; want++ {
		n, err := repo.GetNextNumber(ctx, domain.SequenceQuote, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// kinds and years count independently
	n, err := repo.GetNextNumber(ctx, domain.SequenceOrder, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.GetNextNumber(ctx, domain.SequenceQuote, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	current, err = repo.GetCurrentSequence(ctx, domain.SequenceQuote, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, current)
}

func TestNumberSequenceRepository_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	const workers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int]bool{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.GetNextNumber(context.Background(), domain.SequenceOrder, 2026)
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	for i := 1; i <= workers; i++ {
		assert.True(t, seen[i], "missing number %d", i)
	}
}

func createOrder(t *testing.T, db *gorm.DB, client *domain.Client, number string, status domain.OrderStatus, due *time.Time, balance string) *domain.Order {
	t.Helper()
	o := &domain.Order{
		Number:                number,
		QuoteID:               uuid.New(),
		ClientSnapshot:        domain.SnapshotOf(client),
		Status:                status,
		EstimatedDeliveryDate: due,
		Balance:               testutil.Dec(balance),
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestOrderRepository_Overdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	client := testutil.CreateClient(t, db, "Municipalidad", "compras@muni.gob.ar")

	late := createOrder(t, db, client, "ORD-2026-001", domain.OrderStatusInProcess, day(2026, 3, 1), "100")
	createOrder(t, db, client, "ORD-2026-002", domain.OrderStatusInProcess, day(2026, 3, 20), "50")
	createOrder(t, db, client, "ORD-2026-003", domain.OrderStatusCompleted, day(2026, 2, 1), "0")
	createOrder(t, db, client, "ORD-2026-004", domain.OrderStatusInProcess, nil, "25")

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	startOfDay := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	count, err := repo.CountOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	orders, err := repo.ListOverdueUnnotified(ctx, now, startOfDay)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, late.ID, orders[0].ID)

	require.NoError(t, repo.MarkOverdueNotified(ctx, late.ID, now))
	orders, err = repo.ListOverdueUnnotified(ctx, now, startOfDay)
	require.NoError(t, err)
	assert.Empty(t, orders)

	tomorrow := startOfDay.AddDate(0, 0, 1)
	orders, err = repo.ListOverdueUnnotified(ctx, tomorrow.Add(time.Hour), tomorrow)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	outstanding, err := repo.OutstandingBalance(ctx)
	require.NoError(t, err)
	assert.True(t, outstanding.Equal(testutil.Dec("175")), "got %s", outstanding)
}

func TestOrderRepository_OverdueDayBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	client := testutil.CreateClient(t, db, "Municipalidad", "")

	yesterday := createOrder(t, db, client, "ORD-2026-001", domain.OrderStatusInProcess, day(2026, 3, 9), "10")
	createOrder(t, db, client, "ORD-2026-002", domain.OrderStatusInProcess, day(2026, 3, 10), "10")

	for _, now := range []time.Time{
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC),
	} {
		count, err := repo.CountOverdue(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "at %s", now)

		orders, err := repo.ListOverdueUnnotified(ctx, now, now)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, yesterday.ID, orders[0].ID)
	}
}

func TestOrderRepository_Modify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	client := testutil.CreateClient(t, db, "Club Social", "")
	order := createOrder(t, db, client, "ORD-2026-001", domain.OrderStatusInProcess, nil, "242")
	require.NoError(t, db.Model(order).Update("total", testutil.Dec("242")).Error)

	updated, err := repo.Modify(ctx, order.ID, func(o *domain.Order) error {
		_, err := o.RecordPayment(domain.OrderPayment{Amount: testutil.Dec("100"), Method: domain.PaymentMethodCash, PaidAt: time.Now().UTC()})
		return err
	})
	require.NoError(t, err)
	assert.True(t, testutil.Dec("142").Equal(updated.Balance))

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Payments, 1)
	assert.NotEqual(t, uuid.Nil, stored.Payments[0].ID)
	assert.True(t, testutil.Dec("142").Equal(stored.Balance))

	t.Run("rejected change writes nothing", func(t *testing.T) {
		_, err := repo.Modify(ctx, order.ID, func(o *domain.Order) error {
			if _, err := o.RecordPayment(domain.OrderPayment{Amount: testutil.Dec("40"), Method: domain.PaymentMethodCash, PaidAt: time.Now().UTC()}); err != nil {
				return err
			}
			return domain.ErrOrderClosed
		})
		assert.ErrorIs(t, err, domain.ErrOrderClosed)

		stored, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Payments, 1)
		assert.True(t, testutil.Dec("142").Equal(stored.Balance))
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := repo.Modify(ctx, uuid.New(), func(*domain.Order) error { return nil })
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestOrderRepository_GetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestQuoteRepository_ListExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	client := testutil.CreateClient(t, db, "Escuela 12", "")

	mk := func(number string, status domain.QuoteStatus, validUntil *time.Time) *domain.Quote {
		q := &domain.Quote{Number: number, ClientSnapshot: domain.SnapshotOf(client), Status: status, ValidUntil: validUntil}
		require.NoError(t, db.Create(q).Error)
		return q
	}
	expired := mk("PRE-2026-001", domain.QuoteStatusSent, day(2026, 4, 1))
	mk("PRE-2026-002", domain.QuoteStatusSent, day(2026, 5, 30))
	mk("PRE-2026-003", domain.QuoteStatusDraft, day(2026, 4, 1))
	mk("PRE-2026-004", domain.QuoteStatusRejected, day(2026, 4, 1))

	quotes, err := repo.ListExpired(context.Background(), time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, expired.ID, quotes[0].ID)
}

func TestQuoteRepository_ListExpiredDayBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	client := testutil.CreateClient(t, db, "Escuela 12", "")

	lapsed := &domain.Quote{Number: "PRE-2026-001", ClientSnapshot: domain.SnapshotOf(client), Status: domain.QuoteStatusSent, ValidUntil: day(2026, 5, 1)}
	lastDay := &domain.Quote{Number: "PRE-2026-002", ClientSnapshot: domain.SnapshotOf(client), Status: domain.QuoteStatusSent, ValidUntil: day(2026, 5, 2)}
	require.NoError(t, db.Create(lapsed).Error)
	require.NoError(t, db.Create(lastDay).Error)

	quotes, err := repo.ListExpired(context.Background(), time.Date(2026, 5, 2, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, lapsed.ID, quotes[0].ID)
}

func TestQuoteRepository_ListSearchAndSort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	acme := testutil.CreateClient(t, db, "Acme Banderas", "")
	club := testutil.CreateClient(t, db, "Club Social", "")

	for i, c := range []*domain.Client{acme, club, acme} {
		q := &domain.Quote{Number: []string{"PRE-2026-001", "PRE-2026-002", "PRE-2026-003"}[i], ClientSnapshot: domain.SnapshotOf(c), Status: domain.QuoteStatusDraft}
		require.NoError(t, db.Create(q).Error)
	}

	quotes, total, err := repo.List(context.Background(), repository.ListOptions{
		Search: "acme",
		Sort:   repository.SortConfig{Field: "number", Order: repository.SortOrderAsc},
	}, repository.QuoteFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, quotes, 2)
	assert.Equal(t, "PRE-2026-001", quotes[0].Number)
	assert.Equal(t, "PRE-2026-003", quotes[1].Number)

	quotes, total, err = repo.List(context.Background(), repository.ListOptions{PageSize: 1, Page: 2}, repository.QuoteFilters{ClientID: &acme.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, quotes, 1)
}

func TestActivityRepository_ExistsWithTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	ctx := context.Background()
	target := uuid.New()

	exists, err := repo.ExistsWithTitle(ctx, domain.ActivityTargetQuote, target, "Quote expired")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &domain.Activity{
		TargetType: domain.ActivityTargetQuote,
		TargetID:   target,
		Title:      "Quote expired",
		OccurredAt: time.Now().UTC(),
	}))

	exists, err = repo.ExistsWithTitle(ctx, domain.ActivityTargetQuote, target, "Quote expired")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsWithTitle(ctx, domain.ActivityTargetOrder, target, "Quote expired")
	require.NoError(t, err)
	assert.False(t, exists)
}
