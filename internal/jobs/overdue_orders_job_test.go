package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/metrics"
)

type recordedActivity struct {
	targetType domain.ActivityTargetType
	targetID   uuid.UUID
	title      string
	body       string
}

type fakeActivities struct {
	entries []recordedActivity
}

func (f *fakeActivities) Record(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	f.entries = append(f.entries, recordedActivity{targetType, targetID, title, body})
}

type fakeOrderStore struct {
	orders   []domain.Order
	notified map[uuid.UUID]time.Time
	since    time.Time
	listErr  error
	markErr  error
}

func (f *fakeOrderStore) ListOverdueUnnotified(ctx context.Context, now, since time.Time) ([]domain.Order, error) {
	f.since = since
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Order
	for _, o := range f.orders {
		if at, ok := f.notified[o.ID]; ok && !at.Before(since) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderStore) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.notified[id] = at
	return nil
}

func overdueOrder(number string, due time.Time) domain.Order {
	o := domain.Order{Number: number, Status: domain.OrderStatusInProcess, EstimatedDeliveryDate: &due}
	o.ID = uuid.New()
	o.ClientName = "Club Atlético"
	return o
}

func TestOverdueOrdersJob_FlagsOncePerDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeOrderStore{
		orders: []domain.Order{
			overdueOrder("ORD-2026-001", now.AddDate(0, 0, -3)),
			overdueOrder("ORD-2026-002", now.AddDate(0, 0, -1)),
		},
		notified: map[uuid.UUID]time.Time{},
	}
	activities := &fakeActivities{}

	job := NewOverdueOrdersJob(store, activities, nil, zap.NewNop(), time.Minute)
	job.now = func() time.Time { return now }

	flagged, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, flagged)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), store.since)
	require.Len(t, activities.entries, 2)
	assert.Equal(t, domain.ActivityTargetOrder, activities.entries[0].targetType)
	assert.Equal(t, "Order overdue", activities.entries[0].title)
	assert.Equal(t, "Order ORD-2026-001 was due on 2026-03-07", activities.entries[0].body)

	// same day: nothing new
	flagged, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)

	// next day: flagged again
	job.now = func() time.Time { return now.AddDate(0, 0, 1) }
	flagged, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, flagged)
	assert.Len(t, activities.entries, 4)
}

func TestOverdueOrdersJob_Errors(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	job := NewOverdueOrdersJob(&fakeOrderStore{listErr: errors.New("db down")}, &fakeActivities{}, nil, zap.NewNop(), time.Minute)
	_, err := job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "failed to list overdue orders")

	store := &fakeOrderStore{
		orders:   []domain.Order{overdueOrder("ORD-2026-009", now.AddDate(0, 0, -2))},
		notified: map[uuid.UUID]time.Time{},
		markErr:  errors.New("locked"),
	}
	job = NewOverdueOrdersJob(store, &fakeActivities{}, nil, zap.NewNop(), time.Minute)
	job.now = func() time.Time { return now }
	flagged, err := job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "ORD-2026-009")
	assert.Equal(t, 0, flagged)
}

func TestOverdueOrdersJob_RunRecordsMetric(t *testing.T) {
	recorder := metrics.New()

	ok := NewOverdueOrdersJob(&fakeOrderStore{notified: map[uuid.UUID]time.Time{}}, &fakeActivities{}, recorder, zap.NewNop(), time.Minute)
	ok.Run()
	failing := NewOverdueOrdersJob(&fakeOrderStore{listErr: errors.New("db down")}, &fakeActivities{}, recorder, zap.NewNop(), time.Minute)
	failing.Run()

	w := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `backoffice_job_runs_total{job="overdue_orders",result="success"} 1`)
	assert.Contains(t, body, `backoffice_job_runs_total{job="overdue_orders",result="error"} 1`)
}
