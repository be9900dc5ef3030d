package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

type fakeQuoteStore struct {
	quotes []domain.Quote
	err    error
}

func (f *fakeQuoteStore) ListExpired(ctx context.Context, now time.Time) ([]domain.Quote, error) {
	return f.quotes, f.err
}

// titleLookup answers from the entries a fakeActivities has recorded
type titleLookup struct {
	activities *fakeActivities
	err        error
}

func (l titleLookup) ExistsWithTitle(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	for _, e := range l.activities.entries {
		if e.targetType == targetType && e.targetID == targetID && e.title == title {
			return true, nil
		}
	}
	return false, nil
}

func expiredQuote(number string, validUntil time.Time) domain.Quote {
	q := domain.Quote{Number: number, Status: domain.QuoteStatusSent, ValidUntil: &validUntil}
	q.ID = uuid.New()
	return q
}

func TestExpiredQuotesJob_RecordsOnce(t *testing.T) {
	now := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	store := &fakeQuoteStore{quotes: []domain.Quote{
		expiredQuote("PRE-2026-014", now.AddDate(0, 0, -1)),
		expiredQuote("PRE-2026-020", now.AddDate(0, 0, -6)),
	}}
	activities := &fakeActivities{}

	job := NewExpiredQuotesJob(store, titleLookup{activities: activities}, activities, nil, zap.NewNop(), time.Minute)
	job.now = func() time.Time { return now }

	recorded, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, recorded)
	require.Len(t, activities.entries, 2)
	assert.Equal(t, domain.ActivityTargetQuote, activities.entries[0].targetType)
	assert.Equal(t, "Quote PRE-2026-014 expired on 2026-05-01 without an answer", activities.entries[0].body)

	recorded, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, recorded)
	assert.Len(t, activities.entries, 2)

	// status is never touched
	for _, q := range store.quotes {
		assert.Equal(t, domain.QuoteStatusSent, q.Status)
	}
}

func TestExpiredQuotesJob_Errors(t *testing.T) {
	activities := &fakeActivities{}

	job := NewExpiredQuotesJob(&fakeQuoteStore{err: errors.New("db down")}, titleLookup{activities: activities}, activities, nil, zap.NewNop(), time.Minute)
	_, err := job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "failed to list expired quotes")

	store := &fakeQuoteStore{quotes: []domain.Quote{expiredQuote("PRE-2026-003", time.Now().AddDate(0, 0, -2))}}
	job = NewExpiredQuotesJob(store, titleLookup{activities: activities, err: errors.New("timeout")}, activities, nil, zap.NewNop(), time.Minute)
	_, err = job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "PRE-2026-003")
	assert.Empty(t, activities.entries)
}
