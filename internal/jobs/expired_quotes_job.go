package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/metrics"
)

// ExpiredQuotesJobName is the scheduler name of the expired quote check
const ExpiredQuotesJobName = "expired_quotes"

const expiredQuoteTitle = "Quote expired"

// ExpiredQuoteStore lists sent quotes past their validity date
type ExpiredQuoteStore interface {
	ListExpired(ctx context.Context, now time.Time) ([]domain.Quote, error)
}

// ActivityLookup checks whether a timeline entry already exists
type ActivityLookup interface {
	ExistsWithTitle(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title string) (bool, error)
}

// ExpiredQuotesJob records a timeline entry for each sent quote past its validity
// date. The quote status is left unchanged.
type ExpiredQuotesJob struct {
	quotes     ExpiredQuoteStore
	lookup     ActivityLookup
	activities ActivityRecorder
	metrics    *metrics.Recorder
	logger     *zap.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewExpiredQuotesJob creates the job. recorder may be nil.
func NewExpiredQuotesJob(quotes ExpiredQuoteStore, lookup ActivityLookup, activities ActivityRecorder, recorder *metrics.Recorder, logger *zap.Logger, timeout time.Duration) *ExpiredQuotesJob {
	return &ExpiredQuotesJob{
		quotes:     quotes,
		lookup:     lookup,
		activities: activities,
		metrics:    recorder,
		logger:     logger,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Run is called by the scheduler
func (j *ExpiredQuotesJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	recorded, err := j.RunOnce(ctx)
	if err != nil {
		j.metrics.JobRun(ExpiredQuotesJobName, "error")
		j.logger.Error("expired quote check failed", zap.Error(err))
		return
	}
	j.metrics.JobRun(ExpiredQuotesJobName, "success")
	j.logger.Info("expired quote check finished", zap.Int("recorded", recorded))
}

// RunOnce records newly expired quotes and returns how many were recorded
func (j *ExpiredQuotesJob) RunOnce(ctx context.Context) (int, error) {
	quotes, err := j.quotes.ListExpired(ctx, j.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired quotes: %w", err)
	}

	recorded := 0
	for _, q := range quotes {
		exists, err := j.lookup.ExistsWithTitle(ctx, domain.ActivityTargetQuote, q.ID, expiredQuoteTitle)
		if err != nil {
			return recorded, fmt.Errorf("failed to check quote %s: %w", q.Number, err)
		}
		if exists {
			continue
		}
		j.logger.Info("quote expired",
			zap.String("quoteID", q.ID.String()),
			zap.String("number", q.Number),
			zap.String("client", q.ClientName))
		j.activities.Record(ctx, domain.ActivityTargetQuote, q.ID, expiredQuoteTitle,
			fmt.Sprintf("Quote %s expired on %s without an answer", q.Number, q.ValidUntil.Format("2006-01-02")))
		recorded++
	}
	return recorded, nil
}
