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

// OverdueOrdersJobName is the scheduler name of the overdue order check
const OverdueOrdersJobName = "overdue_orders"

// OverdueOrderStore is the part of the order repository the job needs
type OverdueOrderStore interface {
	ListOverdueUnnotified(ctx context.Context, now, since time.Time) ([]domain.Order, error)
	MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ActivityRecorder appends timeline entries
type ActivityRecorder interface {
	Record(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string)
}

// OverdueOrdersJob flags in-process orders past their estimated delivery date,
// at most once per order and day.
type OverdueOrdersJob struct {
	orders     OverdueOrderStore
	activities ActivityRecorder
	metrics    *metrics.Recorder
	logger     *zap.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewOverdueOrdersJob creates the job. recorder may be nil.
func NewOverdueOrdersJob(orders OverdueOrderStore, activities ActivityRecorder, recorder *metrics.Recorder, logger *zap.Logger, timeout time.Duration) *OverdueOrdersJob {
	return &OverdueOrdersJob{
		orders:     orders,
		activities: activities,
		metrics:    recorder,
		logger:     logger,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Run is called by the scheduler
func (j *OverdueOrdersJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	flagged, err := j.RunOnce(ctx)
	if err != nil {
		j.metrics.JobRun(OverdueOrdersJobName, "error")
		j.logger.Error("overdue order check failed", zap.Error(err))
		return
	}
	j.metrics.JobRun(OverdueOrdersJobName, "success")
	j.logger.Info("overdue order check finished", zap.Int("flagged", flagged))
}

// RunOnce flags overdue orders and returns how many were flagged
func (j *OverdueOrdersJob) RunOnce(ctx context.Context) (int, error) {
	now := j.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	orders, err := j.orders.ListOverdueUnnotified(ctx, now, startOfDay)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue orders: %w", err)
	}

	flagged := 0
	for _, o := range orders {
		days := int(now.Sub(*o.EstimatedDeliveryDate).Hours() / 24)
		j.logger.Warn("order overdue",
			zap.String("orderID", o.ID.String()),
			zap.String("number", o.Number),
			zap.String("client", o.ClientName),
			zap.Int("daysLate", days))

		j.activities.Record(ctx, domain.ActivityTargetOrder, o.ID, "Order overdue",
			fmt.Sprintf("Order %s was due on %s", o.Number, o.EstimatedDeliveryDate.Format("2006-01-02")))

		if err := j.orders.MarkOverdueNotified(ctx, o.ID, now); err != nil {
			return flagged, fmt.Errorf("failed to mark order %s: %w", o.Number, err)
		}
		flagged++
	}
	return flagged, nil
}
