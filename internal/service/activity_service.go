package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// maxActivities bounds a timeline response
const maxActivities = 100

// ActivityService records and reads the timeline of quotes, orders and catalogue records
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

// NewActivityService creates a new ActivityService instance
func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, logger: logger}
}

// Record appends a timeline entry attributed to the caller. Failures are logged
// and never fail the operation that produced the entry.
func (s *ActivityService) Record(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	s.record(ctx, s.activityRepo, targetType, targetID, title, body)
}

func (s *ActivityService) record(ctx context.Context, repo *repository.ActivityRepository, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:  targetType,
		TargetID:    targetID,
		Title:       title,
		Body:        body,
		CreatorName: auth.ActorName(ctx),
		OccurredAt:  time.Now().UTC(),
	}
	if err := repo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("targetType", string(targetType)),
			zap.String("targetID", targetID.String()),
			zap.String("title", title),
			zap.Error(err))
	}
}

// List returns the most recent entries for a record, newest first
func (s *ActivityService) List(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID) ([]domain.ActivityDTO, error) {
	activities, err := s.activityRepo.ListByTarget(ctx, targetType, targetID, maxActivities)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
