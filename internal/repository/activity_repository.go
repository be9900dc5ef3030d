package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// ActivityRepository stores the per-entity timeline
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByTarget returns the newest activities of one record
func (r *ActivityRepository) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	query := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&activities).Error
	return activities, err
}

// ExistsWithTitle reports whether a record already has an activity with this title
func (r *ActivityRepository) ExistsWithTitle(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Activity{}).
		Where("target_type = ? AND target_id = ? AND title = ?", targetType, targetID, title).
		Count(&count).Error
	return count > 0, err
}
