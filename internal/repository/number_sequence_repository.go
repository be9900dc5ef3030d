package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// NumberSequenceRepository issues consecutive document numbers per kind and year
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber increments and returns the sequence for kind/year, starting at 1.
// The row is locked with SELECT FOR UPDATE where the database supports it.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, kind domain.SequenceKind, year int) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ? AND year = ?", kind, year).
			First(&seq)

		now := time.Now().UTC()
		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			seq = domain.NumberSequence{Kind: kind, Year: year, LastSequence: 1, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
		case result.Error != nil:
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		default:
			next = seq.LastSequence + 1
			if err := tx.Model(&domain.NumberSequence{}).
				Where("kind = ? AND year = ?", kind, year).
				Updates(map[string]interface{}{"last_sequence": next, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetCurrentSequence returns the last issued sequence, or 0 when none exists
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, kind domain.SequenceKind, year int) (int, error) {
	var seq domain.NumberSequence
	err := r.db.WithContext(ctx).Where("kind = ? AND year = ?", kind, year).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", err)
	}
	return seq.LastSequence, nil
}
