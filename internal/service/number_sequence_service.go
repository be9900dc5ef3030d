package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// NumberSequenceService generates document numbers.
//
// Format: {KIND}-{YEAR}-{SEQUENCE}
// Example: PRE-2026-001, ORD-2026-042
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(repo *repository.NumberSequenceRepository, logger *zap.Logger) *NumberSequenceService {
	return &NumberSequenceService{repo: repo, logger: logger}
}

// withRepo returns a copy bound to another repository, used inside transactions
func (s *NumberSequenceService) withRepo(repo *repository.NumberSequenceRepository) *NumberSequenceService {
	return &NumberSequenceService{repo: repo, logger: s.logger}
}

// Next allocates the next number of a series for the current year
func (s *NumberSequenceService) Next(ctx context.Context, kind domain.SequenceKind) (string, error) {
	year := time.Now().Year()

	seq, err := s.repo.GetNextNumber(ctx, kind, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("kind", string(kind)),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", kind, err)
	}

	number := FormatNumber(kind, year, seq)
	s.logger.Debug("generated number", zap.String("number", number), zap.Int("sequence", seq))
	return number, nil
}

// Current returns the last issued sequence of a series without incrementing it
func (s *NumberSequenceService) Current(ctx context.Context, kind domain.SequenceKind, year int) (int, error) {
	return s.repo.GetCurrentSequence(ctx, kind, year)
}

// FormatNumber renders KIND-YYYY-NNN, zero padded to at least three digits
func FormatNumber(kind domain.SequenceKind, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", kind, year, seq)
}
