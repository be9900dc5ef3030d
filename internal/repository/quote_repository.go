package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// QuoteFilters narrows quote listings
type QuoteFilters struct {
	ClientID *uuid.UUID
}

var quoteSortableFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"number":     "number",
	"clientName": "client_name",
	"total":      "total",
	"status":     "status",
	"validUntil": "valid_until",
}

// QuoteRepository handles quotes, their items and comments
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts the quote with its items and comments
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Update saves header fields and pricing only
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(quote).Error
}

// UpdateWithItems saves the quote and replaces its item list
func (r *QuoteRepository) UpdateWithItems(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(quote).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		for i := range quote.Items {
			quote.Items[i].ID = uuid.Nil
			quote.Items[i].QuoteID = quote.ID
		}
		if len(quote.Items) == 0 {
			return nil
		}
		return tx.Create(&quote.Items).Error
	})
}

// AddComment appends a comment to a quote
func (r *QuoteRepository) AddComment(ctx context.Context, comment *domain.QuoteComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// List returns a page of quotes matching number or client name
func (r *QuoteRepository) List(ctx context.Context, opts ListOptions, filters QuoteFilters) ([]domain.Quote, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Quote{})
	if opts.Search != "" {
		p := searchPattern(opts.Search)
		query = query.Where("LOWER(number) LIKE ? OR LOWER(client_name) LIKE ?", p, p)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	var quotes []domain.Quote
	total, err := paginate(query, opts, quoteSortableFields, "updated_at", &quotes, "Items")
	return quotes, total, err
}

// CountByStatus returns the number of quotes per status
func (r *QuoteRepository) CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int64, error) {
	var rows []struct {
		Status domain.QuoteStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.QuoteStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListRecent returns the most recently updated quotes
func (r *QuoteRepository) ListRecent(ctx context.Context, limit int) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).Order("updated_at DESC").Limit(limit).Find(&quotes).Error
	return quotes, err
}

// ListExpired returns sent quotes whose validity date is a day before now
func (r *QuoteRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", domain.QuoteStatusSent, domain.StartOfDay(now)).
		Order("valid_until ASC").
		Find(&quotes).Error
	return quotes, err
}
