package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// ProviderFilters narrows provider listings
type ProviderFilters struct {
	Category string
}

var providerSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"category":  "category",
	"status":    "status",
}

// ProviderRepository handles provider data access
type ProviderRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, provider *domain.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	var provider domain.Provider
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *ProviderRepository) Update(ctx context.Context, provider *domain.Provider) error {
	return r.db.WithContext(ctx).Save(provider).Error
}

func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &domain.Provider{}, id)
}

// List returns a page of providers matching name, contact or tax id
func (r *ProviderRepository) List(ctx context.Context, opts ListOptions, filters ProviderFilters) ([]domain.Provider, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Provider{})
	if opts.Search != "" {
		p := searchPattern(opts.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ? OR LOWER(tax_id) LIKE ?", p, p, p)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if filters.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filters.Category)
	}
	var providers []domain.Provider
	total, err := paginate(query, opts, providerSortableFields, "name", &providers)
	return providers, total, err
}
