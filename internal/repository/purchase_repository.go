package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// PurchaseFilters narrows purchase listings
type PurchaseFilters struct {
	ProviderID *uuid.UUID
}

var purchaseSortableFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"purchaseDate": "purchase_date",
	"total":        "total",
	"providerName": "provider_name",
}

// PurchaseRepository handles purchases and their items
type PurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Update saves the purchase and replaces its items
func (r *PurchaseRepository) Update(ctx context.Context, purchase *domain.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(purchase).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&domain.PurchaseItem{}).Error; err != nil {
			return err
		}
		for i := range purchase.Items {
			purchase.Items[i].ID = uuid.Nil
			purchase.Items[i].PurchaseID = purchase.ID
		}
		if len(purchase.Items) == 0 {
			return nil
		}
		return tx.Create(&purchase.Items).Error
	})
}

func (r *PurchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).Delete(&domain.PurchaseItem{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &domain.Purchase{}, id)
	})
}

// List returns a page of purchases matching provider name or invoice number
func (r *PurchaseRepository) List(ctx context.Context, opts ListOptions, filters PurchaseFilters) ([]domain.Purchase, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Purchase{})
	if opts.Search != "" {
		p := searchPattern(opts.Search)
		query = query.Where("LOWER(provider_name) LIKE ? OR LOWER(invoice_number) LIKE ?", p, p)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if filters.ProviderID != nil {
		query = query.Where("provider_id = ?", *filters.ProviderID)
	}
	var purchases []domain.Purchase
	total, err := paginate(query, opts, purchaseSortableFields, "purchase_date", &purchases, "Items")
	return purchases, total, err
}
