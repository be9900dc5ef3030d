package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

var categorySortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
}

// CategoryRepository handles category data access
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByIDs loads the categories with the given IDs; missing IDs are skipped
func (r *CategoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	var categories []domain.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// ErrCategoryInUse is returned when deleting a category would leave a product without any
var ErrCategoryInUse = errors.New("category is the only category of some products")

// Delete removes the category together with its product links. It refuses with
// ErrCategoryInUse while any product belongs to this category alone.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sole int64
		err := tx.Table("product_categories AS pc").
			Where("pc.category_id = ?", id).
			Where("NOT EXISTS (SELECT 1 FROM product_categories o WHERE o.product_id = pc.product_id AND o.category_id <> ?)", id).
			Count(&sole).Error
		if err != nil {
			return err
		}
		if sole > 0 {
			return ErrCategoryInUse
		}
		if err := tx.Exec("DELETE FROM product_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		return deleteByID(tx, &domain.Category{}, id)
	})
}

func (r *CategoryRepository) List(ctx context.Context, opts ListOptions) ([]domain.Category, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Category{})
	if opts.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", searchPattern(opts.Search))
	}
	var categories []domain.Category
	total, err := paginate(query, opts, categorySortableFields, "name", &categories)
	return categories, total, err
}
