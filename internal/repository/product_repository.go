package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// ProductFilters narrows product listings
type ProductFilters struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
}

var productSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
}

// ProductRepository handles products, their variants and category links
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func withProductRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("size ASC") })
}

// Create inserts the product, its variants and its category links
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Categories.*").Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	if err := withProductRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves scalar fields and replaces variants and category links
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
			return err
		}
		if err := tx.Model(product).Omit("Categories.*").Association("Categories").Replace(product.Categories); err != nil {
			return err
		}
		keep := make([]uuid.UUID, 0, len(product.Variants))
		for i := range product.Variants {
			product.Variants[i].ProductID = product.ID
			if product.Variants[i].ID != uuid.Nil {
				keep = append(keep, product.Variants[i].ID)
			}
		}
		stale := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&domain.ProductVariant{}).Error; err != nil {
			return err
		}
		for i := range product.Variants {
			if err := tx.Save(&product.Variants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateImage stores the image and thumbnail paths of a product
func (r *ProductRepository) UpdateImage(ctx context.Context, id uuid.UUID, imagePath, thumbnailPath string) error {
	result := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image_path":     imagePath,
		"thumbnail_path": thumbnailPath,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the product. Quote and order lines keep their description.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductVariant{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &domain.Product{}, id)
	})
}

// List returns a page of products with categories and variants loaded
func (r *ProductRepository) List(ctx context.Context, opts ListOptions, filters ProductFilters) ([]domain.Product, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Product{})
	if opts.Search != "" {
		p := searchPattern(opts.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}
	if filters.CategoryID != nil {
		query = query.Where("id IN (?)",
			r.db.Table("product_categories").Select("product_id").Where("category_id = ?", *filters.CategoryID))
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var products []domain.Product
	total, err := paginate(query, opts, productSortableFields, "name", &products, "Categories", "Variants")
	return products, total, err
}

// ListActive returns every active product with its variants
func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("is_active = ?", true).Find(&products).Error
	return products, err
}
