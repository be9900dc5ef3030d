package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// ProductService manages the catalogue
type ProductService struct {
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	files        *FileService
	activities   *ActivityService
	logger       *zap.Logger
}

// NewProductService creates a ProductService. files may be nil, in which case
// stored images are left in place when a product is deleted.
func NewProductService(
	productRepo *repository.ProductRepository,
	categoryRepo *repository.CategoryRepository,
	files *FileService,
	activities *ActivityService,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		files:        files,
		activities:   activities,
		logger:       logger,
	}
}

func (s *ProductService) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("categoryIds", "at least one category is required")
	}
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	categories, err := s.categoryRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if len(categories) != len(unique) {
		return nil, ErrCategoryNotFound
	}
	return categories, nil
}

// applyProductRequest copies the request onto p. Variant IDs from the request are
// kept only when they already belong to the product.
func applyProductRequest(p *domain.Product, req *domain.ProductRequest) {
	existing := make(map[uuid.UUID]bool, len(p.Variants))
	for _, v := range p.Variants {
		existing[v.ID] = true
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Description = strings.TrimSpace(req.Description)
	p.HasVariants = req.HasVariants
	p.Price = req.Price
	p.Stock = req.Stock
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	tags := make(pq.StringArray, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags

	p.Variants = make([]domain.ProductVariant, len(req.Variants))
	for i, v := range req.Variants {
		variant := domain.ProductVariant{
			ProductID: p.ID,
			Size:      strings.TrimSpace(v.Size),
			SKU:       strings.TrimSpace(v.SKU),
			Price:     v.Price,
			Stock:     v.Stock,
		}
		if v.ID != nil && existing[*v.ID] {
			variant.ID = *v.ID
		}
		p.Variants[i] = variant
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.ProductRequest) (*domain.ProductDTO, error) {
	product := &domain.Product{IsActive: true}
	applyProductRequest(product, req)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}
	product.Categories = categories

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.activities.Record(ctx, domain.ActivityTargetProduct, product.ID, "Product created",
		fmt.Sprintf("Product '%s' was created", product.Name))

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.ProductRequest) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}

	applyProductRequest(product, req)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}
	product.Categories = categories

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

// Delete removes a product and its files. Quote and order lines keep their description.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrProductNotFound, "delete product")
	}
	if s.files != nil {
		if err := s.files.DeleteForEntity(ctx, domain.FileEntityProduct, id); err != nil {
			s.logger.Warn("failed to delete product files", zap.String("productID", id.String()), zap.Error(err))
		}
	}
	s.logger.Info("product deleted", zap.String("productID", id.String()))
	return nil
}

func (s *ProductService) List(ctx context.Context, opts repository.ListOptions, filters repository.ProductFilters) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	products, total, err := s.productRepo.List(ctx, opts, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}

// LowStock returns active products whose total stock is at or below threshold
func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.TotalStock() <= threshold {
			low = append(low, p)
		}
	}
	return low, nil
}
