package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	activities   *ActivityService
	logger       *zap.Logger
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, activities *ActivityService, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, activities: activities, logger: logger}
}

func normalizeCategory(c *domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if c.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.CategoryDTO, error) {
	category := &domain.Category{Name: req.Name, Description: req.Description}
	if err := normalizeCategory(category); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.activities.Record(ctx, domain.ActivityTargetCategory, category.ID, "Category created",
		fmt.Sprintf("Category '%s' was created", category.Name))

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CategoryDTO, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}
	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCategoryRequest) (*domain.CategoryDTO, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := normalizeCategory(category); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

// Delete removes a category and unlinks it from its products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryInUse) {
			return ErrCategoryInUse
		}
		return notFound(err, ErrCategoryNotFound, "delete category")
	}
	s.logger.Info("category deleted", zap.String("categoryID", id.String()))
	return nil
}

func (s *CategoryService) List(ctx context.Context, opts repository.ListOptions) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	categories, total, err := s.categoryRepo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	dtos := make([]domain.CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = mapper.ToCategoryDTO(&categories[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}
