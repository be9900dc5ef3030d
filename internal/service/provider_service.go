package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

type ProviderService struct {
	providerRepo *repository.ProviderRepository
	activities   *ActivityService
	logger       *zap.Logger
}

func NewProviderService(providerRepo *repository.ProviderRepository, activities *ActivityService, logger *zap.Logger) *ProviderService {
	return &ProviderService{providerRepo: providerRepo, activities: activities, logger: logger}
}

func applyProviderRequest(p *domain.Provider, req *domain.ProviderRequest) error {
	p.Name = strings.TrimSpace(req.Name)
	p.ContactName = strings.TrimSpace(req.ContactName)
	p.Email = strings.TrimSpace(req.Email)
	p.Phone = strings.TrimSpace(req.Phone)
	p.Address = strings.TrimSpace(req.Address)
	p.TaxID = strings.TrimSpace(req.TaxID)
	p.Category = strings.TrimSpace(req.Category)
	p.Notes = strings.TrimSpace(req.Notes)
	if req.Status != "" {
		p.Status = req.Status
	}
	if p.Status == "" {
		p.Status = domain.RecordStatusActive
	}

	if p.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if !p.Status.IsValid() {
		return domain.NewValidationError("status", "must be active or inactive")
	}
	return nil
}

func (s *ProviderService) Create(ctx context.Context, req *domain.ProviderRequest) (*domain.ProviderDTO, error) {
	provider := &domain.Provider{}
	if err := applyProviderRequest(provider, req); err != nil {
		return nil, err
	}

	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	s.activities.Record(ctx, domain.ActivityTargetProvider, provider.ID, "Provider created",
		fmt.Sprintf("Provider '%s' was created", provider.Name))

	dto := mapper.ToProviderDTO(provider)
	return &dto, nil
}

func (s *ProviderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderDTO, error) {
	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProviderNotFound, "get provider")
	}
	dto := mapper.ToProviderDTO(provider)
	return &dto, nil
}

func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, req *domain.ProviderRequest) (*domain.ProviderDTO, error) {
	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProviderNotFound, "get provider")
	}
	if err := applyProviderRequest(provider, req); err != nil {
		return nil, err
	}

	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}

	dto := mapper.ToProviderDTO(provider)
	return &dto, nil
}

// Delete removes a provider. Purchases keep the provider name they were recorded with.
func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.providerRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrProviderNotFound, "delete provider")
	}
	s.logger.Info("provider deleted", zap.String("providerID", id.String()))
	return nil
}

func (s *ProviderService) List(ctx context.Context, opts repository.ListOptions, filters repository.ProviderFilters) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	providers, total, err := s.providerRepo.List(ctx, opts, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}

	dtos := make([]domain.ProviderDTO, len(providers))
	for i := range providers {
		dtos[i] = mapper.ToProviderDTO(&providers[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}
