package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// PurchaseService records supply purchases from providers
type PurchaseService struct {
	purchaseRepo *repository.PurchaseRepository
	providerRepo *repository.ProviderRepository
	activities   *ActivityService
	logger       *zap.Logger
}

func NewPurchaseService(
	purchaseRepo *repository.PurchaseRepository,
	providerRepo *repository.ProviderRepository,
	activities *ActivityService,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		providerRepo: providerRepo,
		activities:   activities,
		logger:       logger,
	}
}

func (s *PurchaseService) apply(ctx context.Context, p *domain.Purchase, req *domain.PurchaseRequest) error {
	if len(req.Items) == 0 {
		return domain.NewValidationError("items", "at least one item is required")
	}

	provider, err := s.providerRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		return notFound(err, ErrProviderNotFound, "get provider")
	}

	p.ProviderID = provider.ID
	p.ProviderName = provider.Name
	p.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	p.Notes = strings.TrimSpace(req.Notes)
	if req.PurchaseDate != nil {
		p.PurchaseDate = *req.PurchaseDate
	} else if p.PurchaseDate.IsZero() {
		p.PurchaseDate = time.Now().UTC()
	}
	if req.Status != "" {
		p.Status = req.Status
	}
	if p.Status == "" {
		p.Status = domain.PurchaseStatusPending
	}
	if !p.Status.IsValid() {
		return domain.NewValidationError("status", "must be pending, received or cancelled")
	}

	p.Items = make([]domain.PurchaseItem, len(req.Items))
	for i, it := range req.Items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			return domain.NewValidationError("items.description", "is required")
		}
		p.Items[i] = domain.PurchaseItem{Description: desc, Quantity: it.Quantity, UnitCost: it.UnitCost}
	}
	return p.Recalculate()
}

func (s *PurchaseService) Create(ctx context.Context, req *domain.PurchaseRequest) (*domain.PurchaseDTO, error) {
	purchase := &domain.Purchase{}
	if err := s.apply(ctx, purchase, req); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	s.activities.Record(ctx, domain.ActivityTargetPurchase, purchase.ID, "Purchase recorded",
		fmt.Sprintf("Purchase from '%s' for %s", purchase.ProviderName, domain.FormatARS(purchase.Total)))

	dto := mapper.ToPurchaseDTO(purchase)
	return &dto, nil
}

func (s *PurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDTO, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPurchaseNotFound, "get purchase")
	}
	dto := mapper.ToPurchaseDTO(purchase)
	return &dto, nil
}

func (s *PurchaseService) Update(ctx context.Context, id uuid.UUID, req *domain.PurchaseRequest) (*domain.PurchaseDTO, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPurchaseNotFound, "get purchase")
	}
	if err := s.apply(ctx, purchase, req); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	dto := mapper.ToPurchaseDTO(purchase)
	return &dto, nil
}

func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.purchaseRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrPurchaseNotFound, "delete purchase")
	}
	s.logger.Info("purchase deleted", zap.String("purchaseID", id.String()))
	return nil
}

func (s *PurchaseService) List(ctx context.Context, opts repository.ListOptions, filters repository.PurchaseFilters) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	purchases, total, err := s.purchaseRepo.List(ctx, opts, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	dtos := make([]domain.PurchaseDTO, len(purchases))
	for i := range purchases {
		dtos[i] = mapper.ToPurchaseDTO(&purchases[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}
