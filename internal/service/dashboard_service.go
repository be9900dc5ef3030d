package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

const recentQuotesLimit = 5

type DashboardService struct {
	quoteRepo         *repository.QuoteRepository
	orderRepo         *repository.OrderRepository
	products          *ProductService
	lowStockThreshold int
	logger            *zap.Logger
}

func NewDashboardService(
	quoteRepo *repository.QuoteRepository,
	orderRepo *repository.OrderRepository,
	products *ProductService,
	lowStockThreshold int,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		quoteRepo:         quoteRepo,
		orderRepo:         orderRepo,
		products:          products,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// GetSummary aggregates the figures shown on the home screen
func (s *DashboardService) GetSummary(ctx context.Context) (*domain.DashboardSummaryDTO, error) {
	quoteCounts, err := s.quoteRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}
	orderCounts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	outstanding, err := s.orderRepo.OutstandingBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding balance: %w", err)
	}
	overdue, err := s.orderRepo.CountOverdue(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue orders: %w", err)
	}
	lowStock, err := s.products.LowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	recent, err := s.quoteRepo.ListRecent(ctx, recentQuotesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent quotes: %w", err)
	}

	// every status is present, zero when there are no rows
	quotesByStatus := map[domain.QuoteStatus]int64{}
	for _, st := range []domain.QuoteStatus{domain.QuoteStatusDraft, domain.QuoteStatusSent, domain.QuoteStatusConfirmed, domain.QuoteStatusRejected} {
		quotesByStatus[st] = quoteCounts[st]
	}
	ordersByStatus := map[domain.OrderStatus]int64{}
	for _, st := range []domain.OrderStatus{domain.OrderStatusInProcess, domain.OrderStatusCompleted, domain.OrderStatusCancelled} {
		ordersByStatus[st] = orderCounts[st]
	}

	recentDTOs := make([]domain.QuoteDTO, len(recent))
	for i := range recent {
		recentDTOs[i] = mapper.ToQuoteDTO(&recent[i])
	}

	return &domain.DashboardSummaryDTO{
		QuotesByStatus:       quotesByStatus,
		OrdersByStatus:       ordersByStatus,
		OutstandingBalance:   outstanding,
		OutstandingFormatted: domain.FormatARS(outstanding),
		OverdueOrders:        overdue,
		LowStockProducts:     len(lowStock),
		RecentQuotes:         recentDTOs,
	}, nil
}
