package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/metrics"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// OrderService manages orders after quote confirmation: delivery details,
// payments, completion and cancellation.
type OrderService struct {
	orderRepo  *repository.OrderRepository
	activities *ActivityService
	metrics    *metrics.Recorder
	logger     *zap.Logger
}

// NewOrderService creates an OrderService. recorder may be nil.
func NewOrderService(
	orderRepo *repository.OrderRepository,
	activities *ActivityService,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		activities: activities,
		metrics:    recorder,
		logger:     logger,
	}
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order")
	}
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) List(ctx context.Context, opts repository.ListOptions, filters repository.OrderFilters) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	if opts.Status != "" && !domain.OrderStatus(opts.Status).IsValid() {
		return nil, domain.NewValidationError("status", "unknown order status")
	}
	orders, total, err := s.orderRepo.List(ctx, opts, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}

// UpdateDetails changes delivery, payment and invoicing fields of an open order
func (s *OrderService) UpdateDetails(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderRequest) (*domain.OrderDTO, error) {
	var rejected error
	order, err := s.orderRepo.Modify(ctx, id, func(order *domain.Order) error {
		rejected = applyOrderDetails(order, req)
		return rejected
	})
	if rejected != nil {
		return nil, rejected
	}
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "update order")
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func applyOrderDetails(order *domain.Order, req *domain.UpdateOrderRequest) error {
	if !order.IsOpen() {
		return domain.ErrOrderClosed
	}
	if req.DownPayment != nil {
		if err := order.SetDownPayment(*req.DownPayment); err != nil {
			return err
		}
	}
	if req.EstimatedDeliveryDate != nil {
		order.EstimatedDeliveryDate = req.EstimatedDeliveryDate
		order.OverdueNotifiedAt = nil
	}
	if req.PaymentMethod != nil {
		if !req.PaymentMethod.IsValid() {
			return domain.NewValidationError("paymentMethod", "must be a known payment method")
		}
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.InvoiceType != nil {
		if !req.InvoiceType.IsValid() {
			return domain.NewValidationError("invoiceType", "must be A, B or C")
		}
		order.InvoiceType = *req.InvoiceType
	}
	if req.InvoiceNumber != nil {
		order.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber)
	}
	if req.InvoiceDate != nil {
		order.InvoiceDate = req.InvoiceDate
	}
	if req.Notes != nil {
		order.Notes = strings.TrimSpace(*req.Notes)
	}
	return nil
}

// RecordPayment appends a payment and lowers the balance. The order stays in
// process when the balance reaches zero.
func (s *OrderService) RecordPayment(ctx context.Context, id uuid.UUID, req *domain.RecordPaymentRequest) (*domain.OrderDTO, error) {
	paidAt := time.Now().UTC()
	if req.Date != nil {
		paidAt = *req.Date
	}

	var payment *domain.OrderPayment
	var rejected error
	order, err := s.orderRepo.Modify(ctx, id, func(o *domain.Order) error {
		payment, rejected = o.RecordPayment(domain.OrderPayment{
			Amount:   req.Amount,
			PaidAt:   paidAt,
			Method:   req.Method,
			Notes:    req.Notes,
			Recorder: auth.ActorName(ctx),
		})
		return rejected
	})
	if rejected != nil {
		return nil, rejected
	}
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "record payment")
	}

	s.metrics.OrderPayment(payment.Amount)
	s.logger.Info("payment recorded",
		zap.String("orderID", order.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(domain.MoneyScale)),
		zap.String("balance", order.Balance.StringFixed(domain.MoneyScale)))
	s.activities.Record(ctx, domain.ActivityTargetOrder, order.ID, "Payment recorded",
		fmt.Sprintf("Payment of %s (%s); balance %s",
			domain.FormatARS(payment.Amount), payment.Method, domain.FormatARS(order.Balance)))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Complete marks an order delivered
func (s *OrderService) Complete(ctx context.Context, id uuid.UUID, req *domain.CompleteOrderRequest) (*domain.OrderDTO, error) {
	var rejected error
	order, err := s.orderRepo.Modify(ctx, id, func(o *domain.Order) error {
		rejected = o.Complete(time.Now().UTC(), req.DeliveredAt)
		return rejected
	})
	if rejected != nil {
		return nil, rejected
	}
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "complete order")
	}

	s.metrics.OrderTransition(domain.OrderStatusCompleted)
	if order.Balance.IsPositive() {
		s.logger.Warn("order completed with outstanding balance",
			zap.String("orderID", order.ID.String()),
			zap.String("balance", order.Balance.StringFixed(domain.MoneyScale)))
	}
	s.activities.Record(ctx, domain.ActivityTargetOrder, order.ID, "Order completed",
		fmt.Sprintf("Order %s was delivered", order.Number))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Cancel abandons an order in process
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, req *domain.CancelOrderRequest) (*domain.OrderDTO, error) {
	var rejected error
	order, err := s.orderRepo.Modify(ctx, id, func(o *domain.Order) error {
		rejected = o.Cancel(time.Now().UTC(), req.Reason)
		return rejected
	})
	if rejected != nil {
		return nil, rejected
	}
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "cancel order")
	}

	s.metrics.OrderTransition(domain.OrderStatusCancelled)
	body := fmt.Sprintf("Order %s was cancelled", order.Number)
	if order.CancellationReason != "" {
		body += ": " + order.CancellationReason
	}
	s.activities.Record(ctx, domain.ActivityTargetOrder, order.ID, "Order cancelled", body)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Activities returns the order timeline
func (s *OrderService) Activities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	if _, err := s.getOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.activities.List(ctx, domain.ActivityTargetOrder, id)
}
