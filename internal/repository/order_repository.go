package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// OrderFilters narrows order listings
type OrderFilters struct {
	ClientID    *uuid.UUID
	OverdueOnly bool
}

var orderSortableFields = map[string]string{
	"createdAt":             "created_at",
	"updatedAt":             "updated_at",
	"number":                "number",
	"clientName":            "client_name",
	"total":                 "total",
	"balance":               "balance",
	"status":                "status",
	"estimatedDeliveryDate": "estimated_delivery_date",
}

// OrderRepository handles orders, their items and payments
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order with its items
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Modify locks the order row, reloads its items and payments and lets fn change
// the order. The header and any payments fn appended are saved in the same
// transaction, so the balance always derives from the stored payments.
func (r *OrderRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*domain.Order) error) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Order("position ASC").Find(&order.Items).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Order("paid_at ASC").Find(&order.Payments).Error; err != nil {
			return err
		}

		stored := len(order.Payments)
		if err := fn(&order); err != nil {
			return err
		}
		for i := stored; i < len(order.Payments); i++ {
			if err := tx.Create(&order.Payments[i]).Error; err != nil {
				return err
			}
		}
		order.UpdatedAt = time.Now().UTC()
		return tx.Omit(clause.Associations).Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a page of orders matching number or client name
func (r *OrderRepository) List(ctx context.Context, opts ListOptions, filters OrderFilters) ([]domain.Order, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if opts.Search != "" {
		p := searchPattern(opts.Search)
		query = query.Where("LOWER(number) LIKE ? OR LOWER(client_name) LIKE ? OR LOWER(invoice_number) LIKE ?", p, p, p)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.OverdueOnly {
		query = overdueScope(query, time.Now())
	}
	var orders []domain.Order
	total, err := paginate(query, opts, orderSortableFields, "updated_at", &orders, "Items", "Payments")
	return orders, total, err
}

func overdueScope(query *gorm.DB, now time.Time) *gorm.DB {
	return query.Where("status = ? AND estimated_delivery_date IS NOT NULL AND estimated_delivery_date < ?",
		domain.OrderStatusInProcess, domain.StartOfDay(now))
}

// CountByStatus returns the number of orders per status
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status domain.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// OutstandingBalance sums the balance of orders still in process
func (r *OrderRepository) OutstandingBalance(ctx context.Context) (decimal.Decimal, error) {
	var balances []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("status = ?", domain.OrderStatusInProcess).
		Pluck("balance", &balances).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, balances...), nil
}

// CountOverdue counts open orders past their estimated delivery date
func (r *OrderRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := overdueScope(r.db.WithContext(ctx).Model(&domain.Order{}), now).Count(&count).Error
	return count, err
}

// ListOverdueUnnotified returns overdue orders not yet flagged since the given time
func (r *OrderRepository) ListOverdueUnnotified(ctx context.Context, now, since time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := overdueScope(r.db.WithContext(ctx), now).
		Where("overdue_notified_at IS NULL OR overdue_notified_at < ?", since).
		Order("estimated_delivery_date ASC").
		Find(&orders).Error
	return orders, err
}

// MarkOverdueNotified stamps when the overdue warning was raised
func (r *OrderRepository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).
		UpdateColumn("overdue_notified_at", at).Error
}
