package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the position of an order in its lifecycle
type OrderStatus string

const (
	OrderStatusInProcess OrderStatus = "in_process"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the OrderStatus is a valid enum value
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusInProcess: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// CanTransitionOrder reports whether from -> to is an allowed edge
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how a client paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid checks if the PaymentMethod is a valid enum value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// InvoiceType is the AFIP invoice letter
type InvoiceType string

const (
	InvoiceTypeA InvoiceType = "A"
	InvoiceTypeB InvoiceType = "B"
	InvoiceTypeC InvoiceType = "C"
)

// IsValid checks if the InvoiceType is a valid enum value
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeA || t == InvoiceTypeB || t == InvoiceTypeC
}

// OrderItem is a line of an order, copied from the confirmed quote
type OrderItem struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	LineItem
}

// OrderPayment is one entry of the payment history
type OrderPayment struct {
	BaseModel
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"orderId"`
	Amount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaidAt   time.Time       `gorm:"not null;column:paid_at" json:"date"`
	Method   PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Notes    string          `gorm:"type:text" json:"notes,omitempty"`
	Recorder string          `gorm:"type:varchar(200);column:recorder" json:"recordedBy,omitempty"`
}

// Order is production work created from a confirmed quote
type Order struct {
	BaseModel
	Number  string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	QuoteID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:quote_id" json:"quoteId"`
	ClientSnapshot
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Pricing
	Status                OrderStatus     `gorm:"type:varchar(20);not null;default:'in_process';index" json:"status"`
	EstimatedDeliveryDate *time.Time      `gorm:"type:date;column:estimated_delivery_date" json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time      `gorm:"type:date;column:actual_delivery_date" json:"actualDeliveryDate,omitempty"`
	PaymentMethod         PaymentMethod   `gorm:"type:varchar(20);column:payment_method" json:"paymentMethod,omitempty"`
	DownPayment           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:down_payment" json:"downPayment"`
	Balance               decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	InvoiceType           InvoiceType     `gorm:"type:varchar(1);column:invoice_type" json:"invoiceType,omitempty"`
	InvoiceNumber         string          `gorm:"type:varchar(50);column:invoice_number" json:"invoiceNumber,omitempty"`
	InvoiceDate           *time.Time      `gorm:"type:date;column:invoice_date" json:"invoiceDate,omitempty"`
	Payments              []OrderPayment  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"paymentHistory"`
	CompletedAt           *time.Time      `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CancelledAt           *time.Time      `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CancellationReason    string          `gorm:"type:text;column:cancellation_reason" json:"cancellationReason,omitempty"`
	Notes                 string          `gorm:"type:text" json:"notes,omitempty"`
	OverdueNotifiedAt     *time.Time      `gorm:"column:overdue_notified_at" json:"-"`
}

// NewOrderFromQuote copies client, items and pricing of a confirmed quote
func NewOrderFromQuote(q *Quote, number string) (*Order, error) {
	if q.Status != QuoteStatusConfirmed {
		return nil, &TransitionError{Entity: "quote", From: string(q.Status), To: string(QuoteStatusConfirmed)}
	}
	o := &Order{
		Number:         number,
		QuoteID:        q.ID,
		ClientSnapshot: q.ClientSnapshot,
		Pricing:        q.Pricing,
		Status:         OrderStatusInProcess,
		DownPayment:    decimal.Zero,
		Notes:          q.Notes,
	}
	o.Items = make([]OrderItem, len(q.Items))
	for i, it := range q.Items {
		o.Items[i] = OrderItem{LineItem: it.LineItem}
	}
	o.RecalculateBalance()
	return o, nil
}

// IsOpen reports whether the order still accepts changes
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusInProcess
}

// PaidAmount is the sum of the payment history, down payment excluded
func (o *Order) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// RecalculateBalance sets balance = total - downPayment - sum(payments)
func (o *Order) RecalculateBalance() {
	o.Balance = o.Total.Sub(o.DownPayment).Sub(o.PaidAmount())
}

// RecordPayment appends a payment and recomputes the balance.
// Reaching a zero balance does not complete the order.
func (o *Order) RecordPayment(p OrderPayment) (*OrderPayment, error) {
	if !o.IsOpen() {
		return nil, ErrOrderClosed
	}
	if !p.Amount.IsPositive() {
		return nil, NewValidationError("amount", "must be greater than zero")
	}
	if !p.Method.IsValid() {
		return nil, NewValidationError("method", "must be a known payment method")
	}
	if p.Amount.GreaterThan(o.Balance) {
		return nil, ErrPaymentExceedsBalance
	}
	p.OrderID = o.ID
	p.Notes = strings.TrimSpace(p.Notes)
	o.Payments = append(o.Payments, p)
	o.RecalculateBalance()
	return &o.Payments[len(o.Payments)-1], nil
}

// SetDownPayment changes the advance paid when the order was placed
func (o *Order) SetDownPayment(amount decimal.Decimal) error {
	if !o.IsOpen() {
		return ErrOrderClosed
	}
	if amount.IsNegative() {
		return NewValidationError("downPayment", "must not be negative")
	}
	if amount.GreaterThan(o.Total.Sub(o.PaidAmount())) {
		return ErrPaymentExceedsBalance
	}
	o.DownPayment = amount
	o.RecalculateBalance()
	return nil
}

func (o *Order) transition(to OrderStatus) error {
	if !CanTransitionOrder(o.Status, to) {
		return &TransitionError{Entity: "order", From: string(o.Status), To: string(to)}
	}
	o.Status = to
	return nil
}

// Complete marks the order delivered. deliveredAt defaults to now.
func (o *Order) Complete(now time.Time, deliveredAt *time.Time) error {
	if err := o.transition(OrderStatusCompleted); err != nil {
		return err
	}
	o.CompletedAt = &now
	if deliveredAt == nil {
		deliveredAt = &now
	}
	o.ActualDeliveryDate = deliveredAt
	return nil
}

// Cancel abandons an order in process
func (o *Order) Cancel(now time.Time, reason string) error {
	if err := o.transition(OrderStatusCancelled); err != nil {
		return err
	}
	o.CancelledAt = &now
	o.CancellationReason = strings.TrimSpace(reason)
	return nil
}

// IsOverdue reports whether an open order missed its estimated delivery date
func (o *Order) IsOverdue(now time.Time) bool {
	return o.IsOpen() && o.EstimatedDeliveryDate != nil &&
		StartOfDay(*o.EstimatedDeliveryDate).Before(StartOfDay(now))
}
