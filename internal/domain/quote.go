package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus is the position of a quote in its lifecycle
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusConfirmed QuoteStatus = "confirmed"
	QuoteStatusRejected  QuoteStatus = "rejected"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	_, ok := quoteTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves this status
func (s QuoteStatus) IsTerminal() bool {
	return len(quoteTransitions[s]) == 0
}

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:     {QuoteStatusSent},
	QuoteStatusSent:      {QuoteStatusConfirmed, QuoteStatusRejected},
	QuoteStatusConfirmed: {},
	QuoteStatusRejected:  {},
}

// CanTransitionQuote reports whether from -> to is an allowed edge
func CanTransitionQuote(from, to QuoteStatus) bool {
	for _, next := range quoteTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LineItem is the priced part shared by quote and order items
type LineItem struct {
	ProductID   *uuid.UUID      `gorm:"type:uuid;index;column:product_id" json:"productId,omitempty"`
	VariantID   *uuid.UUID      `gorm:"type:uuid;column:variant_id" json:"variantId,omitempty"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;column:unit_price" json:"unitPrice"`
	Discount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"discount"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
	Position    int             `gorm:"not null;default:0" json:"position"`
}

// QuoteItem is a line of a quote
type QuoteItem struct {
	BaseModel
	QuoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"quoteId"`
	LineItem
}

// QuoteComment is a note on a quote. Internal comments are never shown to the client.
type QuoteComment struct {
	BaseModel
	QuoteID    uuid.UUID `gorm:"type:uuid;not null;index" json:"quoteId"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsInternal bool      `gorm:"not null;default:false;column:is_internal" json:"isInternal"`
	AuthorName string    `gorm:"type:varchar(200);column:author_name" json:"authorName,omitempty"`
}

// ClientSnapshot copies the client details a document was issued to
type ClientSnapshot struct {
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index;column:client_id" json:"clientId"`
	ClientName  string    `gorm:"type:varchar(200);not null;column:client_name" json:"clientName"`
	ClientEmail string    `gorm:"type:varchar(255);column:client_email" json:"clientEmail,omitempty"`
	ClientPhone string    `gorm:"type:varchar(50);column:client_phone" json:"clientPhone,omitempty"`
	ClientTaxID string    `gorm:"type:varchar(20);column:client_tax_id" json:"clientTaxId,omitempty"`
}

// SnapshotOf captures the current details of a client
func SnapshotOf(c *Client) ClientSnapshot {
	return ClientSnapshot{
		ClientID:    c.ID,
		ClientName:  c.Name,
		ClientEmail: c.Email,
		ClientPhone: c.Phone,
		ClientTaxID: c.TaxID,
	}
}

// Pricing holds the computed amounts of a quote or order
type Pricing struct {
	Subtotal  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0;column:tax_rate" json:"taxRate"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount" json:"taxAmount"`
	Discount  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"discount"`
	Total     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;index" json:"total"`
}

func (p *Pricing) apply(t Totals) {
	p.Subtotal = t.Subtotal
	p.TaxAmount = t.TaxAmount
	p.Total = t.Total
}

// Quote is a priced proposal sent to a client
type Quote struct {
	BaseModel
	Number string `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	ClientSnapshot
	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
	Pricing
	ValidUntil      *time.Time     `gorm:"type:date;column:valid_until" json:"validUntil,omitempty"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	Comments        []QuoteComment `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Status          QuoteStatus    `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SentAt          *time.Time     `gorm:"column:sent_at" json:"sentAt,omitempty"`
	ConfirmedAt     *time.Time     `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`
	RejectedAt      *time.Time     `gorm:"column:rejected_at" json:"rejectedAt,omitempty"`
	RejectionReason string         `gorm:"type:text;column:rejection_reason" json:"rejectionReason,omitempty"`
	OrderID         *uuid.UUID     `gorm:"type:uuid;column:order_id" json:"orderId,omitempty"`
	CreatedByID     string         `gorm:"type:varchar(100);column:created_by_id" json:"createdById,omitempty"`
	CreatedByName   string         `gorm:"type:varchar(200);column:created_by_name" json:"createdByName,omitempty"`
	UpdatedByID     string         `gorm:"type:varchar(100);column:updated_by_id" json:"updatedById,omitempty"`
	UpdatedByName   string         `gorm:"type:varchar(200);column:updated_by_name" json:"updatedByName,omitempty"`
}

// NewQuote builds a draft quote for a client and prices the given items
func NewQuote(number string, client *Client, items []LineItem, taxRate, discount decimal.Decimal) (*Quote, error) {
	q := &Quote{
		Number:         number,
		ClientSnapshot: SnapshotOf(client),
		Status:         QuoteStatusDraft,
	}
	q.TaxRate = taxRate
	q.Discount = discount
	if err := q.setItems(items); err != nil {
		return nil, err
	}
	return q, nil
}

// IsEditable reports whether items and pricing may change
func (q *Quote) IsEditable() bool {
	return q.Status == QuoteStatusDraft
}

// LineItems returns the priced part of each item in display order
func (q *Quote) LineItems() []LineItem {
	lines := make([]LineItem, len(q.Items))
	for i, it := range q.Items {
		lines[i] = it.LineItem
	}
	return lines
}

// Recalculate refreshes line subtotals and document totals from the current items
func (q *Quote) Recalculate() error {
	lines := q.LineItems()
	totals, err := ComputeTotals(lines, q.TaxRate, q.Discount)
	if err != nil {
		return err
	}
	for i := range q.Items {
		q.Items[i].Subtotal = lines[i].Subtotal
	}
	q.apply(totals)
	return nil
}

func (q *Quote) buildItems(items []LineItem) ([]QuoteItem, error) {
	next := make([]QuoteItem, len(items))
	for i, it := range items {
		it.Description = strings.TrimSpace(it.Description)
		if it.Description == "" {
			return nil, NewValidationError("items.description", "is required")
		}
		it.Position = i
		next[i] = QuoteItem{QuoteID: q.ID, LineItem: it}
	}
	return next, nil
}

func (q *Quote) setItems(items []LineItem) error {
	return q.reprice(items, q.TaxRate, q.Discount)
}

// reprice installs items, tax rate and discount together and recalculates once.
// Nothing changes when the new combination does not price.
func (q *Quote) reprice(items []LineItem, taxRate, discount decimal.Decimal) error {
	next := q.Items
	if items != nil {
		built, err := q.buildItems(items)
		if err != nil {
			return err
		}
		next = built
	}
	prevItems, prevRate, prevDiscount := q.Items, q.TaxRate, q.Discount
	q.Items, q.TaxRate, q.Discount = next, taxRate, discount
	if err := q.Recalculate(); err != nil {
		q.Items, q.TaxRate, q.Discount = prevItems, prevRate, prevDiscount
		return err
	}
	return nil
}

// ReplaceItems swaps the item list of a draft quote and reprices it
func (q *Quote) ReplaceItems(items []LineItem) error {
	if !q.IsEditable() {
		return ErrQuoteLocked
	}
	return q.setItems(items)
}

// SetPricing changes tax rate and document discount of a draft quote
func (q *Quote) SetPricing(taxRate, discount decimal.Decimal) error {
	if !q.IsEditable() {
		return ErrQuoteLocked
	}
	return q.reprice(nil, taxRate, discount)
}

// Reprice replaces items, tax rate and document discount of a draft quote in one
// step. A nil items slice keeps the current items.
func (q *Quote) Reprice(items []LineItem, taxRate, discount decimal.Decimal) error {
	if !q.IsEditable() {
		return ErrQuoteLocked
	}
	return q.reprice(items, taxRate, discount)
}

// SetClient re-targets a draft quote to another client
func (q *Quote) SetClient(c *Client) error {
	if !q.IsEditable() {
		return ErrQuoteLocked
	}
	q.ClientSnapshot = SnapshotOf(c)
	return nil
}

func (q *Quote) transition(to QuoteStatus) error {
	if !CanTransitionQuote(q.Status, to) {
		return &TransitionError{Entity: "quote", From: string(q.Status), To: string(to)}
	}
	q.Status = to
	return nil
}

// Send moves a draft with at least one item to sent
func (q *Quote) Send(now time.Time) error {
	if q.Status == QuoteStatusDraft && len(q.Items) == 0 {
		return ErrEmptyQuote
	}
	if err := q.transition(QuoteStatusSent); err != nil {
		return err
	}
	q.SentAt = &now
	return nil
}

// Confirm accepts a sent quote. The caller creates the order.
func (q *Quote) Confirm(now time.Time) error {
	if err := q.transition(QuoteStatusConfirmed); err != nil {
		return err
	}
	q.ConfirmedAt = &now
	return nil
}

// Reject closes a sent quote as declined
func (q *Quote) Reject(now time.Time, reason string) error {
	if err := q.transition(QuoteStatusRejected); err != nil {
		return err
	}
	q.RejectedAt = &now
	q.RejectionReason = strings.TrimSpace(reason)
	return nil
}

// IsExpired reports whether a sent quote is past its validity date
func (q *Quote) IsExpired(now time.Time) bool {
	return q.Status == QuoteStatusSent && q.ValidUntil != nil &&
		StartOfDay(*q.ValidUntil).Before(StartOfDay(now))
}

// PublicComments filters out internal comments
func (q *Quote) PublicComments() []QuoteComment {
	public := make([]QuoteComment, 0, len(q.Comments))
	for _, c := range q.Comments {
		if !c.IsInternal {
			public = append(public, c)
		}
	}
	return public
}
