package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse computes the page count for a result page
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) *PaginatedResponse {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResponse{Data: data, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}

// Response DTOs

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type ProductVariantDTO struct {
	ID             uuid.UUID       `json:"id"`
	Size           string          `json:"size"`
	SKU            string          `json:"sku,omitempty"`
	Price          decimal.Decimal `json:"price"`
	PriceFormatted string          `json:"priceFormatted"`
	Stock          int             `json:"stock"`
}

type ProductDTO struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Categories     []CategoryDTO       `json:"categories"`
	HasVariants    bool                `json:"hasVariants"`
	Price          *decimal.Decimal    `json:"price,omitempty"`
	PriceFormatted string              `json:"priceFormatted,omitempty"`
	Stock          *int                `json:"stock,omitempty"`
	Variants       []ProductVariantDTO `json:"variants,omitempty"`
	TotalStock     int                 `json:"totalStock"`
	Tags           []string            `json:"tags,omitempty"`
	HasImage       bool                `json:"hasImage"`
	IsActive       bool                `json:"isActive"`
	CreatedAt      string              `json:"createdAt"`
	UpdatedAt      string              `json:"updatedAt"`
}

type ClientContactDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Position string    `json:"position,omitempty"`
}

type ClientDTO struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Type      ClientType         `json:"type"`
	Status    RecordStatus       `json:"status"`
	Email     string             `json:"email,omitempty"`
	Phone     string             `json:"phone,omitempty"`
	Address   string             `json:"address,omitempty"`
	City      string             `json:"city,omitempty"`
	TaxID     string             `json:"taxId,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	Contacts  []ClientContactDTO `json:"contacts"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
}

type ProviderDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	ContactName string       `json:"contactName,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     string       `json:"address,omitempty"`
	TaxID       string       `json:"taxId,omitempty"`
	Category    string       `json:"category,omitempty"`
	Status      RecordStatus `json:"status"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type PurchaseItemDTO struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PurchaseDTO struct {
	ID             uuid.UUID         `json:"id"`
	ProviderID     uuid.UUID         `json:"providerId"`
	ProviderName   string            `json:"providerName"`
	InvoiceNumber  string            `json:"invoiceNumber,omitempty"`
	PurchaseDate   string            `json:"purchaseDate"`
	Status         PurchaseStatus    `json:"status"`
	Items          []PurchaseItemDTO `json:"items"`
	Total          decimal.Decimal   `json:"total"`
	TotalFormatted string            `json:"totalFormatted"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
}

// LineItemDTO is a quote or order line
type LineItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"productId,omitempty"`
	VariantID   *uuid.UUID      `json:"variantId,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PricingDTO carries amounts together with their display form
type PricingDTO struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	SubtotalFormatted string          `json:"subtotalFormatted"`
	TaxFormatted      string          `json:"taxAmountFormatted"`
	TotalFormatted    string          `json:"totalFormatted"`
}

type QuoteCommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	IsInternal bool      `json:"isInternal"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

type QuoteDTO struct {
	ID              uuid.UUID         `json:"id"`
	Number          string            `json:"number"`
	ClientID        uuid.UUID         `json:"clientId"`
	ClientName      string            `json:"clientName"`
	ClientEmail     string            `json:"clientEmail,omitempty"`
	ClientPhone     string            `json:"clientPhone,omitempty"`
	ClientTaxID     string            `json:"clientTaxId,omitempty"`
	Items           []LineItemDTO     `json:"items"`
	Pricing         PricingDTO        `json:"pricing"`
	ValidUntil      *string           `json:"validUntil,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Comments        []QuoteCommentDTO `json:"comments"`
	Status          QuoteStatus       `json:"status"`
	SentAt          *string           `json:"sentAt,omitempty"`
	ConfirmedAt     *string           `json:"confirmedAt,omitempty"`
	RejectedAt      *string           `json:"rejectedAt,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	OrderID         *uuid.UUID        `json:"orderId,omitempty"`
	CreatedByName   string            `json:"createdByName,omitempty"`
	UpdatedByName   string            `json:"updatedByName,omitempty"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

type PaymentDTO struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	AmountFormatted string          `json:"amountFormatted"`
	Date            string          `json:"date"`
	Method          PaymentMethod   `json:"method"`
	Notes           string          `json:"notes,omitempty"`
	RecordedBy      string          `json:"recordedBy,omitempty"`
}

type OrderDTO struct {
	ID                    uuid.UUID       `json:"id"`
	Number                string          `json:"number"`
	QuoteID               uuid.UUID       `json:"quoteId"`
	ClientID              uuid.UUID       `json:"clientId"`
	ClientName            string          `json:"clientName"`
	ClientEmail           string          `json:"clientEmail,omitempty"`
	ClientPhone           string          `json:"clientPhone,omitempty"`
	Items                 []LineItemDTO   `json:"items"`
	Pricing               PricingDTO      `json:"pricing"`
	Status                OrderStatus     `json:"status"`
	EstimatedDeliveryDate *string         `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *string         `json:"actualDeliveryDate,omitempty"`
	PaymentMethod         PaymentMethod   `json:"paymentMethod,omitempty"`
	DownPayment           decimal.Decimal `json:"downPayment"`
	Balance               decimal.Decimal `json:"balance"`
	BalanceFormatted      string          `json:"balanceFormatted"`
	InvoiceType           InvoiceType     `json:"invoiceType,omitempty"`
	InvoiceNumber         string          `json:"invoiceNumber,omitempty"`
	InvoiceDate           *string         `json:"invoiceDate,omitempty"`
	PaymentHistory        []PaymentDTO    `json:"paymentHistory"`
	IsOverdue             bool            `json:"isOverdue"`
	CompletedAt           *string         `json:"completedAt,omitempty"`
	CancelledAt           *string         `json:"cancelledAt,omitempty"`
	CancellationReason    string          `json:"cancellationReason,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	CreatedAt             string          `json:"createdAt"`
	UpdatedAt             string          `json:"updatedAt"`
}

// ConfirmQuoteResponse returns the confirmed quote and the order created from it
type ConfirmQuoteResponse struct {
	Quote QuoteDTO `json:"quote"`
	Order OrderDTO `json:"order"`
}

type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	TargetType  ActivityTargetType `json:"targetType"`
	TargetID    uuid.UUID          `json:"targetId"`
	Title       string             `json:"title"`
	Body        string             `json:"body,omitempty"`
	CreatorName string             `json:"creatorName,omitempty"`
	OccurredAt  string             `json:"occurredAt"`
}

type FileDTO struct {
	ID           uuid.UUID      `json:"id"`
	Filename     string         `json:"filename"`
	ContentType  string         `json:"contentType"`
	Size         int64          `json:"size"`
	EntityType   FileEntityType `json:"entityType"`
	EntityID     uuid.UUID      `json:"entityId"`
	HasThumbnail bool           `json:"hasThumbnail"`
	CreatedAt    string         `json:"createdAt"`
}

type UserDTO struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
	LastLoginAt *string  `json:"lastLoginAt,omitempty"`
}

// DashboardSummaryDTO aggregates the home screen figures
type DashboardSummaryDTO struct {
	QuotesByStatus       map[QuoteStatus]int64 `json:"quotesByStatus"`
	OrdersByStatus       map[OrderStatus]int64 `json:"ordersByStatus"`
	OutstandingBalance   decimal.Decimal       `json:"outstandingBalance"`
	OutstandingFormatted string                `json:"outstandingBalanceFormatted"`
	OverdueOrders        int64                 `json:"overdueOrders"`
	LowStockProducts     int                   `json:"lowStockProducts"`
	RecentQuotes         []QuoteDTO            `json:"recentQuotes"`
}

// Request DTOs

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type ProductVariantRequest struct {
	ID    *uuid.UUID      `json:"id,omitempty"`
	Size  string          `json:"size" validate:"required,max=100"`
	SKU   string          `json:"sku,omitempty" validate:"max=100"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

type ProductRequest struct {
	Name        string                  `json:"name" validate:"max=200"`
	Description string                  `json:"description,omitempty"`
	CategoryIDs []uuid.UUID             `json:"categoryIds" validate:"required,min=1"`
	HasVariants bool                    `json:"hasVariants"`
	Price       *decimal.Decimal        `json:"price,omitempty"`
	Stock       *int                    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Variants    []ProductVariantRequest `json:"variants,omitempty" validate:"dive"`
	Tags        []string                `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	IsActive    *bool                   `json:"isActive,omitempty"`
}

type ClientContactRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Position string `json:"position,omitempty" validate:"max=100"`
}

type ClientRequest struct {
	Name     string                 `json:"name" validate:"max=200"`
	Type     ClientType             `json:"type,omitempty" validate:"omitempty,oneof=individual company"`
	Status   RecordStatus           `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Email    string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string                 `json:"phone,omitempty" validate:"max=50"`
	Address  string                 `json:"address,omitempty" validate:"max=500"`
	City     string                 `json:"city,omitempty" validate:"max=100"`
	TaxID    string                 `json:"taxId,omitempty" validate:"max=20"`
	Notes    string                 `json:"notes,omitempty"`
	Contacts []ClientContactRequest `json:"contacts,omitempty" validate:"dive"`
}

type ProviderRequest struct {
	Name        string       `json:"name" validate:"max=200"`
	ContactName string       `json:"contactName,omitempty" validate:"max=200"`
	Email       string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string       `json:"phone,omitempty" validate:"max=50"`
	Address     string       `json:"address,omitempty" validate:"max=500"`
	TaxID       string       `json:"taxId,omitempty" validate:"max=20"`
	Category    string       `json:"category,omitempty" validate:"max=100"`
	Status      RecordStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Notes       string       `json:"notes,omitempty"`
}

type PurchaseItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}

type PurchaseRequest struct {
	ProviderID    uuid.UUID             `json:"providerId" validate:"required"`
	InvoiceNumber string                `json:"invoiceNumber,omitempty" validate:"max=50"`
	PurchaseDate  *time.Time            `json:"purchaseDate,omitempty"`
	Status        PurchaseStatus        `json:"status,omitempty" validate:"omitempty,oneof=pending received cancelled"`
	Items         []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes         string                `json:"notes,omitempty"`
}

// QuoteItemRequest is a quote line. When productId is set, a missing unitPrice
// or description is taken from the catalogue.
type QuoteItemRequest struct {
	ProductID   *uuid.UUID       `json:"productId,omitempty"`
	VariantID   *uuid.UUID       `json:"variantId,omitempty"`
	Description string           `json:"description,omitempty" validate:"max=500"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	Discount    decimal.Decimal  `json:"discount"`
}

type CreateQuoteRequest struct {
	ClientID   uuid.UUID          `json:"clientId" validate:"required"`
	Items      []QuoteItemRequest `json:"items" validate:"dive"`
	TaxRate    *decimal.Decimal   `json:"taxRate,omitempty"`
	Discount   decimal.Decimal    `json:"discount"`
	ValidUntil *time.Time         `json:"validUntil,omitempty"`
	Notes      string             `json:"notes,omitempty"`
}

// UpdateQuoteRequest changes a draft quote. Nil fields are left unchanged.
type UpdateQuoteRequest struct {
	ClientID   *uuid.UUID         `json:"clientId,omitempty"`
	Items      []QuoteItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	TaxRate    *decimal.Decimal   `json:"taxRate,omitempty"`
	Discount   *decimal.Decimal   `json:"discount,omitempty"`
	ValidUntil *time.Time         `json:"validUntil,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
}

type RejectQuoteRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}

type AddQuoteCommentRequest struct {
	Text       string `json:"text" validate:"required,max=4000"`
	IsInternal bool   `json:"isInternal"`
}

// UpdateOrderRequest changes delivery, payment and invoicing details of an open order
type UpdateOrderRequest struct {
	EstimatedDeliveryDate *time.Time       `json:"estimatedDeliveryDate,omitempty"`
	PaymentMethod         *PaymentMethod   `json:"paymentMethod,omitempty" validate:"omitempty,oneof=cash transfer card check other"`
	DownPayment           *decimal.Decimal `json:"downPayment,omitempty"`
	InvoiceType           *InvoiceType     `json:"invoiceType,omitempty" validate:"omitempty,oneof=A B C"`
	InvoiceNumber         *string          `json:"invoiceNumber,omitempty" validate:"omitempty,max=50"`
	InvoiceDate           *time.Time       `json:"invoiceDate,omitempty"`
	Notes                 *string          `json:"notes,omitempty"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method" validate:"required,oneof=cash transfer card check other"`
	Date   *time.Time      `json:"date,omitempty"`
	Notes  string          `json:"notes,omitempty" validate:"max=2000"`
}

type CompleteOrderRequest struct {
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}
