package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseModel with common fields. IDs are assigned by the application so the
// same models work against PostgreSQL and SQLite.
// StartOfDay truncates t to midnight UTC. Due and validity dates are calendar
// days, so they lapse only once the whole day has passed.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a new UUID when none was set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// RecordStatus is the active flag shared by clients and providers
type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "active"
	RecordStatusInactive RecordStatus = "inactive"
)

// IsValid checks if the RecordStatus is a valid enum value
func (s RecordStatus) IsValid() bool {
	return s == RecordStatusActive || s == RecordStatusInactive
}

// Category groups products (banners, flags, vinyl, ...)
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// Product is a catalogue item. A product carries either a scalar price and
// stock or a list of size variants, never both.
type Product struct {
	BaseModel
	Name          string           `gorm:"type:varchar(200);not null;index" json:"name"`
	Description   string           `gorm:"type:text" json:"description,omitempty"`
	Categories    []Category       `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	HasVariants   bool             `gorm:"not null;default:false;column:has_variants" json:"hasVariants"`
	Price         *decimal.Decimal `gorm:"type:decimal(15,2)" json:"price,omitempty"`
	Stock         *int             `gorm:"type:int" json:"stock,omitempty"`
	Variants      []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Tags          pq.StringArray   `gorm:"type:text" json:"tags,omitempty"`
	ImagePath     string           `gorm:"type:varchar(500);column:image_path" json:"imagePath,omitempty"`
	ThumbnailPath string           `gorm:"type:varchar(500);column:thumbnail_path" json:"thumbnailPath,omitempty"`
	IsActive      bool             `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// ProductVariant is a sellable size of a product with its own price and stock
type ProductVariant struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Size      string          `gorm:"type:varchar(100);not null" json:"size"`
	SKU       string          `gorm:"type:varchar(100);column:sku" json:"sku,omitempty"`
	Price     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
}

// Validate enforces the price/stock versus variants invariant
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if p.HasVariants {
		if len(p.Variants) == 0 {
			return NewValidationError("variants", "at least one variant is required")
		}
		if p.Price != nil || p.Stock != nil {
			return NewValidationError("price", "must be empty when the product has variants")
		}
		for _, v := range p.Variants {
			if strings.TrimSpace(v.Size) == "" {
				return NewValidationError("variants.size", "is required")
			}
			if v.Price.IsNegative() {
				return NewValidationError("variants.price", "must not be negative")
			}
			if v.Stock < 0 {
				return NewValidationError("variants.stock", "must not be negative")
			}
		}
		return nil
	}
	if len(p.Variants) > 0 {
		return NewValidationError("variants", "must be empty when the product has no variants")
	}
	if p.Price == nil || p.Stock == nil {
		return NewValidationError("price", "price and stock are required")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if *p.Stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	return nil
}

// TotalStock is the scalar stock or the sum over variants
func (p *Product) TotalStock() int {
	if !p.HasVariants {
		if p.Stock == nil {
			return 0
		}
		return *p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// PriceFor returns the unit price of the product or of one of its variants
func (p *Product) PriceFor(variantID *uuid.UUID) (decimal.Decimal, string, bool) {
	if !p.HasVariants {
		if p.Price == nil || variantID != nil {
			return decimal.Zero, "", false
		}
		return *p.Price, p.Name, true
	}
	if variantID == nil {
		return decimal.Zero, "", false
	}
	for _, v := range p.Variants {
		if v.ID == *variantID {
			return v.Price, p.Name + " " + v.Size, true
		}
	}
	return decimal.Zero, "", false
}

// ClientType separates private customers from companies
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeCompany    ClientType = "company"
)

// IsValid checks if the ClientType is a valid enum value
func (t ClientType) IsValid() bool {
	return t == ClientTypeIndividual || t == ClientTypeCompany
}

// Client is a customer of the shop
type Client struct {
	BaseModel
	Name     string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Type     ClientType      `gorm:"type:varchar(20);not null;default:'individual'" json:"type"`
	Status   RecordStatus    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Email    string          `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone    string          `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address  string          `gorm:"type:varchar(500)" json:"address,omitempty"`
	City     string          `gorm:"type:varchar(100)" json:"city,omitempty"`
	TaxID    string          `gorm:"type:varchar(20);column:tax_id" json:"taxId,omitempty"`
	Notes    string          `gorm:"type:text" json:"notes,omitempty"`
	Contacts []ClientContact `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
}

// ClientContact is a person to talk to at a client
type ClientContact struct {
	BaseModel
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`
	Name     string    `gorm:"type:varchar(200);not null" json:"name"`
	Email    string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone    string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Position string    `gorm:"type:varchar(100)" json:"position,omitempty"`
}

// IsEmpty reports whether every field of the contact is blank
func (c *ClientContact) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == "" && c.Position == ""
}

// Normalize trims all text fields, fills enum defaults and drops blank contacts.
// It returns a ValidationError when the client cannot be persisted.
func (c *Client) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.TaxID = strings.TrimSpace(c.TaxID)
	c.Notes = strings.TrimSpace(c.Notes)

	if c.Name == "" {
		return NewValidationError("name", "is required")
	}
	if c.Type == "" {
		c.Type = ClientTypeIndividual
	}
	if !c.Type.IsValid() {
		return NewValidationError("type", "must be individual or company")
	}
	if c.Status == "" {
		c.Status = RecordStatusActive
	}
	if !c.Status.IsValid() {
		return NewValidationError("status", "must be active or inactive")
	}

	contacts := make([]ClientContact, 0, len(c.Contacts))
	for _, ct := range c.Contacts {
		ct.Name = strings.TrimSpace(ct.Name)
		ct.Email = strings.TrimSpace(ct.Email)
		ct.Phone = strings.TrimSpace(ct.Phone)
		ct.Position = strings.TrimSpace(ct.Position)
		if ct.IsEmpty() {
			continue
		}
		if ct.Name == "" {
			return NewValidationError("contacts.name", "is required")
		}
		contacts = append(contacts, ct)
	}
	c.Contacts = contacts
	return nil
}

// Provider supplies materials to the shop
type Provider struct {
	BaseModel
	Name        string       `gorm:"type:varchar(200);not null;index" json:"name"`
	ContactName string       `gorm:"type:varchar(200);column:contact_name" json:"contactName,omitempty"`
	Email       string       `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone       string       `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address     string       `gorm:"type:varchar(500)" json:"address,omitempty"`
	TaxID       string       `gorm:"type:varchar(20);column:tax_id" json:"taxId,omitempty"`
	Category    string       `gorm:"type:varchar(100);index" json:"category,omitempty"`
	Status      RecordStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Notes       string       `gorm:"type:text" json:"notes,omitempty"`
}

// PurchaseStatus tracks a supply purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid checks if the PurchaseStatus is a valid enum value
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// Purchase records materials bought from a provider
type Purchase struct {
	BaseModel
	ProviderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"providerId"`
	ProviderName  string          `gorm:"type:varchar(200);column:provider_name" json:"providerName"`
	InvoiceNumber string          `gorm:"type:varchar(50);column:invoice_number" json:"invoiceNumber,omitempty"`
	PurchaseDate  time.Time       `gorm:"not null;index;column:purchase_date" json:"purchaseDate"`
	Status        PurchaseStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
	Total         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
}

// PurchaseItem is one line of a purchase
type PurchaseItem struct {
	BaseModel
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchaseId"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(15,2);not null;column:unit_cost" json:"unitCost"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
	Position    int             `gorm:"not null;default:0" json:"position"`
}

// Recalculate refreshes item subtotals and the purchase total. Purchases carry no tax.
func (p *Purchase) Recalculate() error {
	lines := make([]LineItem, len(p.Items))
	for i, it := range p.Items {
		lines[i] = LineItem{Quantity: it.Quantity, UnitPrice: it.UnitCost}
	}
	totals, err := ComputeTotals(lines, decimal.Zero, decimal.Zero)
	if err != nil {
		return err
	}
	for i := range p.Items {
		p.Items[i].Subtotal = lines[i].Subtotal
		p.Items[i].Position = i
	}
	p.Total = totals.Total
	return nil
}

// UserRole grants access levels inside the back office
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleStaff UserRole = "staff"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleStaff
}

// User is a member of staff using the back office. The ID is the token subject.
type User struct {
	ID          string     `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	DisplayName string     `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Role        UserRole   `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

// FileEntityType is the kind of record an uploaded file belongs to
type FileEntityType string

const (
	FileEntityProduct FileEntityType = "product"
	FileEntityQuote   FileEntityType = "quote"
	FileEntityOrder   FileEntityType = "order"
)

// IsValid checks if the FileEntityType is a valid enum value
func (t FileEntityType) IsValid() bool {
	switch t {
	case FileEntityProduct, FileEntityQuote, FileEntityOrder:
		return true
	}
	return false
}

// File is an uploaded artwork or product image
type File struct {
	BaseModel
	Filename      string         `gorm:"type:varchar(255);not null" json:"filename"`
	ContentType   string         `gorm:"type:varchar(100);not null;column:content_type" json:"contentType"`
	Size          int64          `gorm:"not null" json:"size"`
	StoragePath   string         `gorm:"type:varchar(500);not null;uniqueIndex;column:storage_path" json:"-"`
	ThumbnailPath string         `gorm:"type:varchar(500);column:thumbnail_path" json:"-"`
	EntityType    FileEntityType `gorm:"type:varchar(20);not null;index:idx_files_entity;column:entity_type" json:"entityType"`
	EntityID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_files_entity;column:entity_id" json:"entityId"`
}

// ActivityTargetType is the kind of record an activity is about
type ActivityTargetType string

const (
	ActivityTargetQuote    ActivityTargetType = "quote"
	ActivityTargetOrder    ActivityTargetType = "order"
	ActivityTargetClient   ActivityTargetType = "client"
	ActivityTargetProduct  ActivityTargetType = "product"
	ActivityTargetProvider ActivityTargetType = "provider"
	ActivityTargetPurchase ActivityTargetType = "purchase"
	ActivityTargetCategory ActivityTargetType = "category"
)

// IsValid checks if the ActivityTargetType is a valid enum value
func (t ActivityTargetType) IsValid() bool {
	switch t {
	case ActivityTargetQuote, ActivityTargetOrder, ActivityTargetClient, ActivityTargetProduct,
		ActivityTargetProvider, ActivityTargetPurchase, ActivityTargetCategory:
		return true
	}
	return false
}

// Activity is an append-only timeline entry
type Activity struct {
	BaseModel
	TargetType  ActivityTargetType `gorm:"type:varchar(20);not null;index:idx_activities_target;column:target_type" json:"targetType"`
	TargetID    uuid.UUID          `gorm:"type:uuid;not null;index:idx_activities_target;column:target_id" json:"targetId"`
	Title       string             `gorm:"type:varchar(200);not null" json:"title"`
	Body        string             `gorm:"type:varchar(2000)" json:"body,omitempty"`
	CreatorName string             `gorm:"type:varchar(200);column:creator_name" json:"creatorName,omitempty"`
	OccurredAt  time.Time          `gorm:"not null;index;column:occurred_at" json:"occurredAt"`
}

// SequenceKind identifies a numbering series
type SequenceKind string

const (
	SequenceQuote SequenceKind = "PRE"
	SequenceOrder SequenceKind = "ORD"
)

// NumberSequence stores the last issued number per kind and year
type NumberSequence struct {
	Kind         SequenceKind `gorm:"type:varchar(10);primaryKey"`
	Year         int          `gorm:"primaryKey"`
	LastSequence int          `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}
