package mapper

import (
	"time"

	"github.com/google/uuid"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ToCategoryDTO converts Category to CategoryDTO
func ToCategoryDTO(c *domain.Category) domain.CategoryDTO {
	return domain.CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(p *domain.Product) domain.ProductDTO {
	dto := domain.ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Categories:  make([]domain.CategoryDTO, len(p.Categories)),
		HasVariants: p.HasVariants,
		Price:       p.Price,
		Stock:       p.Stock,
		TotalStock:  p.TotalStock(),
		Tags:        p.Tags,
		HasImage:    p.ImagePath != "",
		IsActive:    p.IsActive,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	for i := range p.Categories {
		dto.Categories[i] = ToCategoryDTO(&p.Categories[i])
	}
	if p.Price != nil {
		dto.PriceFormatted = domain.FormatARS(*p.Price)
	}
	for _, v := range p.Variants {
		dto.Variants = append(dto.Variants, domain.ProductVariantDTO{
			ID:             v.ID,
			Size:           v.Size,
			SKU:            v.SKU,
			Price:          v.Price,
			PriceFormatted: domain.FormatARS(v.Price),
			Stock:          v.Stock,
		})
	}
	return dto
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(c *domain.Client) domain.ClientDTO {
	dto := domain.ClientDTO{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Status:    c.Status,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		TaxID:     c.TaxID,
		Notes:     c.Notes,
		Contacts:  make([]domain.ClientContactDTO, len(c.Contacts)),
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
	for i, ct := range c.Contacts {
		dto.Contacts[i] = domain.ClientContactDTO{
			ID:       ct.ID,
			Name:     ct.Name,
			Email:    ct.Email,
			Phone:    ct.Phone,
			Position: ct.Position,
		}
	}
	return dto
}

// ToProviderDTO converts Provider to ProviderDTO
func ToProviderDTO(p *domain.Provider) domain.ProviderDTO {
	return domain.ProviderDTO{
		ID:          p.ID,
		Name:        p.Name,
		ContactName: p.ContactName,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		TaxID:       p.TaxID,
		Category:    p.Category,
		Status:      p.Status,
		Notes:       p.Notes,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

// ToPurchaseDTO converts Purchase to PurchaseDTO
func ToPurchaseDTO(p *domain.Purchase) domain.PurchaseDTO {
	dto := domain.PurchaseDTO{
		ID:             p.ID,
		ProviderID:     p.ProviderID,
		ProviderName:   p.ProviderName,
		InvoiceNumber:  p.InvoiceNumber,
		PurchaseDate:   p.PurchaseDate.Format(dateLayout),
		Status:         p.Status,
		Items:          make([]domain.PurchaseItemDTO, len(p.Items)),
		Total:          p.Total,
		TotalFormatted: domain.FormatARS(p.Total),
		Notes:          p.Notes,
		CreatedAt:      formatTime(p.CreatedAt),
		UpdatedAt:      formatTime(p.UpdatedAt),
	}
	for i, it := range p.Items {
		dto.Items[i] = domain.PurchaseItemDTO{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			Subtotal:    it.Subtotal,
		}
	}
	return dto
}

func toPricingDTO(p domain.Pricing) domain.PricingDTO {
	return domain.PricingDTO{
		Subtotal:          p.Subtotal,
		TaxRate:           p.TaxRate,
		TaxAmount:         p.TaxAmount,
		Discount:          p.Discount,
		Total:             p.Total,
		SubtotalFormatted: domain.FormatARS(p.Subtotal),
		TaxFormatted:      domain.FormatARS(p.TaxAmount),
		TotalFormatted:    domain.FormatARS(p.Total),
	}
}

func toLineItemDTO(id uuid.UUID, li domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:          id,
		ProductID:   li.ProductID,
		VariantID:   li.VariantID,
		Description: li.Description,
		Quantity:    li.Quantity,
		UnitPrice:   li.UnitPrice,
		Discount:    li.Discount,
		Subtotal:    li.Subtotal,
	}
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(q *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:              q.ID,
		Number:          q.Number,
		ClientID:        q.ClientID,
		ClientName:      q.ClientName,
		ClientEmail:     q.ClientEmail,
		ClientPhone:     q.ClientPhone,
		ClientTaxID:     q.ClientTaxID,
		Items:           make([]domain.LineItemDTO, len(q.Items)),
		Pricing:         toPricingDTO(q.Pricing),
		ValidUntil:      formatDatePtr(q.ValidUntil),
		Notes:           q.Notes,
		Comments:        make([]domain.QuoteCommentDTO, len(q.Comments)),
		Status:          q.Status,
		SentAt:          formatTimePtr(q.SentAt),
		ConfirmedAt:     formatTimePtr(q.ConfirmedAt),
		RejectedAt:      formatTimePtr(q.RejectedAt),
		RejectionReason: q.RejectionReason,
		OrderID:         q.OrderID,
		CreatedByName:   q.CreatedByName,
		UpdatedByName:   q.UpdatedByName,
		CreatedAt:       formatTime(q.CreatedAt),
		UpdatedAt:       formatTime(q.UpdatedAt),
	}
	for i, it := range q.Items {
		dto.Items[i] = toLineItemDTO(it.ID, it.LineItem)
	}
	for i := range q.Comments {
		dto.Comments[i] = ToQuoteCommentDTO(&q.Comments[i])
	}
	return dto
}

// ToQuoteCommentDTO converts QuoteComment to QuoteCommentDTO
func ToQuoteCommentDTO(c *domain.QuoteComment) domain.QuoteCommentDTO {
	return domain.QuoteCommentDTO{
		ID:         c.ID,
		Text:       c.Text,
		IsInternal: c.IsInternal,
		AuthorName: c.AuthorName,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(o *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:                    o.ID,
		Number:                o.Number,
		QuoteID:               o.QuoteID,
		ClientID:              o.ClientID,
		ClientName:            o.ClientName,
		ClientEmail:           o.ClientEmail,
		ClientPhone:           o.ClientPhone,
		Items:                 make([]domain.LineItemDTO, len(o.Items)),
		Pricing:               toPricingDTO(o.Pricing),
		Status:                o.Status,
		EstimatedDeliveryDate: formatDatePtr(o.EstimatedDeliveryDate),
		ActualDeliveryDate:    formatDatePtr(o.ActualDeliveryDate),
		PaymentMethod:         o.PaymentMethod,
		DownPayment:           o.DownPayment,
		Balance:               o.Balance,
		BalanceFormatted:      domain.FormatARS(o.Balance),
		InvoiceType:           o.InvoiceType,
		InvoiceNumber:         o.InvoiceNumber,
		InvoiceDate:           formatDatePtr(o.InvoiceDate),
		PaymentHistory:        make([]domain.PaymentDTO, len(o.Payments)),
		IsOverdue:             o.IsOverdue(time.Now()),
		CompletedAt:           formatTimePtr(o.CompletedAt),
		CancelledAt:           formatTimePtr(o.CancelledAt),
		CancellationReason:    o.CancellationReason,
		Notes:                 o.Notes,
		CreatedAt:             formatTime(o.CreatedAt),
		UpdatedAt:             formatTime(o.UpdatedAt),
	}
	for i, it := range o.Items {
		dto.Items[i] = toLineItemDTO(it.ID, it.LineItem)
	}
	for i, p := range o.Payments {
		dto.PaymentHistory[i] = domain.PaymentDTO{
			ID:              p.ID,
			Amount:          p.Amount,
			AmountFormatted: domain.FormatARS(p.Amount),
			Date:            formatTime(p.PaidAt),
			Method:          p.Method,
			Notes:           p.Notes,
			RecordedBy:      p.Recorder,
		}
	}
	return dto
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(a *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          a.ID,
		TargetType:  a.TargetType,
		TargetID:    a.TargetID,
		Title:       a.Title,
		Body:        a.Body,
		CreatorName: a.CreatorName,
		OccurredAt:  formatTime(a.OccurredAt),
	}
}

// ToFileDTO converts File to FileDTO
func ToFileDTO(f *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:           f.ID,
		Filename:     f.Filename,
		ContentType:  f.ContentType,
		Size:         f.Size,
		EntityType:   f.EntityType,
		EntityID:     f.EntityID,
		HasThumbnail: f.ThumbnailPath != "",
		CreatedAt:    formatTime(f.CreatedAt),
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
	}
}
