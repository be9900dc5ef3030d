package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
)

func TestToProductDTO_Variants(t *testing.T) {
	now := time.Date(2026, 2, 3, 14, 5, 6, 0, time.UTC)
	product := &domain.Product{
		BaseModel:   domain.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:        "Bandera Argentina",
		HasVariants: true,
		Variants: []domain.ProductVariant{
			{Size: "90x150", Price: decimal.RequireFromString("12500"), Stock: 4},
			{Size: "150x250", Price: decimal.RequireFromString("31000.5"), Stock: 1},
		},
		Categories: []domain.Category{{Name: "Banderas"}},
		ImagePath:  "products/x/foto.png",
		IsActive:   true,
	}

	dto := mapper.ToProductDTO(product)

	assert.Equal(t, product.ID, dto.ID)
	assert.Equal(t, 5, dto.TotalStock)
	assert.True(t, dto.HasImage)
	assert.Empty(t, dto.PriceFormatted)
	require.Len(t, dto.Variants, 2)
	assert.Equal(t, "$ 31.000,50", dto.Variants[1].PriceFormatted)
	require.Len(t, dto.Categories, 1)
	assert.Equal(t, "Banderas", dto.Categories[0].Name)
	assert.Equal(t, "2026-02-03T14:05:06Z", dto.CreatedAt)
}

func TestToQuoteDTO(t *testing.T) {
	validUntil := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	quote := &domain.Quote{
		BaseModel:      domain.BaseModel{ID: uuid.New()},
		Number:         "PRE-2026-007",
		ClientSnapshot: domain.ClientSnapshot{ClientID: uuid.New(), ClientName: "Club Atlético"},
		Items: []domain.QuoteItem{
			{LineItem: domain.LineItem{Description: "Banderín", Quantity: 10, UnitPrice: decimal.NewFromInt(1234), Subtotal: decimal.NewFromInt(12340)}},
		},
		Pricing: domain.Pricing{
			Subtotal:  decimal.NewFromInt(12340),
			TaxRate:   decimal.RequireFromString("0.21"),
			TaxAmount: decimal.RequireFromString("2591.4"),
			Total:     decimal.RequireFromString("14931.4"),
		},
		ValidUntil: &validUntil,
		Comments:   []domain.QuoteComment{{Text: "Entrega en sede", AuthorName: "Marta"}},
		Status:     domain.QuoteStatusSent,
	}

	dto := mapper.ToQuoteDTO(quote)

	assert.Equal(t, "PRE-2026-007", dto.Number)
	assert.Equal(t, "Club Atlético", dto.ClientName)
	require.NotNil(t, dto.ValidUntil)
	assert.Equal(t, "2026-04-15", *dto.ValidUntil)
	assert.Nil(t, dto.SentAt)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 10, dto.Items[0].Quantity)
	assert.Equal(t, "$ 14.931,40", dto.Pricing.TotalFormatted)
	assert.Equal(t, "$ 2.591,40", dto.Pricing.TaxFormatted)
	require.Len(t, dto.Comments, 1)
	assert.Equal(t, "Marta", dto.Comments[0].AuthorName)
}

func TestToOrderDTO(t *testing.T) {
	due := time.Now().AddDate(0, 0, -2)
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := &domain.Order{
		BaseModel:             domain.BaseModel{ID: uuid.New()},
		Number:                "ORD-2026-003",
		QuoteID:               uuid.New(),
		Status:                domain.OrderStatusInProcess,
		EstimatedDeliveryDate: &due,
		Pricing:               domain.Pricing{Total: decimal.NewFromInt(242)},
		Balance:               decimal.NewFromInt(142),
		Payments: []domain.OrderPayment{
			{Amount: decimal.NewFromInt(100), PaidAt: paidAt, Method: domain.PaymentMethodCash, Recorder: "Marta"},
		},
	}

	dto := mapper.ToOrderDTO(order)

	assert.Equal(t, "ORD-2026-003", dto.Number)
	assert.Equal(t, order.QuoteID, dto.QuoteID)
	assert.True(t, dto.IsOverdue)
	assert.Equal(t, "$ 142,00", dto.BalanceFormatted)
	require.Len(t, dto.PaymentHistory, 1)
	assert.Equal(t, "2026-03-01T10:00:00Z", dto.PaymentHistory[0].Date)
	assert.Equal(t, domain.PaymentMethodCash, dto.PaymentHistory[0].Method)
	assert.Equal(t, "Marta", dto.PaymentHistory[0].RecordedBy)
	assert.Empty(t, dto.Items)
}
