package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
	"github.com/bandera-print/backoffice-api/internal/testutil"
)

func flagItem(qty int, price string) domain.QuoteItemRequest {
	p := testutil.Dec(price)
	return domain.QuoteItemRequest{Description: "Bandera argentina 1x1.5m", Quantity: qty, UnitPrice: &p}
}

func createSentQuote(t *testing.T, s *testServices) *domain.QuoteDTO {
	t.Helper()
	ctx := testutil.UserContext()
	client := testutil.CreateClient(t, s.db, "Escuela 12", "escuela@example.com")

	quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
		ClientID: client.ID,
		Items:    []domain.QuoteItemRequest{flagItem(2, "100")},
	})
	require.NoError(t, err)
	sent, err := s.quotes.Send(ctx, quote.ID)
	require.NoError(t, err)
	return sent
}

func TestQuoteService_Create(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	client := testutil.CreateClient(t, s.db, "Club Social", "club@example.com")

	t.Run("prices items with default tax", func(t *testing.T) {
		quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
			ClientID: client.ID,
			Items:    []domain.QuoteItemRequest{flagItem(2, "100")},
		})
		require.NoError(t, err)

		assert.Equal(t, fmt.Sprintf("PRE-%d-001", time.Now().Year()), quote.Number)
		assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
		assert.Equal(t, "Club Social", quote.ClientName)
		assert.True(t, testutil.Dec("200").Equal(quote.Pricing.Subtotal))
		assert.True(t, testutil.Dec("42").Equal(quote.Pricing.TaxAmount))
		assert.True(t, testutil.Dec("242").Equal(quote.Pricing.Total))
		assert.NotNil(t, quote.ValidUntil)
		assert.Equal(t, "Test User", quote.CreatedByName)
	})

	t.Run("numbers increase", func(t *testing.T) {
		quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{ClientID: client.ID})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PRE-%d-002", time.Now().Year()), quote.Number)
	})

	t.Run("catalogue price used when unit price is missing", func(t *testing.T) {
		category := testutil.CreateCategory(t, s.db, "Banderas")
		product := testutil.CreateProduct(t, s.db, "Bandera de ceremonia", "350.50", 10, category)

		quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
			ClientID: client.ID,
			Items:    []domain.QuoteItemRequest{{ProductID: &product.ID, Quantity: 1}},
			TaxRate:  decPtr("0"),
		})
		require.NoError(t, err)
		require.Len(t, quote.Items, 1)
		assert.Equal(t, "Bandera de ceremonia", quote.Items[0].Description)
		assert.True(t, testutil.Dec("350.50").Equal(quote.Pricing.Total))
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{ClientID: uuid.New()})
		assert.ErrorIs(t, err, service.ErrClientNotFound)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("line discount larger than amount", func(t *testing.T) {
		item := flagItem(1, "10")
		item.Discount = testutil.Dec("11")
		_, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{ClientID: client.ID, Items: []domain.QuoteItemRequest{item}})
		assert.ErrorIs(t, err, domain.ErrInvalidDiscount)
	})

	t.Run("line without product needs a price", func(t *testing.T) {
		_, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
			ClientID: client.ID,
			Items:    []domain.QuoteItemRequest{{Description: "Otro", Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func decPtr(s string) *decimal.Decimal {
	d := testutil.Dec(s)
	return &d
}

func TestQuoteService_Update(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	client := testutil.CreateClient(t, s.db, "Municipalidad", "")

	quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
		ClientID: client.ID,
		Items:    []domain.QuoteItemRequest{flagItem(2, "100")},
	})
	require.NoError(t, err)

	t.Run("draft items replaced and repriced", func(t *testing.T) {
		updated, err := s.quotes.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Items:    []domain.QuoteItemRequest{flagItem(1, "50"), flagItem(3, "10")},
			Discount: decPtr("5"),
		})
		require.NoError(t, err)
		require.Len(t, updated.Items, 2)
		assert.True(t, testutil.Dec("80").Equal(updated.Pricing.Subtotal))
		assert.True(t, testutil.Dec("91.80").Equal(updated.Pricing.Total))

		stored, err := s.quotes.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)
		assert.True(t, testutil.Dec("91.80").Equal(stored.Pricing.Total))
	})

	t.Run("items and discount change together", func(t *testing.T) {
		single, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
			ClientID: client.ID,
			Items:    []domain.QuoteItemRequest{flagItem(1, "100")},
		})
		require.NoError(t, err)

		// 500 only fits against the new items: 1000 + 210 - 500
		updated, err := s.quotes.Update(ctx, single.ID, &domain.UpdateQuoteRequest{
			Items:    []domain.QuoteItemRequest{flagItem(10, "100")},
			Discount: decPtr("500"),
		})
		require.NoError(t, err)
		assert.True(t, testutil.Dec("1000").Equal(updated.Pricing.Subtotal))
		assert.True(t, testutil.Dec("500").Equal(updated.Pricing.Discount))
		assert.True(t, testutil.Dec("710").Equal(updated.Pricing.Total), "got %s", updated.Pricing.Total)

		stored, err := s.quotes.GetByID(ctx, single.ID)
		require.NoError(t, err)
		assert.True(t, testutil.Dec("710").Equal(stored.Pricing.Total))
	})

	t.Run("unpriceable edit keeps the previous state", func(t *testing.T) {
		_, err := s.quotes.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Items:    []domain.QuoteItemRequest{flagItem(1, "10")},
			Discount: decPtr("1000"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

		stored, err := s.quotes.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)
		assert.True(t, testutil.Dec("91.80").Equal(stored.Pricing.Total))
	})

	t.Run("sent quote is locked", func(t *testing.T) {
		_, err := s.quotes.Send(ctx, quote.ID)
		require.NoError(t, err)

		_, err = s.quotes.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{Items: []domain.QuoteItemRequest{flagItem(9, "9")}})
		assert.ErrorIs(t, err, domain.ErrQuoteLocked)

		stored, err := s.quotes.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)
	})
}

func TestQuoteService_UpdateLockedAfterDecision(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()

	confirmed := createSentQuote(t, s)
	_, err := s.quotes.Confirm(ctx, confirmed.ID)
	require.NoError(t, err)

	rejected := createSentQuote(t, s)
	_, err = s.quotes.Reject(ctx, rejected.ID, &domain.RejectQuoteRequest{Reason: "too expensive"})
	require.NoError(t, err)

	for name, id := range map[string]uuid.UUID{"confirmed": confirmed.ID, "rejected": rejected.ID} {
		t.Run(name, func(t *testing.T) {
			_, err := s.quotes.Update(ctx, id, &domain.UpdateQuoteRequest{Items: []domain.QuoteItemRequest{flagItem(9, "9")}})
			assert.ErrorIs(t, err, domain.ErrQuoteLocked)

			_, err = s.quotes.Update(ctx, id, &domain.UpdateQuoteRequest{Discount: decPtr("1")})
			assert.ErrorIs(t, err, domain.ErrQuoteLocked)

			stored, err := s.quotes.GetByID(ctx, id)
			require.NoError(t, err)
			require.Len(t, stored.Items, 1)
			assert.Equal(t, 2, stored.Items[0].Quantity)
		})
	}
}

func TestQuoteService_Send(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	client := testutil.CreateClient(t, s.db, "Club", "club@example.com")

	t.Run("empty quote", func(t *testing.T) {
		quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{ClientID: client.ID})
		require.NoError(t, err)
		_, err = s.quotes.Send(ctx, quote.ID)
		assert.ErrorIs(t, err, domain.ErrEmptyQuote)
	})

	t.Run("mail failure does not undo the transition", func(t *testing.T) {
		s.mailer.err = errors.New("smtp down")
		defer func() { s.mailer.err = nil }()

		quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
			ClientID: client.ID,
			Items:    []domain.QuoteItemRequest{flagItem(1, "10")},
		})
		require.NoError(t, err)

		sent, err := s.quotes.Send(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusSent, sent.Status)
		assert.Contains(t, s.mailer.sent, quote.Number)
	})

	t.Run("sending twice", func(t *testing.T) {
		sent := createSentQuote(t, s)
		_, err := s.quotes.Send(ctx, sent.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestQuoteService_Confirm(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()

	t.Run("creates the order", func(t *testing.T) {
		sent := createSentQuote(t, s)

		res, err := s.quotes.Confirm(ctx, sent.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.QuoteStatusConfirmed, res.Quote.Status)
		require.NotNil(t, res.Quote.OrderID)
		assert.Equal(t, res.Order.ID, *res.Quote.OrderID)
		assert.Equal(t, fmt.Sprintf("ORD-%d-001", time.Now().Year()), res.Order.Number)
		assert.Equal(t, domain.OrderStatusInProcess, res.Order.Status)
		assert.True(t, testutil.Dec("242").Equal(res.Order.Balance))
		assert.Len(t, res.Order.Items, 1)

		order, err := s.orders.GetByID(ctx, res.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, sent.ID, order.QuoteID)

		_, err = s.quotes.Confirm(ctx, sent.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.EqualValues(t, 1, countRows(t, s.db, &domain.Order{}))
	})

	t.Run("draft cannot be confirmed", func(t *testing.T) {
		client := testutil.CreateClient(t, s.db, "Draft client", "")
		quote, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{
			ClientID: client.ID,
			Items:    []domain.QuoteItemRequest{flagItem(1, "1")},
		})
		require.NoError(t, err)

		_, err = s.quotes.Confirm(ctx, quote.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("failed order insert rolls everything back", func(t *testing.T) {
		sent := createSentQuote(t, s)
		// an order already bound to the quote makes the insert violate the unique index
		blocker := &domain.Order{Number: "ORD-MANUAL-1", QuoteID: sent.ID, Status: domain.OrderStatusCancelled}
		blocker.ClientID = sent.ClientID
		blocker.ClientName = sent.ClientName
		require.NoError(t, s.db.Create(blocker).Error)

		before, err := s.numbers.Current(ctx, domain.SequenceOrder, time.Now().Year())
		require.NoError(t, err)

		_, err = s.quotes.Confirm(ctx, sent.ID)
		require.Error(t, err)

		after, err := s.numbers.Current(ctx, domain.SequenceOrder, time.Now().Year())
		require.NoError(t, err)
		assert.Equal(t, before, after, "order number must not be consumed")

		stored, err := s.quotes.GetByID(ctx, sent.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusSent, stored.Status)
		assert.Nil(t, stored.OrderID)
	})
}

func TestQuoteService_RejectCommentDuplicate(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	sent := createSentQuote(t, s)

	comment, err := s.quotes.AddComment(ctx, sent.ID, &domain.AddQuoteCommentRequest{Text: " call back monday ", IsInternal: true})
	require.NoError(t, err)
	assert.Equal(t, "call back monday", comment.Text)
	assert.Equal(t, "Test User", comment.AuthorName)

	_, err = s.quotes.AddComment(ctx, sent.ID, &domain.AddQuoteCommentRequest{Text: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	rejected, err := s.quotes.Reject(ctx, sent.ID, &domain.RejectQuoteRequest{Reason: "price"})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusRejected, rejected.Status)
	assert.Equal(t, "price", rejected.RejectionReason)
	assert.Len(t, rejected.Comments, 1)

	copied, err := s.quotes.Duplicate(ctx, sent.ID)
	require.NoError(t, err)
	assert.NotEqual(t, sent.ID, copied.ID)
	assert.NotEqual(t, sent.Number, copied.Number)
	assert.Equal(t, domain.QuoteStatusDraft, copied.Status)
	assert.True(t, sent.Pricing.Total.Equal(copied.Pricing.Total))
	assert.Empty(t, copied.Comments)

	activities, err := s.quotes.Activities(ctx, sent.ID)
	require.NoError(t, err)
	titles := make([]string, len(activities))
	for i, a := range activities {
		titles[i] = a.Title
	}
	assert.Contains(t, titles, "Quote created")
	assert.Contains(t, titles, "Quote sent")
	assert.Contains(t, titles, "Quote rejected")
}

func TestQuoteService_List(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	sent := createSentQuote(t, s)
	other := testutil.CreateClient(t, s.db, "Otro", "")
	_, err := s.quotes.Create(ctx, &domain.CreateQuoteRequest{ClientID: other.ID})
	require.NoError(t, err)

	res, err := s.quotes.List(ctx, repository.ListOptions{Status: string(domain.QuoteStatusSent)}, repository.QuoteFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	res, err = s.quotes.List(ctx, repository.ListOptions{}, repository.QuoteFilters{ClientID: &sent.ClientID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	_, err = s.quotes.List(ctx, repository.ListOptions{Status: "archived"}, repository.QuoteFilters{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
