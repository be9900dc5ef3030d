package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

func newOpenOrder(t *testing.T) *domain.Order {
	t.Helper()
	q := newDraftQuote(t)
	require.NoError(t, q.Send(time.Now()))
	require.NoError(t, q.Confirm(time.Now()))

	o, err := domain.NewOrderFromQuote(q, "ORD-2026-001")
	require.NoError(t, err)
	return o
}

func TestNewOrderFromQuote(t *testing.T) {
	o := newOpenOrder(t)

	assert.Equal(t, domain.OrderStatusInProcess, o.Status)
	assert.True(t, dec("242").Equal(o.Total))
	assert.True(t, dec("242").Equal(o.Balance))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Bandera 1x1.5m", o.Items[0].Description)

	_, err := domain.NewOrderFromQuote(newDraftQuote(t), "ORD-2026-002")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrder_RecordPayment(t *testing.T) {
	t.Run("balance decreases", func(t *testing.T) {
		o := newOpenOrder(t)
		p, err := o.RecordPayment(domain.OrderPayment{Amount: dec("100"), Method: domain.PaymentMethodCash, PaidAt: time.Now()})
		require.NoError(t, err)
		assert.Equal(t, o.ID, p.OrderID)
		assert.True(t, dec("142").Equal(o.Balance))
		assert.True(t, dec("100").Equal(o.PaidAmount()))
	})

	t.Run("paying in full keeps the order open", func(t *testing.T) {
		o := newOpenOrder(t)
		_, err := o.RecordPayment(domain.OrderPayment{Amount: dec("242"), Method: domain.PaymentMethodTransfer})
		require.NoError(t, err)
		assert.True(t, o.Balance.IsZero())
		assert.Equal(t, domain.OrderStatusInProcess, o.Status)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		o := newOpenOrder(t)
		_, err := o.RecordPayment(domain.OrderPayment{Amount: dec("242.01"), Method: domain.PaymentMethodCash})
		assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)
		assert.Empty(t, o.Payments)
	})

	t.Run("non positive amount", func(t *testing.T) {
		o := newOpenOrder(t)
		_, err := o.RecordPayment(domain.OrderPayment{Amount: dec("0"), Method: domain.PaymentMethodCash})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown method", func(t *testing.T) {
		o := newOpenOrder(t)
		_, err := o.RecordPayment(domain.OrderPayment{Amount: dec("1"), Method: "barter"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("closed order", func(t *testing.T) {
		o := newOpenOrder(t)
		require.NoError(t, o.Cancel(time.Now(), ""))
		_, err := o.RecordPayment(domain.OrderPayment{Amount: dec("1"), Method: domain.PaymentMethodCash})
		assert.ErrorIs(t, err, domain.ErrOrderClosed)
	})
}

func TestOrder_SetDownPayment(t *testing.T) {
	o := newOpenOrder(t)
	_, err := o.RecordPayment(domain.OrderPayment{Amount: dec("100"), Method: domain.PaymentMethodCash})
	require.NoError(t, err)

	require.NoError(t, o.SetDownPayment(dec("42")))
	assert.True(t, dec("100").Equal(o.Balance))

	assert.ErrorIs(t, o.SetDownPayment(dec("143")), domain.ErrPaymentExceedsBalance)
	assert.ErrorIs(t, o.SetDownPayment(dec("-1")), domain.ErrValidation)
}

func TestOrder_CompleteAndCancel(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("complete defaults delivery date to now", func(t *testing.T) {
		o := newOpenOrder(t)
		require.NoError(t, o.Complete(now, nil))
		assert.Equal(t, domain.OrderStatusCompleted, o.Status)
		require.NotNil(t, o.ActualDeliveryDate)
		assert.Equal(t, now, *o.ActualDeliveryDate)

		assert.ErrorIs(t, o.Cancel(now, ""), domain.ErrInvalidTransition)
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		o := newOpenOrder(t)
		require.NoError(t, o.Cancel(now, " client withdrew "))
		assert.Equal(t, "client withdrew", o.CancellationReason)
		assert.ErrorIs(t, o.Complete(now, nil), domain.ErrInvalidTransition)
	})
}

func TestOrder_IsOverdue(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)

	o := newOpenOrder(t)
	assert.False(t, o.IsOverdue(now), "no estimated date")

	o.EstimatedDeliveryDate = &past
	assert.True(t, o.IsOverdue(now))

	require.NoError(t, o.Complete(now, nil))
	assert.False(t, o.IsOverdue(now))
}

func TestOrder_IsOverdueDayBoundary(t *testing.T) {
	o := newOpenOrder(t)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	o.EstimatedDeliveryDate = &due

	assert.False(t, o.IsOverdue(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)), "due today")
	assert.False(t, o.IsOverdue(time.Date(2026, 4, 1, 17, 45, 0, 0, time.UTC)), "due today")
	assert.True(t, o.IsOverdue(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)), "due yesterday")

	late := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	o.EstimatedDeliveryDate = &late
	assert.False(t, o.IsOverdue(time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)), "time of day is ignored")
}
