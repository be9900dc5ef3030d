package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.QuoteTransition(domain.QuoteStatusSent)
	r.QuoteTransition(domain.QuoteStatusSent)
	r.QuoteTransition(domain.QuoteStatusConfirmed)
	r.OrderPayment(decimal.NewFromInt(100))
	r.OrderPayment(decimal.RequireFromString("42.50"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.quoteTransitions.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.quoteTransitions.WithLabelValues("confirmed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.orderPayments))
	assert.InDelta(t, 142.5, testutil.ToFloat64(r.paymentAmount), 0.001)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.QuoteTransition(domain.QuoteStatusSent)
		r.OrderTransition(domain.OrderStatusCompleted)
		r.OrderPayment(decimal.NewFromInt(1))
		r.ObserveRequest(http.MethodGet, "/", 200, time.Millisecond)
		r.JobRun("overdue_orders", "success")
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveRequest(http.MethodGet, "/api/v1/quotes", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `backoffice_http_requests_total{method="GET",route="/api/v1/quotes",status="200"} 1`))
}
