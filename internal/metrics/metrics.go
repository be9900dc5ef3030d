package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

const namespace = "backoffice"

// Recorder owns the Prometheus collectors of the API.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	quoteTransitions *prometheus.CounterVec
	orderPayments    prometheus.Counter
	paymentAmount    prometheus.Counter
	orderTransitions *prometheus.CounterVec
	jobRuns          *prometheus.CounterVec
}

// New registers all collectors on a fresh registry together with the Go and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quoteTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_transitions_total",
			Help:      "Quote status changes by target status",
		}, []string{"to"}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status changes by target status",
		}, []string{"to"}),
		orderPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_payments_total",
			Help:      "Payments recorded against orders",
		}),
		paymentAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_payment_amount_total",
			Help:      "Sum of recorded payment amounts in ARS",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job executions by result",
		}, []string{"job", "result"}),
	}

	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.quoteTransitions,
		r.orderTransitions,
		r.orderPayments,
		r.paymentAmount,
		r.jobRuns,
	)
	return r
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer gives read access to the collected metrics
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one finished HTTP request. route is the chi route pattern.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// QuoteTransition counts a quote entering status to
func (r *Recorder) QuoteTransition(to domain.QuoteStatus) {
	if r == nil {
		return
	}
	r.quoteTransitions.WithLabelValues(string(to)).Inc()
}

// OrderTransition counts an order entering status to
func (r *Recorder) OrderTransition(to domain.OrderStatus) {
	if r == nil {
		return
	}
	r.orderTransitions.WithLabelValues(string(to)).Inc()
}

// OrderPayment counts a payment and adds its amount
func (r *Recorder) OrderPayment(amount decimal.Decimal) {
	if r == nil {
		return
	}
	r.orderPayments.Inc()
	r.paymentAmount.Add(amount.InexactFloat64())
}

// JobRun counts a job execution; result is "success" or "error"
func (r *Recorder) JobRun(job, result string) {
	if r == nil {
		return
	}
	r.jobRuns.WithLabelValues(job, result).Inc()
}
