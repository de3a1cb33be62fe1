package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// BackendMetrics records calls issued against the commerce REST API.
type BackendMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewBackendMetrics registers the backend client metrics on the provided registerer.
func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Backend API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of backend API calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(requests, duration)
	return &BackendMetrics{requests: requests, duration: duration}
}

// Observe records one finished backend call.
func (m *BackendMetrics) Observe(endpoint, outcome string, took time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.requests.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// PaymentMetrics counts terminal results of the mock payment gateway.
type PaymentMetrics struct {
	outcomes *prometheus.CounterVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mockpay_outcomes_total",
		Help:      "Simulated payment results by status.",
	}, []string{"status"})
	reg.MustRegister(outcomes)
	return &PaymentMetrics{outcomes: outcomes}
}

func (m *PaymentMetrics) IncOutcome(status string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(status)).Inc()
}

// RegisterGauge exposes a sampled value, e.g. the number of in-flight cart mutations.
func RegisterGauge(reg prometheus.Registerer, name, help string, sample func() float64) {
	if reg == nil || sample == nil {
		return
	}
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, sample))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
