package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDegraded  = "degraded"
	OutcomeRejected  = "rejected"
	OutcomeExhausted = "exhausted"
	OutcomeCanceled  = "canceled"
)

// Metrics holds the gateway collectors on a dedicated registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ProviderAttempts *prometheus.CounterVec
	GatewayRequests  *prometheus.CounterVec
	GatewayDuration  *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors plus the Go and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ProviderAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synapse_provider_attempts_total",
				Help: "Provider invocations by capability, provider and outcome",
			},
			[]string{"capability", "provider", "outcome"},
		),
		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synapse_gateway_requests_total",
				Help: "Gateway requests by capability and terminal state",
			},
			[]string{"capability", "outcome"},
		),
		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "synapse_gateway_request_duration_seconds",
				Help:    "Time spent serving a gateway request in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
			},
			[]string{"capability"},
		),
	}
}

// RecordAttempt counts one provider invocation
func (m *Metrics) RecordAttempt(capability, provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(capability, provider, outcome).Inc()
}

// RecordRequest counts a finished gateway request and observes its latency
func (m *Metrics) RecordRequest(capability, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(capability, outcome).Inc()
	m.GatewayDuration.WithLabelValues(capability).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
