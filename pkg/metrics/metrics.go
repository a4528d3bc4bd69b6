// Package metrics bundles Prometheus collectors for the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry         *prometheus.Registry
	ComparisonsTotal *prometheus.CounterVec
	ProviderDuration prometheus.Histogram
	ProviderErrors   *prometheus.CounterVec
	SessionsActive   prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	comparisons := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickprice_comparisons_total",
			Help: "Total comparison queries handled, by outcome.",
		},
		[]string{"outcome"},
	)
	providerDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quickprice_provider_request_duration_seconds",
			Help:    "Latency of provider generateContent calls.",
			Buckets: prometheus.DefBuckets,
		},
	)
	providerErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickprice_provider_errors_total",
			Help: "Total provider call failures by taxonomy kind.",
		},
		[]string{"kind"},
	)
	sessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quickprice_sessions_active",
			Help: "Number of sessions currently holding a result slot.",
		},
	)

	registry.MustRegister(comparisons, providerDuration, providerErrors, sessionsActive)

	return &Metrics{
		Registry:         registry,
		ComparisonsTotal: comparisons,
		ProviderDuration: providerDuration,
		ProviderErrors:   providerErrors,
		SessionsActive:   sessionsActive,
	}
}

// IncComparison increments the comparisons counter for an outcome.
func (m *Metrics) IncComparison(outcome string) {
	if m == nil {
		return
	}
	m.ComparisonsTotal.WithLabelValues(outcome).Inc()
}

// ObserveProviderDuration records one provider call's latency.
func (m *Metrics) ObserveProviderDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderDuration.Observe(d.Seconds())
}

// IncProviderError increments the provider error counter for a kind.
func (m *Metrics) IncProviderError(kind string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(kind).Inc()
}

// SetSessions records the current session slot count.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
}
