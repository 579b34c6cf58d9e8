// Package observability provides Prometheus metrics for the scanner.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider call outcomes used as label values.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Scan metrics
	PhrasesCompleted  prometheus.Counter
	CandidatesChecked prometheus.Counter
	AddressesChecked  prometheus.Counter
	UnknownResults    prometheus.Counter
	DerivationErrors  prometheus.Counter
	HitsFound         prometheus.Counter
	CurrentIndex      prometheus.Gauge

	// Provider metrics
	ProviderCalls       *prometheus.CounterVec
	ProviderLatency     *prometheus.HistogramVec
	ProviderErrorStreak *prometheus.GaugeVec
	ProviderResets      prometheus.Counter
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "brainwallet_scanner"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PhrasesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "phrases_completed_total",
			Help:      "Total number of base phrases fully scanned and checkpointed",
		}),
		CandidatesChecked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "candidates_checked_total",
			Help:      "Total number of candidate passphrases checked",
		}),
		AddressesChecked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "addresses_checked_total",
			Help:      "Total number of derived addresses looked up",
		}),
		UnknownResults: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "unknown_results_total",
			Help:      "Lookups where every provider failed",
		}),
		DerivationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "derivation_errors_total",
			Help:      "Candidates skipped because key derivation failed",
		}),
		HitsFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "hits_total",
			Help:      "Addresses found with on-chain history",
		}),
		CurrentIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "current_index",
			Help:      "Checkpointed position in the phrase file",
		}),

		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Provider HTTP calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Provider HTTP call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderErrorStreak: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "consecutive_errors",
			Help:      "Current consecutive error count per provider",
		}, []string{"provider"}),
		ProviderResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "pool_resets_total",
			Help:      "Times all providers were exhausted and their error counts reset",
		}),
	}
}

// Handler returns the HTTP handler serving this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProviderCall records one provider HTTP call.
func (m *Metrics) ObserveProviderCall(provider, outcome string, d time.Duration, streak int) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(provider, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	m.ProviderErrorStreak.WithLabelValues(provider).Set(float64(streak))
}

// ObservePoolReset records an all-providers-exhausted reset.
func (m *Metrics) ObservePoolReset() {
	if m == nil {
		return
	}
	m.ProviderResets.Inc()
}

// ObservePhrase records a completed phrase.
func (m *Metrics) ObservePhrase(index int, candidates, addresses, unknown, derivationErrors int64, hits int) {
	if m == nil {
		return
	}
	m.PhrasesCompleted.Inc()
	m.CandidatesChecked.Add(float64(candidates))
	m.AddressesChecked.Add(float64(addresses))
	m.UnknownResults.Add(float64(unknown))
	m.DerivationErrors.Add(float64(derivationErrors))
	m.HitsFound.Add(float64(hits))
	m.CurrentIndex.Set(float64(index))
}
