package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flockbook"

// Metrics groups the prometheus collectors used by the store, the effect
// pipeline and the persistence bridge. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	intents         *prometheus.CounterVec
	collectionSize  *prometheus.GaugeVec
	effects         *prometheus.CounterVec
	effectDuration  *prometheus.HistogramVec
	persistFailures *prometheus.CounterVec
}

// New builds a Metrics instance registered on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_dispatched_total",
			Help:      "Intents reduced by the record store, by type.",
		}, []string{"type"}),
		collectionSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_size",
			Help:      "Number of records held per slice.",
		}, []string{"slice"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_completed_total",
			Help:      "Simulated round-trips completed, by family and outcome.",
		}, []string{"family", "outcome"}),
		effectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "effect_duration_seconds",
			Help:      "Time from request acceptance to completion dispatch.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 1.5, 2, 5},
		}, []string{"family"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Storage read or write failures absorbed by the persistence bridge.",
		}, []string{"key", "op"}),
	}

	m.registry.MustRegister(
		m.intents,
		m.collectionSize,
		m.effects,
		m.effectDuration,
		m.persistFailures,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IntentDispatched counts one reduced intent.
func (m *Metrics) IntentDispatched(intentType string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intentType).Inc()
}

// CollectionSize records the current size of a slice.
func (m *Metrics) CollectionSize(slice string, n int) {
	if m == nil {
		return
	}
	m.collectionSize.WithLabelValues(slice).Set(float64(n))
}

// EffectCompleted records the outcome and duration of one simulated round-trip.
func (m *Metrics) EffectCompleted(family, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues(family, outcome).Inc()
	m.effectDuration.WithLabelValues(family).Observe(elapsed.Seconds())
}

// PersistenceFailed counts a storage failure for key during op (read, write, remove, encode, decode).
func (m *Metrics) PersistenceFailed(key, op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(key, op).Inc()
}
