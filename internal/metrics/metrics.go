// Package metrics exposes Prometheus instrumentation for the arena.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	statementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_statements_total",
			Help: "Total number of transcript statements appended",
		},
		[]string{"type"},
	)

	generationRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_generation_retries_total",
			Help: "Total number of retried text generation attempts",
		},
	)

	generationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_generation_fallbacks_total",
			Help: "Total number of generation calls resolved by fallback text",
		},
	)

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arena_phase_duration_seconds",
			Help:    "Duration of debate phase steps in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	registerOnce sync.Once
)

// Register registers all arena collectors with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			statementsTotal,
			generationRetries,
			generationFallbacks,
			phaseDuration,
		)
	})
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// StatementAppended counts one appended statement of the given type.
func StatementAppended(typ string) {
	statementsTotal.WithLabelValues(typ).Inc()
}

// GenerationRetried counts one retried generation attempt.
func GenerationRetried() {
	generationRetries.Inc()
}

// GenerationFellBack counts one generation call that exhausted retries.
func GenerationFellBack() {
	generationFallbacks.Inc()
}

// ObservePhase records the duration of one phase step.
func ObservePhase(phase string, d time.Duration) {
	phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}
