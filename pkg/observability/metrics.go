// Package observability holds the Prometheus instruments for the
// editor: graph compilations and store mutations. Collectors register
// against an injected registry so tests and embedders stay isolated
// from the global default.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the editor's collectors.
type Metrics struct {
	compiles        prometheus.Counter
	compileDuration prometheus.Histogram
	mutations       *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. Pass
// prometheus.DefaultRegisterer for the usual exposition.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "graph_compiles_total",
			Help:      "Number of flow graph compilations.",
		}),
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "graph_compile_duration_seconds",
			Help:      "Time spent compiling the flow graph.",
			Buckets:   prometheus.DefBuckets,
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "question_mutations_total",
			Help:      "Editor mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.compiles, m.compileDuration, m.mutations)
	return m
}

// ObserveCompile records one compilation.
func (m *Metrics) ObserveCompile(d time.Duration) {
	if m == nil {
		return
	}
	m.compiles.Inc()
	m.compileDuration.Observe(d.Seconds())
}

// RecordMutation records the outcome of one editor mutation.
func (m *Metrics) RecordMutation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}
