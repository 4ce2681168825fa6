// Package metrics holds the Prometheus collectors for validation, hints,
// HTTP traffic and the LLM tutor.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/parsons/internal/proof"
)

const namespace = "parsons"

// Metrics owns a dedicated registry so tests and multiple servers in one
// process do not collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	validations  *prometheus.CounterVec
	scores       *prometheus.HistogramVec
	hints        *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	explanations *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "validations_total",
			Help:      "Validated orderings by source and outcome.",
		}, []string{"source", "outcome"}),
		scores: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "score",
			Help:      "Distribution of validation scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"source"}),
		hints: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "hints_total",
			Help:      "Hints issued by type.",
		}, []string{"type"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		explanations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tutor",
			Name:      "explanations_total",
			Help:      "LLM explanation requests by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveValidation records one validation result.
func (m *Metrics) ObserveValidation(source string, res proof.ValidationResult) {
	outcome := "incorrect"
	if res.IsCorrect {
		outcome = "correct"
	}
	m.validations.WithLabelValues(source, outcome).Inc()
	m.scores.WithLabelValues(source).Observe(float64(res.Score))
	for _, h := range res.Hints {
		m.hints.WithLabelValues(string(h.Type)).Inc()
	}
}

// ObserveRequest records one HTTP request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveExplanation records the outcome of a tutor call: "ok",
// "unavailable", "rate_limited" or "error".
func (m *Metrics) ObserveExplanation(outcome string) {
	m.explanations.WithLabelValues(outcome).Inc()
}
