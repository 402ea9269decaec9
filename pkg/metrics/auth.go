package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels recorded for every auth operation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// AuthMetrics counts auth operation outcomes.
type AuthMetrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// NewAuthMetrics registers the auth collectors on a dedicated registry.
func NewAuthMetrics() *AuthMetrics {
	registry := prometheus.NewRegistry()
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rencard",
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Auth operations by operation name and outcome.",
	}, []string{"operation", "outcome"})
	registry.MustRegister(operations)
	return &AuthMetrics{registry: registry, operations: operations}
}

// Observe increments the counter for operation/outcome.
func (m *AuthMetrics) Observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (m *AuthMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
