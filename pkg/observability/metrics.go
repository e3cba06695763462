package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/enlyst/pkg/domain"
)

const namespace = "enlyst"

// Metrics collects API, operation and webhook metrics.
// It implements client.Observer.
type Metrics struct {
	registry *prometheus.Registry

	APIRequests      *prometheus.CounterVec
	APIDuration      *prometheus.HistogramVec
	Operations       *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	Webhooks         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of Enlyst API requests",
		}, []string{"operation", "status_code", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of Enlyst API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_operations_total",
			Help:      "Total number of node operations dispatched, per item",
		}, []string{"resource", "operation", "outcome"}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_operation_duration_seconds",
			Help:      "Duration of node operations in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300, 900, 3600},
		}, []string{"resource", "operation"}),
		Webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Total number of webhook deliveries by answered status",
		}, []string{"event", "status_code"}),
	}
	reg.MustRegister(m.APIRequests, m.APIDuration, m.Operations, m.OperationLatency, m.Webhooks)
	return m
}

// Registry returns the Prometheus registry backing the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one API call.
func (m *Metrics) ObserveRequest(_ context.Context, operation string, status int, d time.Duration, err error) {
	m.APIRequests.WithLabelValues(operation, strconv.Itoa(status), outcome(err)).Inc()
	m.APIDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Hooks returns lifecycle hooks feeding the operation and webhook metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOperationDone: func(_ context.Context, e *domain.OperationEvent) {
			m.Operations.WithLabelValues(e.Resource, e.Operation, outcome(e.Err)).Inc()
			m.OperationLatency.WithLabelValues(e.Resource, e.Operation).Observe(e.Duration.Seconds())
		},
		OnWebhook: func(_ context.Context, status int, event string) {
			if event == "" {
				event = "unknown"
			}
			m.Webhooks.WithLabelValues(event, strconv.Itoa(status)).Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
