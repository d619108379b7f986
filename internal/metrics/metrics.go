// Package metrics exposes Prometheus instrumentation for driver operations
// and the HTTP API.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/leandroluk/querykit/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the querykit collectors.
type Metrics struct {
	// Driver operations
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// HTTP requests
	requests *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg registers with the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querykit_operations_total",
				Help: "Total number of driver operations by outcome",
			},
			[]string{"operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "querykit_operation_duration_seconds",
				Help:    "Duration of driver operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querykit_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// Middleware records the outcome and duration of every operation that
// passes through it.
func (m *Metrics) Middleware() core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, op core.Operation, payload any) error {
			start := time.Now()
			err := next(ctx, op, payload)
			m.operationDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
			status := "ok"
			if err != nil {
				status = "error"
			}
			m.operations.WithLabelValues(string(op), status).Inc()
			return err
		}
	}
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
