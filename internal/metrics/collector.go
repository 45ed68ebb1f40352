// Package metrics provides internal Prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector records sandbox execution metrics. It implements
// sandbox.Observer and additionally exposes HTTP request metrics for the
// transport layer.
type Collector struct {
	executionsTotal     *prometheus.CounterVec
	executionDuration   *prometheus.HistogramVec
	delegationsTotal    *prometheus.CounterVec
	validationsRejected prometheus.Counter
	outputTruncations   prometheus.Counter
	activeExecutions    prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a collector registered with the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Total number of script executions by terminal status",
		},
		[]string{"status"},
	)
	c.executionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Script execution duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 3, 12),
		},
		[]string{"status"},
	)
	c.delegationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegations_total",
			Help:      "Total number of recursive delegation attempts by outcome",
		},
		[]string{"outcome"},
	)
	c.validationsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of scripts rejected by the validator",
		},
	)
	c.outputTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_truncations_total",
			Help:      "Total number of executions whose output was truncated",
		},
	)
	c.activeExecutions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_executions",
			Help:      "Number of executions currently running",
		},
	)

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	return c
}

// ExecutionDone records one completed execution.
func (c *Collector) ExecutionDone(status string, elapsed time.Duration) {
	c.executionsTotal.WithLabelValues(status).Inc()
	c.executionDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// DelegationDone records one delegation attempt.
func (c *Collector) DelegationDone(outcome string) {
	c.delegationsTotal.WithLabelValues(outcome).Inc()
}

// ValidationRejected records one validator rejection.
func (c *Collector) ValidationRejected(violations int) {
	c.validationsRejected.Inc()
}

// OutputTruncated records one truncated output.
func (c *Collector) OutputTruncated() {
	c.outputTruncations.Inc()
}

// ExecutionStarted marks an execution as in flight.
func (c *Collector) ExecutionStarted() {
	c.activeExecutions.Inc()
}

// ExecutionFinished marks an execution as no longer in flight.
func (c *Collector) ExecutionFinished() {
	c.activeExecutions.Dec()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status string, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
