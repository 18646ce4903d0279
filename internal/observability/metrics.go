// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumen_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CompensationFailures counts compensating blob deletes that themselves
	// failed, leaving an orphaned file behind. These are logged but never
	// surfaced to the caller; the counter is how operators notice them.
	CompensationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_compensation_failures_total",
		Help: "Total number of failed compensating blob deletes by workflow",
	}, []string{"workflow"})

	// WorkflowDuration records end-to-end content workflow latency.
	WorkflowDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumen_workflow_duration_seconds",
		Help:    "Content workflow duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow", "outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// ObserveWorkflow records a completed workflow run with its outcome label.
func ObserveWorkflow(workflow, outcome string, start time.Time) {
	WorkflowDuration.WithLabelValues(workflow, outcome).Observe(time.Since(start).Seconds())
}
