// Package metrics provides Prometheus metrics for the secunda service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secunda",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "secunda",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// StoreOperationsTotal tracks store operations by entity, operation and outcome
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secunda",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of store operations by outcome",
		},
		[]string{"entity", "operation", "outcome"},
	)

	// ActivityRejectionsTotal tracks activity writes refused by tree invariants
	ActivityRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secunda",
			Subsystem: "activity_tree",
			Name:      "rejections_total",
			Help:      "Activity creates and deletes rejected by the tree invariants",
		},
		[]string{"reason"},
	)

	// ActivityClosureSize tracks how many ids a descendant closure returned
	ActivityClosureSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "secunda",
			Subsystem: "activity_tree",
			Name:      "closure_size",
			Help:      "Number of activity ids in computed descendant closures",
			Buckets:   prometheus.LinearBuckets(1, 5, 10),
		},
	)
)

// RecordStoreOperation counts one store call.
func RecordStoreOperation(entity, operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	StoreOperationsTotal.WithLabelValues(entity, operation, outcome).Inc()
}
