// Package metrics holds Prometheus instruments that are used across the
// framework.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Chain step outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

var (
	ChainStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_steps_total",
			Help: "Filter and callback chain steps by chain name and outcome.",
		}, []string{"chain", "outcome"})

	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_total",
			Help: "Conditional dispatch resolutions by dispatcher and outcome (branch, fallback, nomatch, error).",
		}, []string{"dispatcher", "outcome"})

	ViewRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_requests_total",
			Help: "Resource view invocations by resource, view and HTTP status.",
		}, []string{"resource", "view", "status"})

	ViewDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "view_duration_seconds",
			Help:    "Resource view latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource", "view"})

	SchemaCacheMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schema_cache_miss_total",
			Help: "Entity schemas built by reflection (cache misses).",
		})
)

func init() {
	prometheus.MustRegister(
		ChainStepsTotal,
		DispatchTotal,
		ViewRequestsTotal,
		ViewDuration,
		SchemaCacheMissTotal,
	)
}
