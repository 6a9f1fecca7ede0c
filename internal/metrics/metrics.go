// Package metrics exposes Prometheus metrics for the staffing engine:
// conflict pressure on the roster and the rate and outcome of mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application's own registry; the default global one stays
// untouched.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// ConflictClusters is the number of conflict clusters in the most recently
// computed day view.
var ConflictClusters = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "roster",
	Name:      "conflict_clusters",
	Help:      "Conflict clusters in the last computed day view",
})

// ConflictedEvents is the number of events inside those clusters.
var ConflictedEvents = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "roster",
	Name:      "conflicted_events",
	Help:      "Events belonging to a conflict cluster in the last computed day view",
})

// ClusterDurationSeconds tracks how long the O(n²) graph build plus
// traversal takes per day view.
var ClusterDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "roster",
	Name:      "cluster_duration_seconds",
	Help:      "Time taken to build and traverse the conflict graph for one day",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
})

// MutationsTotal counts committed roster mutations by operation.
var MutationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "mutations_total",
	Help:      "Committed roster mutations by operation",
}, []string{"operation"})

// RejectionsTotal counts per-candidate rejections by reason.
var RejectionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "rejections_total",
	Help:      "Candidate rejections by reason (over_capacity, already_assigned)",
}, []string{"reason"})

// PendingDecisions is the number of move decisions awaiting confirmation.
var PendingDecisions = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "roster",
	Name:      "pending_decisions",
	Help:      "Move decisions currently awaiting operator confirmation",
})

// StaleSnapshotsTotal counts mutations rejected because the caller's
// snapshot was out of date.
var StaleSnapshotsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "stale_snapshots_total",
	Help:      "Mutations rejected due to a stale event version",
})
