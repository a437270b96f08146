package metrics

import "github.com/prometheus/client_golang/prometheus"

// Clustering Prometheus metrics.
var (
	AssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topix",
			Name:      "assignments_total",
			Help:      "Incremental assignments by outcome",
		},
		[]string{"outcome"}, // "joined" / "created"
	)

	ReclusterDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "topix",
			Name:      "recluster_duration_seconds",
			Help:      "Batch recluster duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	ClusterMergesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "topix",
			Name:      "cluster_merges_total",
			Help:      "Clusters merged away by the consolidation sweep",
		},
	)
)

var clusteringMetricsRegistered bool

// RegisterClusteringMetrics registers Prometheus clustering metrics. Must be called once from main.
func RegisterClusteringMetrics() {
	if clusteringMetricsRegistered {
		return
	}
	prometheus.MustRegister(AssignmentsTotal)
	prometheus.MustRegister(ReclusterDuration)
	prometheus.MustRegister(ClusterMergesTotal)
	clusteringMetricsRegistered = true
}
