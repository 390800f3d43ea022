// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotradar",
			Name:      "runs_total",
			Help:      "Total number of aggregation runs",
		},
		[]string{"status"}, // "ok" / "degraded" / "error"
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hotradar",
			Name:      "run_duration_seconds",
			Help:      "Aggregation run duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	FetchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotradar",
			Name:      "fetch_items_total",
			Help:      "Raw items fetched per platform",
		},
		[]string{"platform"},
	)

	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotradar",
			Name:      "fetch_errors_total",
			Help:      "Fetch failures per platform",
		},
		[]string{"platform"},
	)

	RankedClusters = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hotradar",
			Name:      "ranked_clusters",
			Help:      "Cluster count of the most recent run",
		},
	)

	NotifyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotradar",
			Name:      "notify_errors_total",
			Help:      "Notification delivery failures per channel",
		},
		[]string{"channel"},
	)
)

var registered bool

// Register registers all instruments. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(RunsTotal)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(FetchItemsTotal)
	prometheus.MustRegister(FetchErrorsTotal)
	prometheus.MustRegister(RankedClusters)
	prometheus.MustRegister(NotifyErrorsTotal)
	registered = true
}
