package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Compiled search queries by path and query shape",
		},
		[]string{"kind", "shape"}, // shape: phrase / term / and / or / not / knn
	)

	SearchMalformedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_malformed_total",
			Help:      "Queries rejected by the compiler",
		},
		[]string{"kind"},
	)

	SearchExecutorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_executor_duration_seconds",
			Help:      "Search backend round-trip in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind", "status"},
	)

	SearchDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_degraded_total",
			Help:      "Searches answered with an empty page instead of an error",
		},
		[]string{"reason"},
	)

	ReportsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_indexed_total",
			Help:      "Indexed reports by description language and vector presence",
		},
		[]string{"language", "vectorized"},
	)
)

func init() {
	prometheus.MustRegister(
		SearchQueriesTotal,
		SearchMalformedTotal,
		SearchExecutorDuration,
		SearchDegradedTotal,
		ReportsIndexedTotal,
	)
}
