package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search, result cache and dedup Prometheus metrics.
var (
	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipdex",
			Name:      "result_cache_total",
			Help:      "Ranked result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "shared"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snipdex",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"variant", "status"},
	)

	RerankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipdex",
			Name:      "rerank_total",
			Help:      "Rerank attempts by outcome",
		},
		[]string{"outcome"}, // "applied" / "fallback"
	)

	DedupDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipdex",
			Name:      "dedup_decisions_total",
			Help:      "Dedup decisions by verdict and final state",
		},
		[]string{"verdict", "state"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search, cache and dedup metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(RerankTotal)
	prometheus.MustRegister(DedupDecisionsTotal)
	searchMetricsRegistered = true
}
