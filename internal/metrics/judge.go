package metrics

import "github.com/prometheus/client_golang/prometheus"

// Judge gate Prometheus metrics.
var (
	JudgeInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "snipdex",
			Name:      "judge_in_flight",
			Help:      "Judge calls currently holding a gate permit",
		},
	)

	JudgeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipdex",
			Name:      "judge_calls_total",
			Help:      "Judge gate calls by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: ok / rate_limited / timeout / invalid
	)

	JudgeRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipdex",
			Name:      "judge_retries_total",
			Help:      "Judge retries after a rate limit signal",
		},
		[]string{"kind"},
	)

	JudgeWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snipdex",
			Name:      "judge_permit_wait_seconds",
			Help:      "Time spent waiting for a gate permit",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)
)

var judgeMetricsRegistered bool

// RegisterJudgeMetrics registers judge gate metrics. Must be called once from main.
func RegisterJudgeMetrics() {
	if judgeMetricsRegistered {
		return
	}
	prometheus.MustRegister(JudgeInFlight)
	prometheus.MustRegister(JudgeCallsTotal)
	prometheus.MustRegister(JudgeRetriesTotal)
	prometheus.MustRegister(JudgeWaitDuration)
	judgeMetricsRegistered = true
}
