package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	QueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trench_agent_queries_total",
		Help: "Total number of queries processed",
	})

	QueryErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trench_agent_query_errors_total",
		Help: "Total number of queries that failed during synthesis",
	})

	QueryDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trench_agent_query_duration_seconds",
		Help:    "End to end query processing duration",
		Buckets: prometheus.DefBuckets,
	})

	SelectionFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trench_agent_selection_fallbacks_total",
		Help: "Total number of tool selections that fell back to the defaults",
	})
)
