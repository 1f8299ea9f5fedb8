package refresher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trench_refresher_cycles_total",
		Help: "Total number of refresh cycles started",
	})

	CyclesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trench_refresher_cycles_skipped_total",
		Help: "Total number of ticks skipped because a cycle was still running",
	})

	RefreshErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trench_refresher_errors_total",
		Help: "Total number of failed target refreshes",
	}, []string{"target"})

	CycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trench_refresher_cycle_duration_seconds",
		Help:    "Duration of refresh cycles",
		Buckets: prometheus.DefBuckets,
	})
)
