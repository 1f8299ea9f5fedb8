package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDurationSeconds tracks Generative Language API latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trench_llm_request_duration_seconds",
		Help:    "Duration of Generative Language API requests",
		Buckets: prometheus.DefBuckets,
	})

	// RequestErrorsTotal tracks Generative Language API failures.
	RequestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trench_llm_request_errors_total",
		Help: "Total number of Generative Language API failures",
	})
)
