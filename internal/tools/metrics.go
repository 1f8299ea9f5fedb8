package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ExecutionsTotal tracks tool executions by tool name.
	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trench_tool_executions_total",
		Help: "Total number of tool executions",
	}, []string{"tool"})

	// ErrorsTotal tracks upstream tool failures by tool name.
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trench_tool_errors_total",
		Help: "Total number of upstream tool failures",
	}, []string{"tool"})

	// ExecutionDurationSeconds tracks tool latency by tool name.
	ExecutionDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trench_tool_execution_duration_seconds",
		Help:    "Duration of tool executions",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})
)
