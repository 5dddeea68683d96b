// Package metrics holds the Prometheus collectors shared by the engine
// packages. All collectors register with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels.
const (
	StageDerive    = "derive"
	StageIntegrate = "integrate"
	StageScan      = "scan"
	StageSolid     = "solid"
	StageHistory   = "history"
)

var (
	// SoftFailures counts failures that degraded a result instead of
	// aborting the call.
	SoftFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gorevolve_soft_failures_total",
		Help: "Failures absorbed by fail-soft stages, by stage",
	}, []string{"stage"})

	// Computations counts ComputeAll calls by outcome.
	Computations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gorevolve_computations_total",
		Help: "ComputeAll calls by outcome",
	}, []string{"outcome"})

	// ComputeDuration tracks ComputeAll latency.
	ComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gorevolve_compute_duration_seconds",
		Help:    "ComputeAll duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// ToolCalls counts tool API calls by tool and result.
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gorevolve_tool_calls_total",
		Help: "Tool API calls by tool and result",
	}, []string{"tool", "result"})
)
