package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// movesTotal counts moves by kind and outcome
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equationshift_moves_total",
		Help: "Total moves by kind and outcome",
	}, []string{"kind", "outcome"})

	// moveDuration tracks how long a move takes end to end
	moveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "equationshift_move_duration_seconds",
		Help:    "Move duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	}, []string{"kind"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "equationshift_sessions_active",
		Help: "Number of live equation sessions",
	})

	sessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equationshift_sessions_evicted_total",
		Help: "Idle sessions dropped to make room for new ones",
	})

	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equationshift_tool_calls_total",
		Help: "Total stateless tool calls by tool and outcome",
	}, []string{"tool", "outcome"})
)

// toolLabel keeps the tool label to the known tool names.
func toolLabel(name string) string {
	if _, ok := knownTools[name]; ok {
		return name
	}
	return "unknown"
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
