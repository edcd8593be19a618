// Package observability turns workflow lifecycle events into Prometheus
// metrics.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// Metrics collects per-node and per-tool counters.
type Metrics struct {
	nodeEntries *prometheus.CounterVec
	suspensions *prometheus.CounterVec
	toolCalls   *prometheus.CounterVec
	toolErrors  *prometheus.CounterVec
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		nodeEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "node_entries_total",
			Help:      "Node executions per workflow.",
		}, []string{"workflow", "node"}),
		suspensions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "suspensions_total",
			Help:      "Suspensions awaiting external input, per workflow and node.",
		}, []string{"workflow", "node"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "tool_calls_total",
			Help:      "Gateway operations issued by workflow nodes.",
		}, []string{"workflow", "operation"}),
		toolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_assistant",
			Name:      "tool_errors_total",
			Help:      "Gateway operations that returned an error.",
		}, []string{"workflow", "operation"}),
	}
}

// Hooks returns lifecycle hooks feeding these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.nodeEntries.WithLabelValues(e.Workflow, string(e.Node)).Inc()
		},
		OnSuspend: func(ctx context.Context, e *domain.NodeEvent) {
			m.suspensions.WithLabelValues(e.Workflow, string(e.Node)).Inc()
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			m.toolCalls.WithLabelValues(e.Workflow, e.Operation).Inc()
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			if e.IsError {
				m.toolErrors.WithLabelValues(e.Workflow, e.Operation).Inc()
			}
		},
	}
}
