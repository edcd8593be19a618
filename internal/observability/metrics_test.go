package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

func TestHooksFeedCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := New(reg)
	hooks := metrics.Hooks()
	ctx := context.Background()

	node := &domain.NodeEvent{Timestamp: time.Now(), Workflow: "flight", Node: "reasoning"}
	hooks.OnNodeEnter(ctx, node)
	hooks.OnNodeEnter(ctx, node)
	hooks.OnSuspend(ctx, node)

	call := &domain.ToolEvent{Workflow: "flight", Node: "execute_search", Operation: "search"}
	hooks.OnToolCall(ctx, call)
	hooks.OnToolReturn(ctx, call)
	failed := &domain.ToolEvent{Workflow: "flight", Node: "purchase", Operation: "purchase", IsError: true}
	hooks.OnToolCall(ctx, failed)
	hooks.OnToolReturn(ctx, failed)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.nodeEntries.WithLabelValues("flight", "reasoning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.suspensions.WithLabelValues("flight", "reasoning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.toolCalls.WithLabelValues("flight", "search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.toolErrors.WithLabelValues("flight", "purchase")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.toolErrors.WithLabelValues("flight", "search")))
}
