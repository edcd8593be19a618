package domain

import (
	"context"
	"time"
)

// NodeEvent represents entry into, exit from, or suspension at a node.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Workflow  string    `json:"workflow"`
	Node      NodeID    `json:"node"`
}

// ToolEvent represents a gateway operation issued by a node.
type ToolEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Workflow  string    `json:"workflow"`
	Node      NodeID    `json:"node"`
	Operation string    `json:"operation"`
	IsError   bool      `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// All hooks are optional.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnSuspend    func(context.Context, *NodeEvent)
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
}
