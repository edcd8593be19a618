// Package runtime is the generic node/transition engine shared by the trip
// and flight workflows. A Machine owns a set of named node functions; Run
// drives them in a loop, delivering the external input to the first node
// only, until a node suspends or terminates. Termination is structural:
// every registered node reaches a suspension or terminal command in a
// bounded number of hops, so the loop carries no iteration cap.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// Input is the external event delivered to a node. External distinguishes
// a real user turn from a machine-internal entry, so nodes can tell an
// intentionally blank submission apart from a fresh visit that should only
// emit its prompt.
type Input struct {
	Text     string
	External bool
}

// NodeFunc is a single step of a workflow. It reads state and the pending
// input (zero on machine-internal entry) and returns a command.
type NodeFunc[S any] func(ctx context.Context, state S, in Input) (Command[S], error)

// Machine is a compiled workflow: an entry node plus named node functions.
type Machine[S any] struct {
	name   string
	entry  domain.NodeID
	nodes  map[domain.NodeID]NodeFunc[S]
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures a Machine.
type Option[S any] func(*Machine[S])

// WithHooks registers observability hooks.
func WithHooks[S any](hooks domain.LifecycleHooks) Option[S] {
	return func(m *Machine[S]) {
		m.hooks = hooks
	}
}

// WithLogger sets a structured logger for the machine.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(m *Machine[S]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine creates a machine starting at entry.
func NewMachine[S any](name string, entry domain.NodeID, opts ...Option[S]) *Machine[S] {
	m := &Machine[S]{
		name:   name,
		entry:  entry,
		nodes:  make(map[domain.NodeID]NodeFunc[S]),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("workflow", name)
	return m
}

// Handle registers the function for a node.
func (m *Machine[S]) Handle(node domain.NodeID, fn NodeFunc[S]) {
	m.nodes[node] = fn
}

// Entry returns the machine's entry node.
func (m *Machine[S]) Entry() domain.NodeID {
	return m.entry
}

// Result is the outcome of a run-to-suspension.
type Result struct {
	// Node is the suspension point to resume from. Unset when Done.
	Node domain.NodeID
	// Done reports that the workflow terminated.
	Done bool
	// Messages are the outbound messages emitted across the run, in order.
	Messages []domain.Message
}

// Run executes the machine from the given node (the entry node when empty)
// until a node suspends or terminates. The external input is delivered to
// the first node invoked; internal transitions see an empty input.
func (m *Machine[S]) Run(ctx context.Context, state S, from domain.NodeID, input Input) (Result, error) {
	cur := from
	if cur == "" {
		cur = m.entry
	}

	var out []domain.Message
	in := input
	for {
		fn, ok := m.nodes[cur]
		if !ok {
			return Result{}, domain.Contractf(cur, "workflow %q has no such node", m.name)
		}

		m.emitNode(ctx, m.hooks.OnNodeEnter, cur)
		cmd, err := fn(ctx, state, in)
		if err != nil {
			m.logger.Error("node failed", "node", cur, "err", err)
			return Result{}, err
		}
		// At most one node consumes the external input.
		in = Input{}

		if cmd.update != nil {
			cmd.update(state)
		}
		out = append(out, cmd.emit...)
		m.emitNode(ctx, m.hooks.OnNodeLeave, cur)

		switch cmd.kind {
		case kindSuspend:
			m.logger.Debug("suspended", "node", cur)
			m.emitNode(ctx, m.hooks.OnSuspend, cur)
			return Result{Node: cur, Messages: out}, nil
		case kindTerminate:
			m.logger.Debug("terminated", "node", cur)
			return Result{Done: true, Messages: out}, nil
		case kindTransition:
			m.logger.Debug("transition", "from", cur, "to", cmd.next)
			cur = cmd.next
		}
	}
}

// ReportToolCall notifies hooks that a node issued a gateway operation.
func (m *Machine[S]) ReportToolCall(ctx context.Context, node domain.NodeID, operation string) {
	if m.hooks.OnToolCall != nil {
		m.hooks.OnToolCall(ctx, &domain.ToolEvent{
			Timestamp: time.Now(),
			Workflow:  m.name,
			Node:      node,
			Operation: operation,
		})
	}
}

// ReportToolReturn notifies hooks that a gateway operation came back.
func (m *Machine[S]) ReportToolReturn(ctx context.Context, node domain.NodeID, operation string, isErr bool) {
	if m.hooks.OnToolReturn != nil {
		m.hooks.OnToolReturn(ctx, &domain.ToolEvent{
			Timestamp: time.Now(),
			Workflow:  m.name,
			Node:      node,
			Operation: operation,
			IsError:   isErr,
		})
	}
}

func (m *Machine[S]) emitNode(ctx context.Context, hook func(context.Context, *domain.NodeEvent), node domain.NodeID) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.NodeEvent{
		Timestamp: time.Now(),
		Workflow:  m.name,
		Node:      node,
	})
}
