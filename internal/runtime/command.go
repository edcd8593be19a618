package runtime

import "github.com/LamiKaan/travel-assistant/pkg/domain"

type commandKind int

const (
	kindSuspend commandKind = iota
	kindTransition
	kindTerminate
)

// Command is the typed outcome of a node invocation: either suspend at the
// current node awaiting external input, transition to another node within
// the same engine loop, or terminate the workflow. The carried update is a
// declared mutation; the engine applies it before routing, so a node that
// returns no update provably changes nothing.
type Command[S any] struct {
	kind   commandKind
	next   domain.NodeID
	update func(S)
	emit   []domain.Message
}

// Suspend halts the loop at the current node. The update is applied and
// checkpointed by the caller; control returns when the next external input
// arrives at the same node.
func Suspend[S any](update func(S)) Command[S] {
	return Command[S]{kind: kindSuspend, update: update}
}

// Transition applies the update and continues the loop at next without
// crossing an I/O boundary.
func Transition[S any](next domain.NodeID, update func(S)) Command[S] {
	return Command[S]{kind: kindTransition, next: next, update: update}
}

// Terminate applies the update and ends the workflow run.
func Terminate[S any](update func(S)) Command[S] {
	return Command[S]{kind: kindTerminate, update: update}
}

// Emit attaches outbound messages to the command. They are collected in
// order across the whole run and handed back to the caller.
func (c Command[S]) Emit(msgs ...domain.Message) Command[S] {
	c.emit = append(c.emit, msgs...)
	return c
}
