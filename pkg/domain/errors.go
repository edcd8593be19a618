package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ContractError reports a structural violation (an out-of-lifecycle tool
// call status, an unexpected message type at a node, a malformed gateway
// result). It indicates an orchestration bug, not a recoverable runtime
// condition, and is fatal for the turn.
type ContractError struct {
	Node   NodeID
	Reason string
}

func (e *ContractError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("contract violation at node %s: %s", e.Node, e.Reason)
	}
	return "contract violation: " + e.Reason
}

// Contractf builds a ContractError for the given node.
func Contractf(node NodeID, format string, args ...any) error {
	return &ContractError{Node: node, Reason: fmt.Sprintf(format, args...)}
}
