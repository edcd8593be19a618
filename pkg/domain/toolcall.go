package domain

import "fmt"

// ToolCallStatus tracks a tool call through its approval lifecycle.
type ToolCallStatus string

const (
	ToolCallPending   ToolCallStatus = "pending"
	ToolCallApproved  ToolCallStatus = "approved"
	ToolCallRejected  ToolCallStatus = "rejected"
	ToolCallCompleted ToolCallStatus = "completed"
	ToolCallFailed    ToolCallStatus = "failed"
)

// validStatusTransitions encodes the strict lifecycle:
// pending -> (approved -> completed | failed) | rejected.
var validStatusTransitions = map[ToolCallStatus][]ToolCallStatus{
	ToolCallPending:  {ToolCallApproved, ToolCallRejected},
	ToolCallApproved: {ToolCallCompleted, ToolCallFailed},
}

// ToolCall is a declared request (from the reasoning collaborator) to invoke
// an external operation, subject to human approval before execution.
type ToolCall struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Args   SearchArgs     `json:"args"`
	Status ToolCallStatus `json:"status"`
}

// CanAdvance reports whether the lifecycle permits moving to the given
// status.
func (c *ToolCall) CanAdvance(to ToolCallStatus) bool {
	for _, allowed := range validStatusTransitions[c.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Advance moves the call to the given status, enforcing the lifecycle.
// An out-of-lifecycle transition indicates an orchestration bug and is
// reported as a ContractError.
func (c *ToolCall) Advance(to ToolCallStatus) error {
	for _, allowed := range validStatusTransitions[c.Status] {
		if allowed == to {
			c.Status = to
			return nil
		}
	}
	return &ContractError{
		Reason: fmt.Sprintf("tool call %s: illegal status transition %s -> %s", c.ID, c.Status, to),
	}
}
