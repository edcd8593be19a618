package ports

import (
	"context"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// ReasonScope selects which collaborator persona handles the history.
type ReasonScope string

const (
	// ScopeTrip classifies intent and chats at the trip level.
	ScopeTrip ReasonScope = "trip"
	// ScopeFlight gathers trip criteria and emits search tool calls.
	ScopeFlight ReasonScope = "flight"
)

// Reasoning is the reasoner's answer: exactly one of Reply, Intent or
// ToolCall is set.
type Reasoning struct {
	// Reply is free conversational text for the user.
	Reply string

	// Intent is a trip-scope classification decision.
	Intent domain.Intent

	// ToolCall is a flight-scope request to run a tool, pending approval.
	ToolCall *domain.ToolCall
}

// Reasoner is the external natural-language collaborator. It always
// resolves; model-side retries are its own concern.
type Reasoner interface {
	Reason(ctx context.Context, history []domain.Message, scope ReasonScope) (Reasoning, error)
}
