package reason

import (
	"context"
	"fmt"
	"sync"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

// ReasonerFunc adapts a function to the Reasoner port.
type ReasonerFunc func(ctx context.Context, history []domain.Message, scope ports.ReasonScope) (ports.Reasoning, error)

func (f ReasonerFunc) Reason(ctx context.Context, history []domain.Message, scope ports.ReasonScope) (ports.Reasoning, error) {
	return f(ctx, history, scope)
}

// Scripted replays a fixed sequence of reasoning outcomes, one per call.
// It stands in for the model-backed reasoner in tests and demos.
type Scripted struct {
	mu    sync.Mutex
	steps []ports.Reasoning
	calls int
}

// NewScripted builds a reasoner that answers with the given steps in order.
func NewScripted(steps ...ports.Reasoning) *Scripted {
	return &Scripted{steps: steps}
}

var _ ports.Reasoner = (*Scripted)(nil)

func (s *Scripted) Reason(ctx context.Context, history []domain.Message, scope ports.ReasonScope) (ports.Reasoning, error) {
	if err := ctx.Err(); err != nil {
		return ports.Reasoning{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.steps) {
		return ports.Reasoning{}, fmt.Errorf("scripted reasoner exhausted after %d calls", s.calls)
	}
	step := s.steps[s.calls]
	s.calls++
	return step, nil
}

// Calls reports how many times the reasoner was consulted.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Reply scripts a conversational answer.
func Reply(text string) ports.Reasoning {
	return ports.Reasoning{Reply: text}
}

// Route scripts a trip-scope intent decision.
func Route(intent domain.Intent) ports.Reasoning {
	return ports.Reasoning{Intent: intent}
}

// Search scripts a flight-scope search tool call.
func Search(id string, args domain.SearchArgs) ports.Reasoning {
	return ports.Reasoning{ToolCall: &domain.ToolCall{
		ID:     id,
		Name:   searchFlightsTool,
		Args:   args,
		Status: domain.ToolCallPending,
	}}
}
