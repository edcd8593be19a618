// Package travelassistant is the high-level entry point for the travel
// assistant orchestration core. It wires the trip and flight workflows to
// a state store, a tool gateway and a reasoner, and exposes a
// send-a-turn API over durable sessions.
package travelassistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/LamiKaan/travel-assistant/internal/gateway"
	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/internal/runtime"
	"github.com/LamiKaan/travel-assistant/internal/workflow/flight"
	"github.com/LamiKaan/travel-assistant/internal/workflow/trip"
	"github.com/LamiKaan/travel-assistant/pkg/adapters/memory"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
	"github.com/LamiKaan/travel-assistant/pkg/session"
)

// Assistant owns the workflows and serializes session access. One
// instance serves any number of concurrent sessions.
type Assistant struct {
	store    ports.StateStore
	gateway  ports.ToolGateway
	reasoner ports.Reasoner
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	sessions *session.Manager
	workflow *trip.Workflow
}

// New builds an Assistant around the given reasoner. By default state
// lives in memory and tools are served by the built-in simulator; use
// options to swap either.
func New(reasoner ports.Reasoner, opts ...Option) (*Assistant, error) {
	if reasoner == nil {
		return nil, fmt.Errorf("a reasoner is required")
	}

	a := &Assistant{
		reasoner: reasoner,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		a.store = memory.New()
	}
	if a.gateway == nil {
		a.gateway = gateway.NewSimulator(gateway.WithLogger(a.logger))
	}

	a.sessions = session.NewManager(a.store, session.WithLogger(a.logger))

	flightWF := flight.New(a.gateway, a.reasoner,
		flight.WithLogger(a.logger),
		flight.WithHooks(a.hooks),
	)
	a.workflow = trip.New(flightWF, a.reasoner,
		trip.WithLogger(a.logger),
		trip.WithHooks(a.hooks),
	)
	return a, nil
}

// Start loads the session with the given ID or creates it for the
// traveler. An empty ID gets a generated one.
func (a *Assistant) Start(ctx context.Context, sessionID string, traveler domain.Traveler) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sess, err := a.sessions.LoadOrStart(ctx, sessionID, traveler)
	if err != nil {
		return nil, err
	}
	a.logger.Info("session started", "session_id", sess.ID, "traveler", traveler.Name)
	return sess, nil
}

// Send delivers one user turn to the session and returns the assistant's
// messages for it. The session advances to its next suspension and is
// persisted before Send returns; on error the previously persisted state
// is left untouched, so the turn can simply be sent again.
func (a *Assistant) Send(ctx context.Context, sessionID, text string) ([]domain.Message, error) {
	var replies []domain.Message
	err := a.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := a.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		sess.History = append(sess.History, domain.UserMessage(text))
		msgs, err := a.workflow.Run(ctx, sess, runtime.Input{Text: text, External: true})
		if err != nil {
			return err
		}
		if err := a.store.Save(ctx, sessionID, sess); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
		replies = msgs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return replies, nil
}

// Session returns a snapshot of the session's durable state.
func (a *Assistant) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return a.sessions.Load(ctx, sessionID)
}

// Sessions lists the IDs of all persisted sessions.
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	return a.sessions.List(ctx)
}

// End deletes the session's durable state.
func (a *Assistant) End(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}
