package ports

import (
	"context"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// StateStore defines the interface for persisting session state.
// The orchestrator checkpoints through it after every suspension, enabling
// crash recovery with no state loss beyond the in-progress turn.
type StateStore interface {
	// Save persists the session snapshot under its ID.
	Save(ctx context.Context, sessionID string, sess *domain.Session) error

	// Load retrieves the session for the given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of active sessions.
	List(ctx context.Context) ([]string, error)
}
