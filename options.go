package travelassistant

import (
	"log/slog"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

// Option configures the Assistant.
type Option func(*Assistant)

// WithStore injects a custom state store. Defaults to the in-memory store.
func WithStore(store ports.StateStore) Option {
	return func(a *Assistant) {
		if store != nil {
			a.store = store
		}
	}
}

// WithGateway injects a custom tool gateway. Defaults to the built-in
// simulator.
func WithGateway(gw ports.ToolGateway) Option {
	return func(a *Assistant) {
		if gw != nil {
			a.gateway = gw
		}
	}
}

// WithLogger sets a structured logger for the assistant and everything
// it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks on both workflows.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}
