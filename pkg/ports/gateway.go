package ports

import (
	"context"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// SearchResult is a successful flight search: exactly three departure
// offers, and three return offers for two-way trips (none for one-way).
type SearchResult struct {
	DepartOffers []domain.Offer `json:"depart_offers"`
	ReturnOffers []domain.Offer `json:"return_offers,omitempty"`
}

// PurchaseRequest asks the external booking system to issue tickets for
// the selected offers on behalf of the traveler.
type PurchaseRequest struct {
	Depart   domain.Offer    `json:"depart"`
	Return   *domain.Offer   `json:"return,omitempty"`
	Traveler domain.Traveler `json:"traveler"`
}

// PurchaseResult carries the issued tickets, one per requested leg.
type PurchaseResult struct {
	DepartTicket domain.Ticket  `json:"depart_ticket"`
	ReturnTicket *domain.Ticket `json:"return_ticket,omitempty"`
}

// EscalationRequest asks for a manager exception on policy-violating offers.
type EscalationRequest struct {
	Depart   domain.Offer    `json:"depart"`
	Return   *domain.Offer   `json:"return,omitempty"`
	Note     string          `json:"note,omitempty"`
	Traveler domain.Traveler `json:"traveler"`
}

// ToolGateway is the uniform interface to external side-effecting
// operations. Calls are synchronous from the orchestrator's viewpoint and
// idempotent-safe to retry.
type ToolGateway interface {
	// SearchFlights retrieves offers for the given criteria.
	SearchFlights(ctx context.Context, args domain.SearchArgs) (SearchResult, error)

	// PurchaseTickets issues tickets. Errors are transient and retryable.
	PurchaseTickets(ctx context.Context, req PurchaseRequest) (PurchaseResult, error)

	// EscalateToManager requests a manager exception. Returns an
	// acknowledgement. Errors are transient and retryable.
	EscalateToManager(ctx context.Context, req EscalationRequest) (bool, error)

	// CheckPolicy evaluates a single offer against company policy.
	// It always resolves; a non-compliant offer is not an error.
	CheckPolicy(ctx context.Context, offer domain.Offer) (domain.PolicyReport, error)
}
