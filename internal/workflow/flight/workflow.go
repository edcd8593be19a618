// Package flight implements the inner booking workflow: tool-call
// approval, flight search, selection, confirmation, policy compliance, and
// ticket purchase or manager escalation. It is an embeddable state machine
// with a run-to-suspension entry point and a typed handover payload for
// the outer trip workflow.
package flight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/internal/runtime"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

// Workflow node IDs.
const (
	NodeReasoning        domain.NodeID = "reasoning"
	NodeHumanReview      domain.NodeID = "human_review"
	NodeExecuteSearch    domain.NodeID = "execute_search"
	NodeSelectDeparture  domain.NodeID = "select_departure"
	NodeSelectReturn     domain.NodeID = "select_return"
	NodeConfirmSelection domain.NodeID = "confirm_selection"
	NodePolicyCheck      domain.NodeID = "policy_check"
	NodeEscalationNote   domain.NodeID = "escalation_note"
	NodeEscalationReview domain.NodeID = "escalation_review"
	NodePurchase         domain.NodeID = "purchase"
	NodeEscalate         domain.NodeID = "escalate"
)

// state is the machine state: the booking attempt plus the session
// identity the gateway operations need.
type state struct {
	*domain.FlightState
	traveler domain.Traveler
}

// Workflow drives one booking attempt end-to-end.
type Workflow struct {
	machine  *runtime.Machine[*state]
	gateway  ports.ToolGateway
	reasoner ports.Reasoner
	logger   *slog.Logger
}

// Option configures the Workflow.
type Option func(*Workflow) []runtime.Option[*state]

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) []runtime.Option[*state] {
		if logger != nil {
			w.logger = logger
		}
		return []runtime.Option[*state]{runtime.WithLogger[*state](logger)}
	}
}

// WithHooks registers observability hooks on the machine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workflow) []runtime.Option[*state] {
		return []runtime.Option[*state]{runtime.WithHooks[*state](hooks)}
	}
}

// New compiles the flight workflow against the given collaborators.
func New(gateway ports.ToolGateway, reasoner ports.Reasoner, opts ...Option) *Workflow {
	w := &Workflow{
		gateway:  gateway,
		reasoner: reasoner,
		logger:   logging.NewNop(),
	}

	var machineOpts []runtime.Option[*state]
	for _, opt := range opts {
		machineOpts = append(machineOpts, opt(w)...)
	}

	m := runtime.NewMachine[*state]("flight", NodeReasoning, machineOpts...)
	m.Handle(NodeReasoning, w.reasoning)
	m.Handle(NodeHumanReview, w.humanReview)
	m.Handle(NodeExecuteSearch, w.executeSearch)
	m.Handle(NodeSelectDeparture, w.selectDeparture)
	m.Handle(NodeSelectReturn, w.selectReturn)
	m.Handle(NodeConfirmSelection, w.confirmSelection)
	m.Handle(NodePolicyCheck, w.policyCheck)
	m.Handle(NodeEscalationNote, w.escalationNote)
	m.Handle(NodeEscalationReview, w.escalationReview)
	m.Handle(NodePurchase, w.purchase)
	m.Handle(NodeEscalate, w.escalate)
	w.machine = m
	return w
}

// Outcome is the result of running the attempt to its next suspension.
type Outcome struct {
	// Done reports that the attempt concluded; Handover is then set.
	Done     bool
	Handover *Handover
	// Messages are the outbound messages produced by this run.
	Messages []domain.Message
}

// Run drives the booking attempt from its current node until it suspends
// or concludes. Conversational input must already be appended to the
// attempt's message history by the caller when the resume point is the
// reasoning node; menu input is consumed directly by the suspended node.
func (w *Workflow) Run(ctx context.Context, fs *domain.FlightState, traveler domain.Traveler, in runtime.Input) (Outcome, error) {
	st := &state{FlightState: fs, traveler: traveler}

	res, err := w.machine.Run(ctx, st, fs.Node, in)
	if err != nil {
		return Outcome{}, err
	}
	if !res.Done {
		fs.Node = res.Node
		return Outcome{Messages: res.Messages}, nil
	}

	handover, err := w.handover(fs)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Done: true, Handover: handover, Messages: res.Messages}, nil
}

// handover derives the typed conclusion payload from the final state.
func (w *Workflow) handover(fs *domain.FlightState) (*Handover, error) {
	if !fs.Completed {
		return nil, domain.Contractf(NodeReasoning, "workflow terminated without completion")
	}
	args := fs.TripArgs()
	if args == nil {
		return nil, domain.Contractf(NodeReasoning, "completed attempt has no recorded trip arguments")
	}

	switch {
	case fs.PurchasedDepart != nil:
		if fs.PendingToolCall.Status != domain.ToolCallCompleted {
			return nil, domain.Contractf(NodePurchase, "purchase concluded with tool call in status %s", fs.PendingToolCall.Status)
		}
		return &Handover{
			Trip:         *args,
			DepartTicket: fs.PurchasedDepart,
			ReturnTicket: fs.PurchasedReturn,
		}, nil
	case fs.SelectedDepart != nil && fs.NextStep == domain.StepManagerEscalation:
		return &Handover{
			Trip:              *args,
			EscalationPending: true,
			SelectedDepart:    fs.SelectedDepart,
			SelectedReturn:    fs.SelectedReturn,
			Note:              fs.EscalationNote,
		}, nil
	default:
		return nil, domain.Contractf(NodeReasoning, "completed attempt has neither tickets nor a pending escalation")
	}
}

// Handover is the structured payload passed back to the trip workflow when
// a booking attempt concludes.
type Handover struct {
	Trip domain.SearchArgs

	// Purchase path: one ticket per requested leg.
	DepartTicket *domain.Ticket
	ReturnTicket *domain.Ticket

	// Escalation path: selections awaiting manager approval.
	EscalationPending bool
	SelectedDepart    *domain.Offer
	SelectedReturn    *domain.Offer
	Note              string
}

// Summary renders the handover as a system message for the trip reasoner.
func (h *Handover) Summary() string {
	if h.EscalationPending {
		return fmt.Sprintf(
			"This is a system message indicating that the user has completed their flight searching process. "+
				"The flight assistant has now handed the user back to you (travel assistant).\n\n"+
				"The user has not purchased the tickets yet, but they made their flight selections and asked for "+
				"approval from their manager. Once the manager approves the selected flights, the tickets will be purchased.\n"+
				"- Trip details: %+v\n- Departure flight: %s\n- Return flight: %s\n\n"+
				"Welcome the user back and take these details into account when offering further assistance, "+
				"for example aligning hotel bookings or car rentals with the trip dates and destinations.",
			h.Trip, describeOffer(h.SelectedDepart), describeOffer(h.SelectedReturn))
	}
	return fmt.Sprintf(
		"This is a system message indicating that the user has completed their flight booking process. "+
			"The flight assistant has now handed the user back to you (travel assistant).\n\n"+
			"- Trip details: %+v\n- Departure ticket: %s\n- Return ticket: %s\n\n"+
			"Welcome the user back and take these details into account when offering further assistance, "+
			"for example aligning hotel bookings or car rentals with the trip dates and destinations.",
		h.Trip, describeTicket(h.DepartTicket), describeTicket(h.ReturnTicket))
}

func describeOffer(o *domain.Offer) string {
	if o == nil {
		return "none"
	}
	return fmt.Sprintf("%+v", *o)
}

func describeTicket(t *domain.Ticket) string {
	if t == nil {
		return "none"
	}
	return fmt.Sprintf("%+v", *t)
}
