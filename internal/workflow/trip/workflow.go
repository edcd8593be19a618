// Package trip implements the outer travel workflow: intent
// classification at the trip level, hand-off into the embedded flight
// workflow, and placeholder routing for car rental and hotel
// reservation.
package trip

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/internal/runtime"
	"github.com/LamiKaan/travel-assistant/internal/workflow/flight"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

// Workflow node IDs.
const (
	NodeClassify domain.NodeID = "classify"
	NodeFlight   domain.NodeID = "flight"
	NodeCar      domain.NodeID = "car"
	NodeHotel    domain.NodeID = "hotel"
)

// Workflow drives a whole session: trip-level conversation plus the
// nested flight workflow.
type Workflow struct {
	machine  *runtime.Machine[*domain.Session]
	flight   *flight.Workflow
	reasoner ports.Reasoner
	logger   *slog.Logger
}

// Option configures the Workflow.
type Option func(*Workflow) []runtime.Option[*domain.Session]

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) []runtime.Option[*domain.Session] {
		if logger != nil {
			w.logger = logger
		}
		return []runtime.Option[*domain.Session]{runtime.WithLogger[*domain.Session](logger)}
	}
}

// WithHooks registers observability hooks on the machine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workflow) []runtime.Option[*domain.Session] {
		return []runtime.Option[*domain.Session]{runtime.WithHooks[*domain.Session](hooks)}
	}
}

// New compiles the trip workflow around an embedded flight workflow.
func New(flightWF *flight.Workflow, reasoner ports.Reasoner, opts ...Option) *Workflow {
	w := &Workflow{
		flight:   flightWF,
		reasoner: reasoner,
		logger:   logging.NewNop(),
	}

	var machineOpts []runtime.Option[*domain.Session]
	for _, opt := range opts {
		machineOpts = append(machineOpts, opt(w)...)
	}

	m := runtime.NewMachine[*domain.Session]("trip", NodeClassify, machineOpts...)
	m.Handle(NodeClassify, w.classify)
	m.Handle(NodeFlight, w.flightNode)
	m.Handle(NodeCar, w.unavailable(NodeCar, carUnavailable))
	m.Handle(NodeHotel, w.unavailable(NodeHotel, hotelUnavailable))
	w.machine = m
	return w
}

// Run advances the session until the next suspension and returns the
// outbound messages of this turn. The caller appends the incoming user
// message to the session history before calling.
func (w *Workflow) Run(ctx context.Context, sess *domain.Session, in runtime.Input) ([]domain.Message, error) {
	res, err := w.machine.Run(ctx, sess, sess.Node, in)
	if err != nil {
		return nil, err
	}
	if res.Done {
		// The outer workflow has no terminal node; a session lives until
		// it is deleted.
		return nil, domain.Contractf(sess.Node, "trip workflow terminated unexpectedly")
	}
	sess.Node = res.Node
	return res.Messages, nil
}

type command = runtime.Command[*domain.Session]

// classify is the trip-level hub. With no pending intent it consults the
// trip reasoner on the latest turn; with one it routes straight to the
// matching service node.
func (w *Workflow) classify(ctx context.Context, sess *domain.Session, in runtime.Input) (command, error) {
	if sess.Intent != domain.IntentNone {
		next, err := intentNode(sess.Intent)
		if err != nil {
			return command{}, err
		}
		return runtime.Transition[*domain.Session](next, nil), nil
	}

	last := domain.LastMessage(sess.History)
	switch last.Role {
	case domain.RoleAssistant:
		// Answered already; wait for the next user turn.
		return runtime.Suspend[*domain.Session](nil), nil

	case domain.RoleUser, domain.RoleSystem:
		// System messages arrive as handover context from the service
		// nodes and are folded into the trip conversation the same way.
		result, err := w.reasoner.Reason(ctx, append(sess.TravelHistory[:len(sess.TravelHistory):len(sess.TravelHistory)], last), ports.ScopeTrip)
		if err != nil {
			return command{}, fmt.Errorf("trip reasoner: %w", err)
		}

		if result.Intent != domain.IntentNone {
			if last.Role == domain.RoleSystem {
				return command{}, domain.Contractf(NodeClassify, "intent decision on a system message")
			}
			next, err := intentNode(result.Intent)
			if err != nil {
				return command{}, err
			}
			notice := domain.AssistantMessage(handoffNotice(result.Intent))
			return runtime.Transition(next, func(s *domain.Session) {
				s.History = append(s.History, notice)
				s.TravelHistory = append(s.TravelHistory, last, notice)
				s.Intent = result.Intent
			}).Emit(notice), nil
		}

		reply := domain.AssistantMessage(result.Reply)
		return runtime.Suspend(func(s *domain.Session) {
			s.History = append(s.History, reply)
			s.TravelHistory = append(s.TravelHistory, last, reply)
		}).Emit(reply), nil

	default:
		return command{}, domain.Contractf(NodeClassify, "unexpected message role %q", last.Role)
	}
}

// flightNode runs the embedded flight workflow: it starts a booking
// attempt on first entry, forwards turns while one is in progress, and
// folds the handover back into the trip conversation when it concludes.
func (w *Workflow) flightNode(ctx context.Context, sess *domain.Session, in runtime.Input) (command, error) {
	if sess.Phase != domain.PhaseInProgress {
		return w.startAttempt(ctx, sess)
	}

	fs := sess.Flight
	if fs == nil {
		return command{}, domain.Contractf(NodeFlight, "attempt in progress without flight state")
	}

	// Conversational input belongs to the flight assistant's history; menu
	// input is consumed by the suspended node directly.
	if in.External && fs.Node == flight.NodeReasoning {
		fs.Messages = append(fs.Messages, domain.UserMessage(in.Text))
	}

	out, err := w.flight.Run(ctx, fs, sess.Traveler, in)
	if err != nil {
		return command{}, err
	}
	if !out.Done {
		return runtime.Suspend[*domain.Session](nil).Emit(out.Messages...), nil
	}

	summary := domain.SystemMessage(out.Handover.Summary())
	w.logger.Info("flight attempt concluded",
		"session_id", sess.ID,
		"escalation", out.Handover.EscalationPending)
	return runtime.Transition(NodeClassify, func(s *domain.Session) {
		s.History = append(s.History, summary)
		s.Intent = domain.IntentNone
		s.Phase = domain.PhaseResumed
	}).Emit(out.Messages...), nil
}

// startAttempt opens a fresh booking attempt. A synthetic greeting turn
// makes the flight reasoner open the conversation; a prior attempt's
// history is carried over so the assistant keeps its context.
func (w *Workflow) startAttempt(ctx context.Context, sess *domain.Session) (command, error) {
	greeting := "Hello."
	var history []domain.Message
	if sess.Phase == domain.PhaseResumed && sess.Flight != nil {
		greeting = "Hello again."
		history = sess.Flight.Messages
	}

	fs := domain.NewFlightState(append(history, domain.UserMessage(greeting)))
	out, err := w.flight.Run(ctx, fs, sess.Traveler, runtime.Input{})
	if err != nil {
		return command{}, err
	}
	if out.Done {
		return command{}, domain.Contractf(NodeFlight, "fresh attempt concluded without any user turn")
	}

	return runtime.Suspend(func(s *domain.Session) {
		s.Flight = fs
		s.Phase = domain.PhaseInProgress
	}).Emit(out.Messages...), nil
}

// unavailable builds the placeholder node for a service that has no
// assistant yet: it folds a handover note into the conversation and
// returns to classification, where the reasoner informs the user.
func (w *Workflow) unavailable(node domain.NodeID, handover string) runtime.NodeFunc[*domain.Session] {
	return func(ctx context.Context, sess *domain.Session, in runtime.Input) (command, error) {
		note := domain.SystemMessage(handover)
		return runtime.Transition(NodeClassify, func(s *domain.Session) {
			s.History = append(s.History, note)
			s.Intent = domain.IntentNone
		}), nil
	}
}

func intentNode(intent domain.Intent) (domain.NodeID, error) {
	switch intent {
	case domain.IntentFlight:
		return NodeFlight, nil
	case domain.IntentCar:
		return NodeCar, nil
	case domain.IntentHotel:
		return NodeHotel, nil
	default:
		return "", domain.Contractf(NodeClassify, "no node for intent %q", intent)
	}
}
