package flight

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/LamiKaan/travel-assistant/internal/runtime"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

type command = runtime.Command[*state]

// reasoning is the workflow's conversational hub. It hands the attempt's
// history to the flight reasoner and routes its answer: a reply suspends
// awaiting the next user turn, a tool call opens the approval gate.
func (w *Workflow) reasoning(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if st.Completed {
		return runtime.Terminate[*state](nil), nil
	}

	switch last := domain.LastMessage(st.Messages); last.Role {
	case domain.RoleSystem:
		// A directive was folded in without a user turn; nothing to do
		// until the user speaks again.
		return runtime.Suspend[*state](nil), nil

	case domain.RoleAssistant:
		// Already answered; wait for the next turn.
		return runtime.Suspend[*state](nil), nil

	case domain.RoleUser, domain.RoleTool:
		result, err := w.reasoner.Reason(ctx, st.Messages, ports.ScopeFlight)
		if err != nil {
			return command{}, fmt.Errorf("flight reasoner: %w", err)
		}

		if result.ToolCall != nil {
			if pending := st.PendingToolCall; pending != nil &&
				(pending.Status == domain.ToolCallPending || pending.Status == domain.ToolCallApproved) {
				return command{}, domain.Contractf(NodeReasoning,
					"tool call %s requested while call %s is still %s", result.ToolCall.ID, pending.ID, pending.Status)
			}
			call := *result.ToolCall
			call.Status = domain.ToolCallPending
			request := domain.Message{Role: domain.RoleAssistant, ToolCall: &call}
			return runtime.Transition(NodeHumanReview, func(s *state) {
				recorded := call
				s.Messages = append(s.Messages, request)
				s.PendingToolCall = &recorded
				s.NextStep = domain.StepFlightSearch
			}), nil
		}

		reply := domain.AssistantMessage(result.Reply)
		return runtime.Suspend(func(s *state) {
			s.Messages = append(s.Messages, reply)
		}).Emit(reply), nil

	default:
		return command{}, domain.Contractf(NodeReasoning, "unexpected message role %q", last.Role)
	}
}

// humanReview is the tool-call approval gate. Only an explicit approve (1)
// or reject (0) advances; anything else re-suspends with an error prompt
// and mutates nothing.
func (w *Workflow) humanReview(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if st.NextStep != domain.StepFlightSearch {
		return command{}, domain.Contractf(NodeHumanReview, "entered with next step %s", st.NextStep)
	}
	call := st.PendingToolCall
	if call == nil || !call.CanAdvance(domain.ToolCallApproved) {
		return command{}, domain.Contractf(NodeHumanReview, "no reviewable tool call")
	}

	if !in.External {
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(approvalPrompt(call.Args))), nil
	}

	switch strings.TrimSpace(in.Text) {
	case "1":
		return runtime.Transition(NodeExecuteSearch, func(s *state) {
			s.PendingToolCall.Status = domain.ToolCallApproved
		}), nil
	case "0":
		rejection := domain.ToolResultMessage(call.ID, rejectionNotice, true)
		return runtime.Transition(NodeReasoning, func(s *state) {
			s.PendingToolCall.Status = domain.ToolCallRejected
			s.Messages = append(s.Messages, rejection)
		}), nil
	default:
		return runtime.Suspend[*state](nil).Emit(
			domain.AssistantMessage(invalidApproval),
			domain.AssistantMessage(approvalPrompt(call.Args)),
		), nil
	}
}

// executeSearch runs the approved search through the gateway. Failure is
// surfaced to the reasoner as a tool-error result, never retried silently.
func (w *Workflow) executeSearch(ctx context.Context, st *state, in runtime.Input) (command, error) {
	call := st.PendingToolCall
	if call == nil || call.Status != domain.ToolCallApproved {
		return command{}, domain.Contractf(NodeExecuteSearch, "tool call is not approved")
	}

	w.machine.ReportToolCall(ctx, NodeExecuteSearch, "search")
	result, err := w.gateway.SearchFlights(ctx, call.Args)
	if err != nil {
		w.machine.ReportToolReturn(ctx, NodeExecuteSearch, "search", true)
		w.logger.Warn("flight search failed", "call_id", call.ID, "err", err)
		failure := domain.ToolResultMessage(call.ID, "flight search failed: "+err.Error(), true)
		return runtime.Transition(NodeReasoning, func(s *state) {
			s.PendingToolCall.Status = domain.ToolCallFailed
			s.Messages = append(s.Messages, failure)
		}), nil
	}
	w.machine.ReportToolReturn(ctx, NodeExecuteSearch, "search", false)

	twoWay := call.Args.TripType == domain.TripTwoWay
	if len(result.DepartOffers) != domain.OptionsPerLeg {
		return command{}, domain.Contractf(NodeExecuteSearch, "gateway returned %d departure offers", len(result.DepartOffers))
	}
	if twoWay && len(result.ReturnOffers) != domain.OptionsPerLeg {
		return command{}, domain.Contractf(NodeExecuteSearch, "gateway returned %d return offers for a two-way trip", len(result.ReturnOffers))
	}
	if !twoWay && len(result.ReturnOffers) != 0 {
		return command{}, domain.Contractf(NodeExecuteSearch, "gateway returned return offers for a one-way trip")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return command{}, fmt.Errorf("encode search result: %w", err)
	}
	received := domain.ToolResultMessage(call.ID, string(payload), false)

	return runtime.Transition(NodeSelectDeparture, func(s *state) {
		s.PendingToolCall.Status = domain.ToolCallCompleted
		s.Messages = append(s.Messages, received)
		s.DepartOptions = result.DepartOffers
		if twoWay {
			s.ReturnOptions = result.ReturnOffers
		}
		s.NextStep = domain.StepTicketPurchase
	}).Emit(domain.AssistantMessage(searchDone)), nil
}

func (w *Workflow) selectDeparture(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if st.DepartOptions == nil {
		return command{}, domain.Contractf(NodeSelectDeparture, "no retrieved departure options")
	}

	prompt := domain.AssistantMessage(selectionPrompt(domain.LegDepart, st.DepartOptions))
	if !in.External {
		return runtime.Suspend[*state](nil).Emit(prompt), nil
	}

	idx, ok := parseChoice(in.Text, len(st.DepartOptions))
	if !ok {
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(invalidSelection), prompt), nil
	}

	offer := st.DepartOptions[idx]
	next := NodeConfirmSelection
	if len(st.ReturnOptions) > 0 {
		next = NodeSelectReturn
	}
	return runtime.Transition(next, func(s *state) {
		chosen := offer
		s.SelectedDepart = &chosen
	}), nil
}

func (w *Workflow) selectReturn(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if st.ReturnOptions == nil {
		return command{}, domain.Contractf(NodeSelectReturn, "no retrieved return options")
	}

	prompt := domain.AssistantMessage(selectionPrompt(domain.LegReturn, st.ReturnOptions))
	if !in.External {
		return runtime.Suspend[*state](nil).Emit(prompt), nil
	}

	idx, ok := parseChoice(in.Text, len(st.ReturnOptions))
	if !ok {
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(invalidSelection), prompt), nil
	}

	offer := st.ReturnOptions[idx]
	return runtime.Transition(NodeConfirmSelection, func(s *state) {
		chosen := offer
		s.SelectedReturn = &chosen
	}), nil
}

// confirmSelection lets the user accept the pair, redo the selection over
// the same options, or abandon the attempt for a fresh search.
func (w *Workflow) confirmSelection(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if st.SelectedDepart == nil {
		return command{}, domain.Contractf(NodeConfirmSelection, "no departure selection to confirm")
	}

	prompt := domain.AssistantMessage(confirmationPrompt(st.SelectedDepart, st.SelectedReturn))
	if !in.External {
		return runtime.Suspend[*state](nil).Emit(prompt), nil
	}

	switch strings.TrimSpace(in.Text) {
	case "1":
		return runtime.Transition[*state](NodePolicyCheck, nil), nil
	case "0":
		return runtime.Transition(NodeSelectDeparture, func(s *state) {
			s.SelectedDepart = nil
			s.SelectedReturn = nil
		}), nil
	case "2":
		return w.restartSearch(), nil
	default:
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(invalidConfirm), prompt), nil
	}
}

// policyCheck evaluates both legs against company policy. Compliance
// routes straight to purchase; any violation surfaces every violating
// leg's details together, then suspends on the escalate/revise/restart
// menu.
func (w *Workflow) policyCheck(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if st.SelectedDepart == nil {
		return command{}, domain.Contractf(NodePolicyCheck, "no departure selection to check")
	}

	if st.Violations == nil {
		violations, err := w.checkLegs(ctx, st)
		if err != nil {
			return command{}, err
		}
		if len(violations) == 0 {
			return runtime.Transition[*state](NodePurchase, nil).Emit(domain.AssistantMessage(policyOK)), nil
		}
		return runtime.Suspend(func(s *state) {
			s.Violations = violations
		}).Emit(domain.AssistantMessage(violationReport(violations))), nil
	}

	menu := domain.AssistantMessage(violationReport(st.Violations))
	if !in.External {
		return runtime.Suspend[*state](nil).Emit(menu), nil
	}

	switch strings.TrimSpace(in.Text) {
	case "1":
		return runtime.Transition(NodeEscalationNote, func(s *state) {
			s.NextStep = domain.StepManagerEscalation
		}), nil
	case "0":
		return runtime.Transition(NodeSelectDeparture, func(s *state) {
			s.SelectedDepart = nil
			s.SelectedReturn = nil
			s.Violations = nil
		}), nil
	case "2":
		return w.restartSearch(), nil
	default:
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(invalidPolicy), menu), nil
	}
}

func (w *Workflow) checkLegs(ctx context.Context, st *state) ([]domain.Violation, error) {
	legs := []struct {
		leg   domain.Leg
		offer *domain.Offer
	}{
		{domain.LegDepart, st.SelectedDepart},
		{domain.LegReturn, st.SelectedReturn},
	}

	var violations []domain.Violation
	for _, l := range legs {
		if l.offer == nil {
			continue
		}
		w.machine.ReportToolCall(ctx, NodePolicyCheck, "check_policy")
		report, err := w.gateway.CheckPolicy(ctx, *l.offer)
		if err != nil {
			w.machine.ReportToolReturn(ctx, NodePolicyCheck, "check_policy", true)
			return nil, fmt.Errorf("policy check for %s leg: %w", l.leg, err)
		}
		w.machine.ReportToolReturn(ctx, NodePolicyCheck, "check_policy", false)
		if !report.Complies {
			violations = append(violations, domain.Violation{
				Leg:        l.leg,
				FlightCode: l.offer.FlightCode,
				Details:    report.Details,
			})
		}
	}
	return violations, nil
}

// escalationNote collects an optional free-text message for the approver.
// An empty submission skips the note.
func (w *Workflow) escalationNote(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if !in.External {
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(notePrompt)), nil
	}
	note := strings.TrimSpace(in.Text)
	return runtime.Transition(NodeEscalationReview, func(s *state) {
		s.EscalationNote = note
	}), nil
}

// escalationReview is the final gate before contacting the manager.
func (w *Workflow) escalationReview(ctx context.Context, st *state, in runtime.Input) (command, error) {
	prompt := domain.AssistantMessage(escalationReviewPrompt(st.EscalationNote))
	if !in.External {
		return runtime.Suspend[*state](nil).Emit(prompt), nil
	}

	switch strings.TrimSpace(in.Text) {
	case "1":
		return runtime.Transition[*state](NodeEscalate, nil), nil
	case "0":
		return runtime.Transition(NodeSelectDeparture, func(s *state) {
			s.SelectedDepart = nil
			s.SelectedReturn = nil
			s.Violations = nil
			s.NextStep = domain.StepTicketPurchase
		}), nil
	case "2":
		return w.restartSearch(), nil
	case "3":
		return runtime.Transition[*state](NodeEscalationNote, nil), nil
	default:
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(invalidEscalate), prompt), nil
	}
}

// purchase issues the tickets. A transient gateway failure is reported to
// the user and the node re-invoked with identical inputs on the next turn;
// it never silently moves forward or drops the attempt.
func (w *Workflow) purchase(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if err := w.checkActionGate(NodePurchase, st); err != nil {
		return command{}, err
	}
	if st.Violations != nil {
		return command{}, domain.Contractf(NodePurchase, "purchase attempted with unresolved policy violations")
	}

	req := ports.PurchaseRequest{
		Depart:   *st.SelectedDepart,
		Return:   st.SelectedReturn,
		Traveler: st.traveler,
	}

	w.machine.ReportToolCall(ctx, NodePurchase, "purchase")
	result, err := w.gateway.PurchaseTickets(ctx, req)
	if err != nil {
		w.machine.ReportToolReturn(ctx, NodePurchase, "purchase", true)
		w.logger.Warn("ticket purchase failed", "err", err)
		notice := fmt.Sprintf("An error occurred while purchasing your tickets: %v.\nSend any message to retry.", err)
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(notice)), nil
	}
	w.machine.ReportToolReturn(ctx, NodePurchase, "purchase", false)

	args := st.PendingToolCall.Args
	completion := domain.SystemMessage(bookingCompleteMessage(args, &result.DepartTicket, result.ReturnTicket))
	return runtime.Transition(NodeReasoning, func(s *state) {
		depart := result.DepartTicket
		s.PurchasedDepart = &depart
		s.PurchasedReturn = result.ReturnTicket
		s.Completed = true
		s.Messages = append(s.Messages, completion)
	}).Emit(domain.AssistantMessage(purchaseSummary(&result.DepartTicket, result.ReturnTicket))), nil
}

// escalate sends the exception request to the manager, with the same
// retry-on-next-turn policy as purchase.
func (w *Workflow) escalate(ctx context.Context, st *state, in runtime.Input) (command, error) {
	if err := w.checkActionGate(NodeEscalate, st); err != nil {
		return command{}, err
	}
	if st.NextStep != domain.StepManagerEscalation {
		return command{}, domain.Contractf(NodeEscalate, "entered with next step %s", st.NextStep)
	}

	req := ports.EscalationRequest{
		Depart:   *st.SelectedDepart,
		Return:   st.SelectedReturn,
		Note:     st.EscalationNote,
		Traveler: st.traveler,
	}

	w.machine.ReportToolCall(ctx, NodeEscalate, "escalate")
	ack, err := w.gateway.EscalateToManager(ctx, req)
	if err == nil && !ack {
		err = fmt.Errorf("escalation was not acknowledged")
	}
	if err != nil {
		w.machine.ReportToolReturn(ctx, NodeEscalate, "escalate", true)
		w.logger.Warn("manager escalation failed", "err", err)
		notice := fmt.Sprintf("An error occurred while sending your request: %v.\nSend any message to retry.", err)
		return runtime.Suspend[*state](nil).Emit(domain.AssistantMessage(notice)), nil
	}
	w.machine.ReportToolReturn(ctx, NodeEscalate, "escalate", false)

	args := st.PendingToolCall.Args
	completion := domain.SystemMessage(escalationCompleteMessage(args, st.SelectedDepart, st.SelectedReturn))
	return runtime.Transition(NodeReasoning, func(s *state) {
		s.Completed = true
		s.Messages = append(s.Messages, completion)
	}).Emit(domain.AssistantMessage(escalationSummary(st.EscalationNote))), nil
}

// checkActionGate enforces gate soundness for the side-effecting terminal
// nodes: a completed search and a departure selection drawn from it.
func (w *Workflow) checkActionGate(node domain.NodeID, st *state) error {
	if st.PendingToolCall == nil || st.PendingToolCall.Status != domain.ToolCallCompleted {
		return domain.Contractf(node, "reached without a completed search")
	}
	if st.SelectedDepart == nil {
		return domain.Contractf(node, "reached without a departure selection")
	}
	return nil
}

// restartSearch abandons the current attempt: all retrieved options and
// selections are cleared and a synthetic user turn re-enters the
// reasoning step to start a new tool-call cycle.
func (w *Workflow) restartSearch() command {
	restart := domain.UserMessage(restartMessage)
	return runtime.Transition(NodeReasoning, func(s *state) {
		s.ResetSearch()
		s.Messages = append(s.Messages, restart)
	})
}

// parseChoice validates a 1-based numeric menu choice.
func parseChoice(input string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}
