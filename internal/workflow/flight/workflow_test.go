package flight_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LamiKaan/travel-assistant/internal/reason"
	"github.com/LamiKaan/travel-assistant/internal/runtime"
	"github.com/LamiKaan/travel-assistant/internal/workflow/flight"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

// stubGateway serves fixed offers so tests control the policy outcome.
type stubGateway struct {
	result      ports.SearchResult
	searchErr   error
	purchaseErr error
	escalateErr error

	searches  int
	purchases int
	escalates int
}

func (g *stubGateway) SearchFlights(ctx context.Context, args domain.SearchArgs) (ports.SearchResult, error) {
	g.searches++
	if g.searchErr != nil {
		err := g.searchErr
		g.searchErr = nil
		return ports.SearchResult{}, err
	}
	result := g.result
	if args.TripType == domain.TripOneWay {
		result.ReturnOffers = nil
	}
	return result, nil
}

func (g *stubGateway) PurchaseTickets(ctx context.Context, req ports.PurchaseRequest) (ports.PurchaseResult, error) {
	g.purchases++
	if g.purchaseErr != nil {
		err := g.purchaseErr
		g.purchaseErr = nil
		return ports.PurchaseResult{}, err
	}
	result := ports.PurchaseResult{
		DepartTicket: domain.Ticket{Offer: req.Depart, SeatNumber: 21, ConfirmationCode: "X36Q9C"},
	}
	if req.Return != nil {
		result.ReturnTicket = &domain.Ticket{Offer: *req.Return, SeatNumber: 22, ConfirmationCode: "H62Y8A"}
	}
	return result, nil
}

func (g *stubGateway) EscalateToManager(ctx context.Context, req ports.EscalationRequest) (bool, error) {
	g.escalates++
	if g.escalateErr != nil {
		err := g.escalateErr
		g.escalateErr = nil
		return false, err
	}
	return true, nil
}

func (g *stubGateway) CheckPolicy(ctx context.Context, offer domain.Offer) (domain.PolicyReport, error) {
	if offer.Price > 2000 || offer.CabinClass != "Economy" {
		return domain.PolicyReport{Details: "outside company policy"}, nil
	}
	return domain.PolicyReport{Complies: true}, nil
}

func economyOffers(prefix string) []domain.Offer {
	offers := make([]domain.Offer, 3)
	for i := range offers {
		offers[i] = domain.Offer{
			Airline:       "THY",
			DepartureTime: "09:00",
			ArrivalTime:   "10:15",
			Duration:      "1h 15m",
			CabinClass:    "Economy",
			Price:         1000 + 500*i,
			FlightCode:    fmt.Sprintf("%s%d", prefix, 101+i),
		}
	}
	return offers
}

func compliantGateway() *stubGateway {
	return &stubGateway{result: ports.SearchResult{
		DepartOffers: economyOffers("TK"),
		ReturnOffers: economyOffers("PC"),
	}}
}

func searchArgs(tripType domain.TripType) domain.SearchArgs {
	args := domain.SearchArgs{
		FromCity:   "Ankara",
		ToCity:     "Izmir",
		TripType:   tripType,
		DepartDate: "2025-06-10",
	}
	if tripType == domain.TripTwoWay {
		args.ReturnDate = "2025-06-15"
	}
	return args
}

func traveler() domain.Traveler {
	return domain.Traveler{
		Contact: domain.Contact{Name: "Kaan", ID: 10987654321, Email: "kaan@example.com"},
		Manager: domain.Contact{Name: "Ali", ID: 12345678910, Email: "ali@example.com"},
	}
}

func enter(t *testing.T, w *flight.Workflow, fs *domain.FlightState) flight.Outcome {
	t.Helper()
	out, err := w.Run(context.Background(), fs, traveler(), runtime.Input{})
	require.NoError(t, err)
	return out
}

func send(t *testing.T, w *flight.Workflow, fs *domain.FlightState, text string) flight.Outcome {
	t.Helper()
	out, err := w.Run(context.Background(), fs, traveler(), runtime.Input{Text: text, External: true})
	require.NoError(t, err)
	return out
}

func contents(msgs []domain.Message) string {
	var all string
	for _, m := range msgs {
		all += m.Content + "\n"
	}
	return all
}

// startAttempt drives a fresh state through reasoning and the approval
// gate so individual tests can begin at the post-search menus.
func startAttempt(t *testing.T, gw ports.ToolGateway, tripType domain.TripType, extraSteps ...ports.Reasoning) (*flight.Workflow, *domain.FlightState) {
	t.Helper()
	steps := append([]ports.Reasoning{reason.Search("call_1", searchArgs(tripType))}, extraSteps...)
	w := flight.New(gw, reason.NewScripted(steps...))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("I need a flight from Ankara to Izmir.")})

	out := enter(t, w, fs)
	require.False(t, out.Done)
	require.Equal(t, flight.NodeHumanReview, fs.Node)

	out = send(t, w, fs, "1")
	require.False(t, out.Done)
	require.Equal(t, flight.NodeSelectDeparture, fs.Node)
	return w, fs
}

func TestGreetingSuspendsAtReasoning(t *testing.T) {
	w := flight.New(compliantGateway(), reason.NewScripted(reason.Reply("Hello! Where would you like to fly?")))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("Hello.")})

	out := enter(t, w, fs)
	require.False(t, out.Done)
	assert.Equal(t, flight.NodeReasoning, fs.Node)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "Hello! Where would you like to fly?", out.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, domain.LastMessage(fs.Messages).Role)
}

func TestApprovalGate(t *testing.T) {
	gw := compliantGateway()
	w := flight.New(gw, reason.NewScripted(reason.Search("call_1", searchArgs(domain.TripTwoWay))))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("Two-way Ankara to Izmir, June 10 to 15.")})

	out := enter(t, w, fs)
	require.Equal(t, flight.NodeHumanReview, fs.Node)
	assert.Contains(t, contents(out.Messages), "Ankara")
	require.NotNil(t, fs.PendingToolCall)
	assert.Equal(t, domain.ToolCallPending, fs.PendingToolCall.Status)
	assert.Zero(t, gw.searches, "no search may run before approval")

	// Invalid input re-prompts and mutates nothing.
	before := len(fs.Messages)
	out = send(t, w, fs, "yes please")
	assert.Equal(t, flight.NodeHumanReview, fs.Node)
	assert.Equal(t, domain.ToolCallPending, fs.PendingToolCall.Status)
	assert.Len(t, fs.Messages, before)
	assert.Contains(t, contents(out.Messages), "Invalid choice")
	assert.Zero(t, gw.searches)

	out = send(t, w, fs, "1")
	assert.Equal(t, 1, gw.searches)
	assert.Equal(t, domain.ToolCallCompleted, fs.PendingToolCall.Status)
	assert.Equal(t, domain.StepTicketPurchase, fs.NextStep)
	assert.Len(t, fs.DepartOptions, domain.OptionsPerLeg)
	assert.Len(t, fs.ReturnOptions, domain.OptionsPerLeg)
	assert.Equal(t, flight.NodeSelectDeparture, fs.Node)
	assert.Contains(t, contents(out.Messages), "flights I found")
}

func TestApprovalRejection(t *testing.T) {
	gw := compliantGateway()
	w := flight.New(gw, reason.NewScripted(
		reason.Search("call_1", searchArgs(domain.TripTwoWay)),
		reason.Reply("Understood. What would you like to change?"),
	))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("Two-way Ankara to Izmir.")})

	enter(t, w, fs)
	out := send(t, w, fs, "0")

	assert.Zero(t, gw.searches, "rejected call must never execute")
	assert.Equal(t, domain.ToolCallRejected, fs.PendingToolCall.Status)
	assert.Equal(t, flight.NodeReasoning, fs.Node)
	assert.Contains(t, contents(out.Messages), "What would you like to change?")

	var sawRejection bool
	for _, m := range fs.Messages {
		if m.Role == domain.RoleTool && m.IsError {
			sawRejection = true
			assert.Equal(t, "call_1", m.ToolCallID)
		}
	}
	assert.True(t, sawRejection, "rejection must be recorded as an error tool result")
}

func TestSingleToolCallInvariant(t *testing.T) {
	w := flight.New(compliantGateway(), reason.NewScripted(reason.Search("call_2", searchArgs(domain.TripOneWay))))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("Find me another flight.")})
	fs.PendingToolCall = &domain.ToolCall{ID: "call_1", Name: "search_flights", Status: domain.ToolCallPending}

	_, err := w.Run(context.Background(), fs, traveler(), runtime.Input{})
	require.Error(t, err)
	var contractErr *domain.ContractError
	assert.True(t, errors.As(err, &contractErr))
}

func TestSearchFailureReturnsToReasoning(t *testing.T) {
	gw := compliantGateway()
	gw.searchErr = errors.New("inventory down")
	w := flight.New(gw, reason.NewScripted(
		reason.Search("call_1", searchArgs(domain.TripTwoWay)),
		reason.Reply("The search failed, shall we try again?"),
	))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("Two-way Ankara to Izmir.")})

	enter(t, w, fs)
	out := send(t, w, fs, "1")

	assert.Equal(t, domain.ToolCallFailed, fs.PendingToolCall.Status)
	assert.Nil(t, fs.DepartOptions)
	assert.Equal(t, flight.NodeReasoning, fs.Node)
	assert.Contains(t, contents(out.Messages), "shall we try again?")
}

func TestOneWaySkipsReturnSelection(t *testing.T) {
	w, fs := startAttempt(t, compliantGateway(), domain.TripOneWay)
	require.Nil(t, fs.ReturnOptions)

	out := send(t, w, fs, "1")
	assert.Equal(t, flight.NodeConfirmSelection, fs.Node)
	assert.NotNil(t, fs.SelectedDepart)
	assert.Nil(t, fs.SelectedReturn)
	assert.Contains(t, contents(out.Messages), "confirm")
}

func TestSelectionRePromptKeepsState(t *testing.T) {
	w, fs := startAttempt(t, compliantGateway(), domain.TripTwoWay)

	out := send(t, w, fs, "7")
	assert.Equal(t, flight.NodeSelectDeparture, fs.Node)
	assert.Nil(t, fs.SelectedDepart)
	assert.Contains(t, contents(out.Messages), "Invalid choice")

	send(t, w, fs, "2")
	require.NotNil(t, fs.SelectedDepart)
	assert.Equal(t, fs.DepartOptions[1], *fs.SelectedDepart)
	assert.Equal(t, flight.NodeSelectReturn, fs.Node)
}

func TestRoundTripPurchase(t *testing.T) {
	gw := compliantGateway()
	w, fs := startAttempt(t, gw, domain.TripTwoWay)

	send(t, w, fs, "1")
	require.Equal(t, flight.NodeSelectReturn, fs.Node)
	send(t, w, fs, "1")
	require.Equal(t, flight.NodeConfirmSelection, fs.Node)

	out := send(t, w, fs, "1")
	require.True(t, out.Done)
	require.NotNil(t, out.Handover)

	assert.Equal(t, 1, gw.purchases)
	assert.True(t, fs.Completed)
	assert.Equal(t, searchArgs(domain.TripTwoWay), out.Handover.Trip)
	require.NotNil(t, out.Handover.DepartTicket)
	require.NotNil(t, out.Handover.ReturnTicket)
	assert.False(t, out.Handover.EscalationPending)
	assert.Equal(t, "TK101", out.Handover.DepartTicket.FlightCode)
	assert.Equal(t, "PC101", out.Handover.ReturnTicket.FlightCode)
	assert.Contains(t, contents(out.Messages), "comply with the company policy")
	assert.Contains(t, contents(out.Messages), "booking is complete")
}

func TestRedoSelectionsFromConfirm(t *testing.T) {
	w, fs := startAttempt(t, compliantGateway(), domain.TripTwoWay)
	send(t, w, fs, "1")
	send(t, w, fs, "1")
	require.Equal(t, flight.NodeConfirmSelection, fs.Node)

	out := send(t, w, fs, "0")
	assert.Equal(t, flight.NodeSelectDeparture, fs.Node)
	assert.Nil(t, fs.SelectedDepart)
	assert.Nil(t, fs.SelectedReturn)
	assert.NotNil(t, fs.DepartOptions, "retrieved options survive a redo")
	assert.Contains(t, contents(out.Messages), "departure")
}

func TestAbandonAndRestart(t *testing.T) {
	w, fs := startAttempt(t, compliantGateway(), domain.TripTwoWay,
		reason.Reply("Sure, what should we change?"))
	send(t, w, fs, "1")
	send(t, w, fs, "1")
	require.Equal(t, flight.NodeConfirmSelection, fs.Node)

	out := send(t, w, fs, "2")
	assert.Equal(t, flight.NodeReasoning, fs.Node)
	assert.Nil(t, fs.DepartOptions)
	assert.Nil(t, fs.ReturnOptions)
	assert.Nil(t, fs.SelectedDepart)
	assert.Nil(t, fs.Violations)
	assert.Equal(t, domain.StepFlightSearch, fs.NextStep)
	assert.Contains(t, contents(out.Messages), "what should we change?")
}

func violatingGateway() *stubGateway {
	offers := func(prefix string) []domain.Offer {
		out := economyOffers(prefix)
		out[1].CabinClass = "Business"
		out[1].Price = 5000
		return out
	}
	return &stubGateway{result: ports.SearchResult{
		DepartOffers: offers("TK"),
		ReturnOffers: offers("PC"),
	}}
}

func TestPolicyViolationReportsBothLegs(t *testing.T) {
	w, fs := startAttempt(t, violatingGateway(), domain.TripTwoWay)
	send(t, w, fs, "2")
	send(t, w, fs, "2")
	require.Equal(t, flight.NodeConfirmSelection, fs.Node)

	out := send(t, w, fs, "1")
	require.Equal(t, flight.NodePolicyCheck, fs.Node)
	require.Len(t, fs.Violations, 2)

	report := contents(out.Messages)
	assert.Contains(t, report, "TK102")
	assert.Contains(t, report, "PC102")
	assert.Equal(t, domain.LegDepart, fs.Violations[0].Leg)
	assert.Equal(t, domain.LegReturn, fs.Violations[1].Leg)
}

func TestEscalationPath(t *testing.T) {
	gw := violatingGateway()
	w, fs := startAttempt(t, gw, domain.TripTwoWay)
	send(t, w, fs, "2")
	send(t, w, fs, "2")
	send(t, w, fs, "1")
	require.Equal(t, flight.NodePolicyCheck, fs.Node)

	out := send(t, w, fs, "1")
	require.Equal(t, flight.NodeEscalationNote, fs.Node)
	assert.Equal(t, domain.StepManagerEscalation, fs.NextStep)
	assert.Contains(t, contents(out.Messages), "additional message")

	out = send(t, w, fs, "The conference dates are fixed.")
	require.Equal(t, flight.NodeEscalationReview, fs.Node)
	assert.Equal(t, "The conference dates are fixed.", fs.EscalationNote)

	out = send(t, w, fs, "1")
	require.True(t, out.Done)
	require.NotNil(t, out.Handover)
	assert.Equal(t, 1, gw.escalates)
	assert.Zero(t, gw.purchases, "escalation path must not purchase")
	assert.True(t, out.Handover.EscalationPending)
	assert.Equal(t, "The conference dates are fixed.", out.Handover.Note)
	require.NotNil(t, out.Handover.SelectedDepart)
	assert.Equal(t, "TK102", out.Handover.SelectedDepart.FlightCode)
}

func TestEscalationNoteCanBeSkipped(t *testing.T) {
	w, fs := startAttempt(t, violatingGateway(), domain.TripTwoWay)
	send(t, w, fs, "2")
	send(t, w, fs, "2")
	send(t, w, fs, "1")
	send(t, w, fs, "1")
	require.Equal(t, flight.NodeEscalationNote, fs.Node)

	send(t, w, fs, "")
	assert.Equal(t, flight.NodeEscalationReview, fs.Node)
	assert.Empty(t, fs.EscalationNote)
}

func TestReviseSelectionsAfterViolation(t *testing.T) {
	w, fs := startAttempt(t, violatingGateway(), domain.TripTwoWay)
	send(t, w, fs, "2")
	send(t, w, fs, "2")
	send(t, w, fs, "1")
	require.Len(t, fs.Violations, 2)

	out := send(t, w, fs, "0")
	assert.Equal(t, flight.NodeSelectDeparture, fs.Node)
	assert.Nil(t, fs.Violations)
	assert.Nil(t, fs.SelectedDepart)
	assert.Nil(t, fs.SelectedReturn)
	assert.Contains(t, contents(out.Messages), "departure")
}

func TestPurchaseFailureRetries(t *testing.T) {
	gw := compliantGateway()
	gw.purchaseErr = errors.New("reservation system down")
	w, fs := startAttempt(t, gw, domain.TripTwoWay)
	send(t, w, fs, "1")
	send(t, w, fs, "1")

	out := send(t, w, fs, "1")
	require.False(t, out.Done)
	assert.Equal(t, flight.NodePurchase, fs.Node)
	assert.Equal(t, 1, gw.purchases)
	assert.False(t, fs.Completed)
	assert.Contains(t, contents(out.Messages), "retry")

	out = send(t, w, fs, "ok")
	require.True(t, out.Done)
	assert.Equal(t, 2, gw.purchases)
	require.NotNil(t, out.Handover.DepartTicket)
}

func TestEscalationFailureRetries(t *testing.T) {
	gw := violatingGateway()
	gw.escalateErr = errors.New("approval service down")
	w, fs := startAttempt(t, gw, domain.TripTwoWay)
	send(t, w, fs, "2")
	send(t, w, fs, "2")
	send(t, w, fs, "1")
	send(t, w, fs, "1")
	send(t, w, fs, "")

	out := send(t, w, fs, "1")
	require.False(t, out.Done)
	assert.Equal(t, flight.NodeEscalate, fs.Node)
	assert.Equal(t, 1, gw.escalates)

	out = send(t, w, fs, "retry")
	require.True(t, out.Done)
	assert.Equal(t, 2, gw.escalates)
	assert.True(t, out.Handover.EscalationPending)
}

func TestHooksObserveToolCalls(t *testing.T) {
	var ops []string
	hooks := domain.LifecycleHooks{
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			ops = append(ops, e.Operation)
		},
	}
	gw := compliantGateway()
	steps := []ports.Reasoning{reason.Search("call_1", searchArgs(domain.TripOneWay))}
	w := flight.New(gw, reason.NewScripted(steps...), flight.WithHooks(hooks))
	fs := domain.NewFlightState([]domain.Message{domain.UserMessage("One-way Ankara to Izmir.")})

	enter(t, w, fs)
	send(t, w, fs, "1")
	send(t, w, fs, "1")
	out := send(t, w, fs, "1")
	require.True(t, out.Done)

	assert.Equal(t, []string{"search", "check_policy", "purchase"}, ops)
}
