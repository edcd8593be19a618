package domain

// TripType distinguishes one-way from round trips.
type TripType string

const (
	TripOneWay TripType = "one-way"
	TripTwoWay TripType = "two-way"
)

// Leg identifies which half of a trip an offer or violation refers to.
type Leg string

const (
	LegDepart Leg = "depart"
	LegReturn Leg = "return"
)

// SearchArgs are the arguments of a flight search tool call.
type SearchArgs struct {
	FromCity   string   `json:"from_city" mapstructure:"from_city"`
	ToCity     string   `json:"to_city" mapstructure:"to_city"`
	TripType   TripType `json:"trip_type" mapstructure:"trip_type"`
	DepartDate string   `json:"depart_date" mapstructure:"depart_date"`
	ReturnDate string   `json:"return_date,omitempty" mapstructure:"return_date"`
}

// Offer is a single retrieved flight option.
type Offer struct {
	Airline       string `json:"airline"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Duration      string `json:"duration"`
	CabinClass    string `json:"cabin_class"`
	Price         int    `json:"price"`
	FlightCode    string `json:"flight_code"`
}

// Ticket is a purchased offer.
type Ticket struct {
	Offer
	SeatNumber       int    `json:"seat_number"`
	ConfirmationCode string `json:"confirmation_code"`
}

// PolicyReport is the outcome of checking one offer against company policy.
type PolicyReport struct {
	Complies bool   `json:"complies"`
	Details  string `json:"details,omitempty"`
}

// Violation records a non-compliant leg, kept in state across the
// escalate/revise/restart menu suspension.
type Violation struct {
	Leg        Leg    `json:"leg"`
	FlightCode string `json:"flight_code"`
	Details    string `json:"details"`
}

// Step is the next externally visible action of the booking attempt.
// It decides how the human review gate routes.
type Step string

const (
	StepFlightSearch      Step = "flight_search"
	StepTicketPurchase    Step = "ticket_purchase"
	StepManagerEscalation Step = "manager_escalation"
)

// OptionsPerLeg is the number of offers the gateway returns per requested
// leg; any other count is a gateway contract violation.
const OptionsPerLeg = 3

// FlightState holds one booking attempt end-to-end. It is created when the
// attempt starts and reset whenever the user abandons it to re-search.
type FlightState struct {
	// Messages is the flight assistant's own conversation history, kept
	// apart from the trip-level history to avoid context bleed.
	Messages []Message `json:"messages"`

	// PendingToolCall is the single in-flight tool call, if any.
	PendingToolCall *ToolCall `json:"pending_tool_call,omitempty"`

	NextStep Step `json:"next_step"`

	// Option lists are nil before a successful search and hold exactly
	// OptionsPerLeg offers afterwards. ReturnOptions stays nil for
	// one-way trips.
	DepartOptions []Offer `json:"depart_options,omitempty"`
	ReturnOptions []Offer `json:"return_options,omitempty"`

	SelectedDepart *Offer `json:"selected_depart,omitempty"`
	SelectedReturn *Offer `json:"selected_return,omitempty"`

	// Violations holds the findings of the last policy check while the
	// user decides between escalation, revision and a fresh search.
	Violations []Violation `json:"violations,omitempty"`

	EscalationNote string `json:"escalation_note,omitempty"`

	PurchasedDepart *Ticket `json:"purchased_depart,omitempty"`
	PurchasedReturn *Ticket `json:"purchased_return,omitempty"`

	Completed bool `json:"completed"`

	// Node is the resume point within the flight workflow.
	Node NodeID `json:"node"`
}

// NewFlightState starts a fresh booking attempt, optionally carrying over a
// prior attempt's conversation history.
func NewFlightState(history []Message) *FlightState {
	return &FlightState{
		Messages: history,
		NextStep: StepFlightSearch,
	}
}

// ResetSearch discards retrieved options, selections and violations so a
// new tool-call cycle can begin from the reasoning step.
func (f *FlightState) ResetSearch() {
	f.DepartOptions = nil
	f.ReturnOptions = nil
	f.SelectedDepart = nil
	f.SelectedReturn = nil
	f.Violations = nil
	f.NextStep = StepFlightSearch
}

// TripArgs returns the search arguments of the attempt's tool call, if one
// was recorded.
func (f *FlightState) TripArgs() *SearchArgs {
	if f.PendingToolCall == nil {
		return nil
	}
	args := f.PendingToolCall.Args
	return &args
}
