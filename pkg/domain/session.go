package domain

// NodeID names a workflow node. Node constants are declared by the
// workflow that owns them.
type NodeID string

// Intent is the classified goal of the ongoing conversation.
type Intent string

const (
	IntentNone   Intent = ""
	IntentFlight Intent = "flight"
	IntentCar    Intent = "car"
	IntentHotel  Intent = "hotel"
)

// Phase governs whether the flight workflow is (re)initialized on the next
// dispatch into it.
type Phase string

const (
	// PhaseInitial marks a session whose flight workflow has never run.
	PhaseInitial Phase = "initial"
	// PhaseResumed marks a session whose prior attempt concluded; the next
	// dispatch starts a fresh attempt over the same conversation history.
	PhaseResumed Phase = "resumed"
	// PhaseInProgress forwards new user turns into the open attempt.
	PhaseInProgress Phase = "in_progress"
)

// Contact identifies a person known to the external booking systems.
type Contact struct {
	Name  string `json:"name"`
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Traveler is the session's user identity plus the manager who handles
// escalations. Supplied once at session start, held for the session's life.
type Traveler struct {
	Contact
	Manager Contact `json:"manager"`
}

// Session is the full durable state of one conversation thread. It is
// owned exclusively by the engine, mutated only via declared node updates,
// and persisted after every step.
type Session struct {
	ID       string   `json:"id"`
	Traveler Traveler `json:"traveler"`

	// History is the user-facing conversation.
	History []Message `json:"history"`

	// TravelHistory is the trip reasoner's scoped history, kept separate
	// from the flight workflow's own messages.
	TravelHistory []Message `json:"travel_history"`

	Intent Intent       `json:"intent"`
	Flight *FlightState `json:"flight_attempt,omitempty"`
	Phase  Phase        `json:"attempt_phase"`

	// Node is the resume point within the trip workflow.
	Node NodeID `json:"node"`
}

// NewSession creates a clean session for the given identity.
func NewSession(id string, traveler Traveler) *Session {
	return &Session{
		ID:       id,
		Traveler: traveler,
		Phase:    PhaseInitial,
	}
}

// Clone returns a deep copy so stores can hand out snapshots that callers
// cannot mutate by pointer.
func (s *Session) Clone() *Session {
	out := *s
	out.History = append([]Message(nil), s.History...)
	out.TravelHistory = append([]Message(nil), s.TravelHistory...)
	if s.Flight != nil {
		f := *s.Flight
		f.Messages = append([]Message(nil), s.Flight.Messages...)
		f.DepartOptions = append([]Offer(nil), s.Flight.DepartOptions...)
		f.ReturnOptions = append([]Offer(nil), s.Flight.ReturnOptions...)
		f.Violations = append([]Violation(nil), s.Flight.Violations...)
		if s.Flight.PendingToolCall != nil {
			call := *s.Flight.PendingToolCall
			f.PendingToolCall = &call
		}
		f.SelectedDepart = cloneOffer(s.Flight.SelectedDepart)
		f.SelectedReturn = cloneOffer(s.Flight.SelectedReturn)
		f.PurchasedDepart = cloneTicket(s.Flight.PurchasedDepart)
		f.PurchasedReturn = cloneTicket(s.Flight.PurchasedReturn)
		out.Flight = &f
	}
	return &out
}

func cloneOffer(o *Offer) *Offer {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func cloneTicket(t *Ticket) *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
