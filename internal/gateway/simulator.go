// Package gateway provides the simulated travel tool backends: flight
// search, ticket purchase, manager escalation and the company policy
// check. Offers are generated deterministically from the search
// parameters, so repeating a search returns the same inventory.
package gateway

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

type airline struct {
	name     string
	nameCode string
	// weight out of 20, mirroring the carriers' share of the route network
	weight int
}

var airlines = []airline{
	{"THY", "TK", 9},
	{"Pegasus", "PC", 7},
	{"AJet", "AJ", 3},
	{"SunExpress", "SE", 1},
}

var durationsMins = []int{70, 75, 80, 90, 95, 105}

var prices = map[string][]int{
	"Economy":  {1000, 1500, 2000, 2500},
	"Business": {2000, 3000, 4000, 5000},
}

const pnrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Simulator is an in-process ToolGateway backed by synthetic inventory.
type Simulator struct {
	mu     sync.Mutex
	seed   uint64
	rng    *rand.Rand
	logger *slog.Logger

	failSearch   int
	failPurchase int
	failEscalate int
}

// SimOption configures the Simulator.
type SimOption func(*Simulator)

// WithSeed fixes the seed used for seat and confirmation-code generation.
func WithSeed(seed uint64) SimOption {
	return func(s *Simulator) { s.seed = seed }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) SimOption {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSearchFailures makes the next n search calls fail.
func WithSearchFailures(n int) SimOption {
	return func(s *Simulator) { s.failSearch = n }
}

// WithPurchaseFailures makes the next n purchase calls fail.
func WithPurchaseFailures(n int) SimOption {
	return func(s *Simulator) { s.failPurchase = n }
}

// WithEscalationFailures makes the next n escalation calls fail.
func WithEscalationFailures(n int) SimOption {
	return func(s *Simulator) { s.failEscalate = n }
}

// NewSimulator builds a gateway with synthetic flight inventory.
func NewSimulator(opts ...SimOption) *Simulator {
	s := &Simulator{
		seed:   1,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed<<1|1))
	return s
}

var _ ports.ToolGateway = (*Simulator)(nil)

// SearchFlights returns three offers per requested leg. The same
// parameters always yield the same offers.
func (s *Simulator) SearchFlights(ctx context.Context, args domain.SearchArgs) (ports.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.SearchResult{}, err
	}
	s.mu.Lock()
	fail := s.failSearch > 0
	if fail {
		s.failSearch--
	}
	s.mu.Unlock()
	if fail {
		return ports.SearchResult{}, fmt.Errorf("flight inventory service unavailable")
	}

	result := ports.SearchResult{
		DepartOffers: offersFor(args.FromCity, args.ToCity, args.DepartDate),
	}
	if args.TripType == domain.TripTwoWay {
		result.ReturnOffers = offersFor(args.ToCity, args.FromCity, args.ReturnDate)
	}

	s.logger.Debug("flight search served",
		"from", args.FromCity, "to", args.ToCity, "trip_type", args.TripType)
	return result, nil
}

// PurchaseTickets issues one ticket per provided offer, assigning a seat
// and a confirmation code.
func (s *Simulator) PurchaseTickets(ctx context.Context, req ports.PurchaseRequest) (ports.PurchaseResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.PurchaseResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPurchase > 0 {
		s.failPurchase--
		return ports.PurchaseResult{}, fmt.Errorf("reservation system unavailable")
	}

	result := ports.PurchaseResult{DepartTicket: s.issueTicket(req.Depart)}
	if req.Return != nil {
		ret := s.issueTicket(*req.Return)
		result.ReturnTicket = &ret
	}

	s.logger.Info("tickets issued",
		"traveler", req.Traveler.Name,
		"depart_code", req.Depart.FlightCode,
		"confirmation", result.DepartTicket.ConfirmationCode)
	return result, nil
}

// EscalateToManager records the exception request and acknowledges it.
func (s *Simulator) EscalateToManager(ctx context.Context, req ports.EscalationRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failEscalate > 0 {
		s.failEscalate--
		return false, fmt.Errorf("approval service unavailable")
	}

	s.logger.Info("escalation sent",
		"traveler", req.Traveler.Name,
		"manager", req.Traveler.Manager.Name,
		"depart_code", req.Depart.FlightCode,
		"note", req.Note != "")
	return true, nil
}

// issueTicket assigns a seat in rows 20-100 and a six-character
// confirmation code. Callers hold s.mu.
func (s *Simulator) issueTicket(offer domain.Offer) domain.Ticket {
	code := make([]byte, 6)
	for i := range code {
		code[i] = pnrAlphabet[s.rng.IntN(len(pnrAlphabet))]
	}
	return domain.Ticket{
		Offer:            offer,
		SeatNumber:       20 + s.rng.IntN(81),
		ConfirmationCode: string(code),
	}
}

// offersFor generates the three offers for one leg from a generator
// seeded by the route and date. The middle offer is always Business
// class, the others Economy.
func offersFor(from, to, date string) []domain.Offer {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", normalizeCity(from), normalizeCity(to), date)
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	offers := make([]domain.Offer, 0, domain.OptionsPerLeg)
	for i := 0; i < domain.OptionsPerLeg; i++ {
		carrier := pickAirline(rng)
		depart := departureTime(rng)
		duration := durationsMins[rng.IntN(len(durationsMins))]

		class := "Economy"
		if i == 1 {
			class = "Business"
		}
		tariff := prices[class]

		offers = append(offers, domain.Offer{
			Airline:       carrier.name,
			DepartureTime: formatClock(depart),
			ArrivalTime:   formatClock(depart + duration),
			Duration:      formatDuration(duration),
			CabinClass:    class,
			Price:         tariff[rng.IntN(len(tariff))],
			FlightCode:    fmt.Sprintf("%s%d", carrier.nameCode, 101+rng.IntN(899)),
		})
	}
	return offers
}

func pickAirline(rng *rand.Rand) airline {
	n := rng.IntN(20)
	for _, a := range airlines {
		if n < a.weight {
			return a
		}
		n -= a.weight
	}
	return airlines[0]
}

// departureTime picks a minute-of-day on a 15-minute grid, with 70% of
// flights in the busy ranges 07:00-11:30 and 14:30-22:30.
func departureTime(rng *rand.Rand) int {
	busy := rng.IntN(10) < 7
	for {
		slot := rng.IntN(24 * 4) * 15
		inBusy := (slot >= 7*60 && slot <= 11*60+30) || (slot >= 14*60+30 && slot <= 22*60+30)
		if inBusy == busy {
			return slot
		}
	}
}

func formatClock(minuteOfDay int) string {
	minuteOfDay %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

func formatDuration(mins int) string {
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

func normalizeCity(city string) string {
	replacer := strings.NewReplacer(
		"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u", "â", "a", "î", "i", "û", "u",
		"Ç", "c", "Ğ", "g", "İ", "i", "Ö", "o", "Ş", "s", "Ü", "u", "Â", "a", "Î", "i", "Û", "u",
	)
	return strings.ToLower(replacer.Replace(strings.TrimSpace(city)))
}
