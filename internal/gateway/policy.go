package gateway

import (
	"context"
	"strings"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// Company travel policy.
const (
	// MaxPrice is the highest fare, in TL, that can be purchased without
	// a manager exception.
	MaxPrice = 2000
	// AllowedClass is the only cabin class that can be purchased without
	// a manager exception.
	AllowedClass = "Economy"
)

const (
	priceRule = "- Flights priced above 2000 TL cannot be selected; the allowed maximum is 2000 TL."
	classRule = "- 'Business' class flights cannot be selected; only 'Economy' class flights are allowed."
)

// CheckPolicy evaluates a single offer against the company policy. Both
// rules are checked so a violating offer reports every broken rule.
func (s *Simulator) CheckPolicy(ctx context.Context, offer domain.Offer) (domain.PolicyReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.PolicyReport{}, err
	}

	var broken []string
	if offer.Price > MaxPrice {
		broken = append(broken, priceRule)
	}
	if offer.CabinClass != AllowedClass {
		broken = append(broken, classRule)
	}

	if len(broken) > 0 {
		return domain.PolicyReport{Details: strings.Join(broken, "\n")}, nil
	}
	return domain.PolicyReport{Complies: true}, nil
}
