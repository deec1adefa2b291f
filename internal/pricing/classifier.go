package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/pkg/enums"
)

// Verdict pairs the classification with the seller-facing message. Rendering
// (badge color, placement) is the caller's concern.
type Verdict struct {
	Verdict enums.PriceVerdict `json:"verdict"`
	Message string             `json:"message,omitempty"`
}

// Classify compares an asking price against the lowest market price for the
// same product and size. A nil market price means no competing listings
// exist, which yields a neutral verdict rather than a claim either way.
// Matching the market price exactly is also neutral: the seller neither
// undercuts nor overprices.
func Classify(price decimal.Decimal, marketLowest *decimal.Decimal) Verdict {
	if marketLowest == nil {
		return Verdict{Verdict: enums.PriceVerdictNeutral}
	}
	switch {
	case price.LessThan(*marketLowest):
		return Verdict{
			Verdict: enums.PriceVerdictLowest,
			Message: fmt.Sprintf("the new lowest price will be %s", price),
		}
	case price.GreaterThan(*marketLowest):
		return Verdict{
			Verdict: enums.PriceVerdictHigher,
			Message: "your price is higher than the lowest price",
		}
	default:
		return Verdict{Verdict: enums.PriceVerdictNeutral}
	}
}
