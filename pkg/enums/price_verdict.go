package enums

// PriceVerdict classifies a seller's asking price against the lowest listed
// market price for the same product and size.
type PriceVerdict string

const (
	// PriceVerdictLowest means the asking price would become the new lowest offer.
	PriceVerdictLowest PriceVerdict = "lowest"
	// PriceVerdictHigher means the asking price is above the current lowest offer.
	PriceVerdictHigher PriceVerdict = "higher"
	// PriceVerdictNeutral means the price matches the market or no market data exists.
	PriceVerdictNeutral PriceVerdict = "neutral"
)

// String implements fmt.Stringer.
func (v PriceVerdict) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PriceVerdict.
func (v PriceVerdict) IsValid() bool {
	switch v {
	case PriceVerdictLowest, PriceVerdictHigher, PriceVerdictNeutral:
		return true
	default:
		return false
	}
}
