package fees

import "github.com/shopspring/decimal"

// Schedule is the fee pair applied to every payout calculation. Percent is a
// fraction in [0,1]; Fixed is a flat per-sale deduction in currency units.
type Schedule struct {
	Percent decimal.Decimal `json:"fee_percent"`
	Fixed   decimal.Decimal `json:"fee_fixed"`
}

// CalculatePayout returns the seller payout for a sale price under the given
// schedule: price * (1 - percent) - fixed, rounded to cents and clamped at
// zero so a low-priced sale never produces a negative payout.
func CalculatePayout(price decimal.Decimal, schedule Schedule) decimal.Decimal {
	payout := price.
		Mul(decimal.NewFromInt(1).Sub(schedule.Percent)).
		Sub(schedule.Fixed).
		Round(2)
	if payout.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return payout
}
