// README: Common money helpers used across modules. All amounts are fixed-point decimals.
package types

import "github.com/shopspring/decimal"

// Currency is the only currency the back office prices in.
const Currency = "EUR"

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
	Sixty   = decimal.NewFromInt(60)
)

// RoundMoney rounds half away from zero to cents. Only call it at output boundaries.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns d × pct / 100.
func Percent(d, pct decimal.Decimal) decimal.Decimal {
	return d.Mul(pct).Div(Hundred)
}

// Hours converts minutes to hours.
func Hours(minutes decimal.Decimal) decimal.Decimal {
	return minutes.Div(Sixty)
}

// Dec is a shorthand for decimal.NewFromFloat used by fixtures and defaults.
func Dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecPtr returns a pointer to Dec(f).
func DecPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// MaxDec returns the larger of a and b, preferring a on ties.
func MaxDec(a, b decimal.Decimal) decimal.Decimal {
	if b.GreaterThan(a) {
		return b
	}
	return a
}
