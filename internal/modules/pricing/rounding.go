// README: Minimum fare and the organization rounding rule, applied last.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApplyRounding rounds price to a multiple of the rule step. A missing step or NONE is a no-op.
func ApplyRounding(price decimal.Decimal, r RoundingRule) decimal.Decimal {
	if !r.Step.IsPositive() {
		return price
	}
	units := price.Div(r.Step)
	switch r.Mode {
	case RoundingNearest:
		units = units.Round(0)
	case RoundingUp:
		units = units.Ceil()
	case RoundingDown:
		units = units.Floor()
	default:
		return price
	}
	return units.Mul(r.Step)
}

func minimumFareStep(minimum *decimal.Decimal) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		if minimum == nil || !price.LessThan(*minimum) {
			return price, nil
		}
		m := *minimum
		return m, &AppliedRule{
			Type:        RuleMinimumFare,
			Description: fmt.Sprintf("raised to minimum fare %s", m.StringFixed(2)),
			Amount:      &m,
		}
	}
}

// roundingStep works on the cent-rounded price so the rule only records visible changes.
// A result below the minimum fare is rounded up to the step instead.
func roundingStep(r RoundingRule, minimum *decimal.Decimal) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		cents := price.Round(2)
		mode := r.Mode
		next := ApplyRounding(cents, r)
		if minimum != nil && next.LessThan(*minimum) {
			mode = RoundingUp
			next = ApplyRounding(cents, RoundingRule{Mode: RoundingUp, Step: r.Step})
		}
		if next.Equal(cents) {
			return price, nil
		}
		return next, &AppliedRule{
			Type:        RuleRounding,
			Description: fmt.Sprintf("rounded %s to step %s", mode, r.Step),
		}
	}
}
