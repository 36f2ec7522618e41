// README: Multiplier stacking as a left fold: zone multiplier, then advanced rates, then seasonal.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

// step turns the running price into the next one. A nil rule means the step did not apply.
type step func(price decimal.Decimal) (decimal.Decimal, *AppliedRule)

func fold(price decimal.Decimal, steps []step) (decimal.Decimal, []AppliedRule) {
	var applied []AppliedRule
	for _, s := range steps {
		next, rule := s(price)
		if rule == nil {
			continue
		}
		rule.PriceBefore = types.RoundMoney(price)
		rule.PriceAfter = types.RoundMoney(next)
		applied = append(applied, *rule)
		price = next
	}
	return price, applied
}

func zoneStep(multiplier decimal.Decimal, codes []string) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		if multiplier.Equal(one) {
			return price, nil
		}
		m := multiplier
		return price.Mul(m), &AppliedRule{
			Type:        RuleZoneMultiplier,
			Description: fmt.Sprintf("zone multiplier x%s %v", m.String(), codes),
			Multiplier:  &m,
		}
	}
}

func advancedStep(r AdvancedRate, rc ruleContext) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		if !r.matches(rc) {
			return price, nil
		}
		next, ok := r.apply(price)
		if !ok {
			return price, nil
		}
		v := r.Value
		rule := &AppliedRule{Type: RuleAdvancedRate, RuleID: r.ID, Description: r.Name}
		if r.AdjustmentType == AdjustFixedAmount {
			rule.Amount = &v
		} else {
			rule.Percentage = &v
		}
		return next, rule
	}
}

func seasonalStep(m SeasonalMultiplier, rc ruleContext) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		if !m.matches(rc) {
			return price, nil
		}
		factor := m.Multiplier
		return price.Mul(factor), &AppliedRule{
			Type:        RuleSeasonalMultiplier,
			RuleID:      m.ID,
			Description: m.Name,
			Multiplier:  &factor,
		}
	}
}

// multiplierSteps orders each rule family by ascending priority, keeping input order on ties.
func multiplierSteps(zoneMultiplier decimal.Decimal, zoneCodes []string, rates []AdvancedRate, seasonal []SeasonalMultiplier, rc ruleContext) []step {
	rs := append([]AdvancedRate(nil), rates...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Priority < rs[j].Priority })
	ss := append([]SeasonalMultiplier(nil), seasonal...)
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].Priority < ss[j].Priority })

	steps := make([]step, 0, 1+len(rs)+len(ss))
	steps = append(steps, zoneStep(zoneMultiplier, zoneCodes))
	for _, r := range rs {
		steps = append(steps, advancedStep(r, rc))
	}
	for _, m := range ss {
		steps = append(steps, seasonalStep(m, rc))
	}
	return steps
}
