// README: Profitability tier and partner commission.
package pricing

import (
	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

type Tier string

const (
	TierGreen  Tier = "green"
	TierOrange Tier = "orange"
	TierRed    Tier = "red"
)

type Profitability struct {
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	Tier          Tier            `json:"tier"`
}

// MarginPercent is (price − cost) / price × 100, clamped to 0 when price is not positive.
func MarginPercent(price, totalCost decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(totalCost).Div(price).Mul(types.Hundred)
}

// TierFor is inclusive at each threshold.
func TierFor(marginPercent decimal.Decimal, t MarginThresholds) Tier {
	switch {
	case marginPercent.GreaterThanOrEqual(t.GreenPercent):
		return TierGreen
	case marginPercent.GreaterThanOrEqual(t.OrangePercent):
		return TierOrange
	}
	return TierRed
}

// CalculateProfitability picks the tier from the exact percentage. Only the reported figures
// are rounded to cents.
func CalculateProfitability(price, totalCost decimal.Decimal, t MarginThresholds) Profitability {
	pct := MarginPercent(price, totalCost)
	return Profitability{
		Margin:        types.RoundMoney(price.Sub(totalCost)),
		MarginPercent: types.RoundMoney(pct),
		Tier:          TierFor(pct, t),
	}
}

var maxCommissionPercent = decimal.NewFromInt(100)

type Commission struct {
	Percent   decimal.Decimal `json:"percent"`
	Amount    decimal.Decimal `json:"amount"`
	NetAmount decimal.Decimal `json:"netAmount"`
	// Effective figures are only set when the quote has an internal cost.
	GrossMarginPercent     *decimal.Decimal `json:"grossMarginPercent,omitempty"`
	EffectiveMargin        *decimal.Decimal `json:"effectiveMargin,omitempty"`
	EffectiveMarginPercent *decimal.Decimal `json:"effectiveMarginPercent,omitempty"`
	EffectiveTier          Tier             `json:"effectiveTier,omitempty"`
}

// CalculateCommission returns nil unless percent is positive. Percent is capped at 100.
func CalculateCommission(totalExclVat decimal.Decimal, percent *decimal.Decimal) *Commission {
	if percent == nil || !percent.IsPositive() {
		return nil
	}
	pct := decimal.Min(*percent, maxCommissionPercent)
	amount := types.RoundMoney(types.Percent(totalExclVat, pct))
	return &Commission{
		Percent:   pct,
		Amount:    amount,
		NetAmount: types.RoundMoney(totalExclVat.Sub(amount)),
	}
}

// withEffectiveMargin subtracts the commission from the gross margin. Gross profitability is
// left unchanged.
func (c *Commission) withEffectiveMargin(price, totalCost decimal.Decimal, gross Profitability, t MarginThresholds) {
	effectiveCost := totalCost.Add(c.Amount)
	margin := types.RoundMoney(price.Sub(effectiveCost))
	exact := MarginPercent(price, effectiveCost)
	pct := types.RoundMoney(exact)
	grossPct := gross.MarginPercent
	c.GrossMarginPercent = &grossPct
	c.EffectiveMargin = &margin
	c.EffectiveMarginPercent = &pct
	c.EffectiveTier = TierFor(exact, t)
}
