// README: Cost calculator. Rounds once, at the total, so per-segment sums never drift.
package cost

import (
	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

// RSE break rule for heavy vehicles: 45 minutes per complete 270 minutes of driving.
const (
	RSEDrivingBlockMinutes = 270
	RSEBreakMinutes        = 45
)

func Calculate(in Input) Breakdown {
	var b Breakdown
	km := in.DistanceKm

	if consumption := in.consumption(); consumption != nil && in.Rates.FuelPricePerLiter != nil {
		v := km.Mul(consumption.Div(types.Hundred)).Mul(*in.Rates.FuelPricePerLiter)
		b.Fuel = &v
	}
	if r := in.Rates.TollCostPerKm; r != nil {
		v := km.Mul(*r)
		b.Tolls = &v
	}
	if r := in.Rates.WearCostPerKm; r != nil {
		v := km.Mul(*r)
		b.Wear = &v
	}
	if r := in.Rates.DriverHourlyCost; r != nil {
		b.BreakMinutes = BreakMinutes(in.DurationMinutes, in.regulatory())
		minutes := in.DurationMinutes.Add(decimal.NewFromInt(b.BreakMinutes))
		v := types.Hours(minutes).Mul(*r)
		b.Driver = &v
	}
	if in.ZoneSurcharge != nil {
		v := *in.ZoneSurcharge
		b.Parking = &v
	}

	b.Total = sum(b.components())
	return b
}

// BreakMinutes returns the mandatory rest time for a driving duration. Only HEAVY vehicles break.
func BreakMinutes(drivingMinutes decimal.Decimal, cat RegulatoryCategory) int64 {
	if cat != RegulatoryHeavy || !drivingMinutes.IsPositive() {
		return 0
	}
	blocks := drivingMinutes.Div(decimal.NewFromInt(RSEDrivingBlockMinutes)).Floor().IntPart()
	return blocks * RSEBreakMinutes
}

// Combine sums segment breakdowns component-wise. A component stays nil only when it is nil
// in every part.
func Combine(parts ...Breakdown) Breakdown {
	var out Breakdown
	for _, p := range parts {
		out.Fuel = addOpt(out.Fuel, p.Fuel)
		out.Tolls = addOpt(out.Tolls, p.Tolls)
		out.Wear = addOpt(out.Wear, p.Wear)
		out.Driver = addOpt(out.Driver, p.Driver)
		out.Parking = addOpt(out.Parking, p.Parking)
		out.BreakMinutes += p.BreakMinutes
	}
	out.Total = sum(out.components())
	return out
}

func (in Input) consumption() *decimal.Decimal {
	if in.Category != nil && in.Category.FuelConsumptionL100km != nil {
		return in.Category.FuelConsumptionL100km
	}
	return in.Rates.FuelConsumptionL100km
}

func (in Input) regulatory() RegulatoryCategory {
	if in.Category == nil {
		return RegulatoryLight
	}
	return in.Category.Regulatory
}

func addOpt(a, b *decimal.Decimal) *decimal.Decimal {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		return a
	}
	v := a.Add(*b)
	return &v
}

func sum(parts []*decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range parts {
		if p != nil {
			total = total.Add(*p)
		}
	}
	return types.RoundMoney(total)
}
