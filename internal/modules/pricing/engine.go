// README: Pricing pipeline. Calculate is pure: everything it reads is in the request and snapshot.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Calculate runs: zones → cost analysis → dynamic base → trip type → multipliers →
// round trip → MAD checks → minimum fare → rounding → profitability.
func Calculate(req Request, snap Snapshot) Result {
	s := snap.Settings
	cat := snap.category(req.VehicleCategoryID)
	res := Result{Currency: types.Currency}

	tripType, known := normalizeTripType(req.TripType)
	res.TripType = tripType
	if !known {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unknown trip type %q, priced as transfer", req.TripType))
	}
	if req.VehicleCategoryID != nil && cat == nil {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("vehicle category %s not found, organization rates used", *req.VehicleCategoryID))
	}

	res.Zones = zone.ResolveTrip(req.Pickup, req.Dropoff, snap.Zones, s.ZoneConflictStrategy, s.ZoneAggregation)
	res.Warnings = append(res.Warnings, res.Zones.Warnings...)

	res.Trip = shadow.Analyze(shadow.Input{
		Service:          req.Service,
		Approach:         req.Approach,
		Return:           req.Return,
		Selection:        req.Selection,
		Rates:            s.Costs,
		Category:         cat.costOverride(),
		ServiceSurcharge: tripSurcharge(res.Zones),
	})
	roundTrip := tripType == TripTransfer && req.IsRoundTrip

	km, minutes := req.Service.DistanceKm, req.Service.DurationMinutes
	res.Dynamic = CalculateDynamicBasePrice(km, minutes, s, cat)
	rates := resolveRates(s, cat)

	rc := ruleContext{
		at:         req.PickupAt.In(s.Location()),
		distanceKm: km,
		zoneIDs:    append(res.Zones.Pickup.IDs(), res.Zones.Dropoff.IDs()...),
		category:   req.VehicleCategoryID,
	}
	for _, r := range snap.AdvancedRates {
		if r.matches(rc) && !r.AdjustmentType.known() {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("advanced rate %s has unknown adjustment type %q, skipped", r.ID, r.AdjustmentType))
		}
	}
	codes := append(res.Zones.Pickup.Codes(), res.Zones.Dropoff.Codes()...)

	steps := []step{tripTypeStep(tripType, requestedHours(req), km, rates.perHour, s)}
	steps = append(steps, multiplierSteps(res.Zones.Multiplier, codes, snap.AdvancedRates, snap.Seasonal, rc)...)

	if tripType == TripTransfer {
		dz := DetectDenseZone(res.Zones.Pickup.Codes(), res.Zones.Dropoff.Codes(), km, minutes, s.DenseZone)
		res.DenseZone = &dz

		switch {
		case roundTrip:
			steps = append(steps, roundTripStep())
			if req.WaitingMinutes != nil {
				rt := DetectRoundTripBlocked(km, minutes, *req.WaitingMinutes, s.RoundTrip)
				res.RoundTrip = &rt
				if rt.IsDriverBlocked {
					hours := types.Hours(minutes.Mul(two).Add(*req.WaitingMinutes))
					mad := madPrice(hours, km.Mul(two), rates.perHour, s.Dispo)
					steps = append(steps, madStep(SuggestRoundTripMAD, "driver blocked on site during round trip",
						mad, s.RoundTrip.AutoSwitchToMAD, &res.Suggestions))
				}
			}
		case dz.IsDense:
			mad := madPrice(types.Hours(minutes), km, rates.perHour, s.Dispo)
			steps = append(steps, madStep(SuggestDenseZoneMAD, "low commercial speed in dense zone",
				mad, s.DenseZone.AutoSwitchToMAD, &res.Suggestions))
		}
	}

	steps = append(steps, minimumFareStep(s.MinimumFare), roundingStep(s.Rounding, s.MinimumFare))

	price, applied := fold(res.Dynamic.PriceWithMargin, steps)
	res.AppliedRules = append([]AppliedRule{dynamicRule(res.Dynamic)}, applied...)
	res.Price = types.RoundMoney(price)

	res.RefreshCosts(roundTrip, req.CommissionPercent, s.Margins)
	return res
}

// RefreshCosts recomputes internal cost, profitability and commission from the trip analysis.
// The price is kept. A round trip bills the service segment twice.
func (r *Result) RefreshCosts(roundTrip bool, commissionPercent *decimal.Decimal, t MarginThresholds) {
	total := r.Trip.TotalCost
	if roundTrip {
		total = cost.Combine(total, r.Trip.Service().Cost)
	}
	r.InternalCost = total.InternalCost()

	r.Profitability = nil
	if r.InternalCost != nil {
		p := CalculateProfitability(r.Price, *r.InternalCost, t)
		r.Profitability = &p
	}
	r.Commission = CalculateCommission(r.Price, commissionPercent)
	if r.Commission != nil && r.Profitability != nil {
		r.Commission.withEffectiveMargin(r.Price, *r.InternalCost, *r.Profitability, t)
	}
}

func dynamicRule(d DynamicBaseResult) AppliedRule {
	margin := d.TargetMarginPercent
	return AppliedRule{
		Type:        RuleDynamicBase,
		Description: fmt.Sprintf("%s-based base price with %s%% target margin", d.Method, margin),
		PriceBefore: types.RoundMoney(d.BasePrice),
		PriceAfter:  d.PriceWithMargin,
		Percentage:  &margin,
	}
}

func roundTripStep() step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		m := two
		return price.Mul(two), &AppliedRule{
			Type:        RuleRoundTrip,
			Description: "round trip priced as two legs",
			Multiplier:  &m,
		}
	}
}

// requestedHours falls back to the service leg duration.
func requestedHours(req Request) decimal.Decimal {
	if req.RequestedHours != nil {
		return *req.RequestedHours
	}
	return types.Hours(req.Service.DurationMinutes)
}

// tripSurcharge sums surcharges of the zones matched at either end, each zone counted once.
// It is nil when no surcharge zone matched.
func tripSurcharge(tr zone.TripResolution) *decimal.Decimal {
	seen := map[types.ID]bool{}
	total := decimal.Zero
	found := false
	for _, res := range []zone.Resolution{tr.Pickup, tr.Dropoff} {
		for _, m := range res.Matches {
			if seen[m.Zone.ID] || !m.Zone.HasSurcharge() {
				continue
			}
			seen[m.Zone.ID] = true
			total = total.Add(m.Zone.Surcharge())
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}
