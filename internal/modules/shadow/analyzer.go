// README: Segment assembly and admin cost overrides. Pure functions over TripAnalysis values.
package shadow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
)

// Analyze builds the trip analysis. Approach and return legs are only used when a vehicle
// selection is present; without one the trip is service-only and flagged as estimated.
func Analyze(in Input) TripAnalysis {
	selected := in.Selection != nil
	a := TripAnalysis{RoutingSource: in.Service.Source, VehicleSelection: in.Selection}

	if selected && in.Approach != nil {
		a.Segments = append(a.Segments, segment(SegmentApproach, *in.Approach, in, nil, false))
	}
	a.Segments = append(a.Segments, segment(SegmentService, in.Service, in, in.ServiceSurcharge, !selected))
	if selected && in.Return != nil {
		a.Segments = append(a.Segments, segment(SegmentReturn, *in.Return, in, nil, false))
	}
	if selected && len(a.Segments) > 1 {
		a.RoutingSource = SourceVehicleSelection
	}

	a.totals()
	return a
}

func segment(name SegmentName, leg Leg, in Input, surcharge *decimal.Decimal, estimated bool) Segment {
	return Segment{
		Name:            name,
		DistanceKm:      leg.DistanceKm,
		DurationMinutes: leg.DurationMinutes,
		Cost: cost.Calculate(cost.Input{
			DistanceKm:      leg.DistanceKm,
			DurationMinutes: leg.DurationMinutes,
			Rates:           in.Rates,
			Category:        in.Category,
			ZoneSurcharge:   surcharge,
		}),
		IsEstimated: estimated || leg.Source == SourceHaversineEstimate,
	}
}

func (a *TripAnalysis) totals() {
	a.TotalDistanceKm = decimal.Zero
	a.TotalDurationMinutes = decimal.Zero
	parts := make([]cost.Breakdown, 0, len(a.Segments))
	for _, s := range a.Segments {
		a.TotalDistanceKm = a.TotalDistanceKm.Add(s.DistanceKm)
		a.TotalDurationMinutes = a.TotalDurationMinutes.Add(s.DurationMinutes)
		parts = append(parts, s.Cost)
	}
	a.TotalCost = cost.Combine(parts...)
}

// ApplyOverride replaces one cost component of one segment, recomputes the totals and appends
// the audit record. The input analysis is left untouched.
func ApplyOverride(a TripAnalysis, o CostOverride) (TripAnalysis, error) {
	if o.EditedBy == "" {
		return a, ErrMissingEditor
	}
	if o.Edited.IsNegative() {
		return a, ErrNegativeCost
	}

	out := a
	out.Segments = append([]Segment(nil), a.Segments...)
	out.CostOverrides = append([]CostOverride(nil), a.CostOverrides...)

	idx := -1
	for i, s := range out.Segments {
		if s.Name == o.Segment {
			idx = i
			break
		}
	}
	if idx < 0 {
		return a, fmt.Errorf("%w: %s", ErrUnknownSegment, o.Segment)
	}

	seg := out.Segments[idx]
	original, err := seg.Cost.Get(o.Component)
	if err != nil {
		return a, err
	}
	edited, err := seg.Cost.With(o.Component, o.Edited)
	if err != nil {
		return a, err
	}
	if original != nil {
		v := *original
		o.Original = &v
	}
	seg.Cost = edited
	out.Segments[idx] = seg
	out.CostOverrides = append(out.CostOverrides, o)
	out.totals()
	return out, nil
}
