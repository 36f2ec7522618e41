// README: Shadow trip analysis: approach, service and return segments with their cost.
package shadow

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
	"vtcquote/internal/types"
)

type SegmentName string

const (
	SegmentApproach SegmentName = "approach"
	SegmentService  SegmentName = "service"
	SegmentReturn   SegmentName = "return"
)

// RoutingSource records where distance and duration figures came from.
type RoutingSource string

const (
	SourceGoogleAPI         RoutingSource = "GOOGLE_API"
	SourceHaversineEstimate RoutingSource = "HAVERSINE_ESTIMATE"
	SourceVehicleSelection  RoutingSource = "VEHICLE_SELECTION"
)

var (
	ErrUnknownSegment = errors.New("segment not present in trip analysis")
	ErrNegativeCost   = errors.New("cost override must not be negative")
	ErrMissingEditor  = errors.New("cost override requires an editor")
)

// Leg is one routed (or estimated) stretch of driving.
type Leg struct {
	DistanceKm      decimal.Decimal `json:"distanceKm"`
	DurationMinutes decimal.Decimal `json:"durationMinutes"`
	Source          RoutingSource   `json:"source"`
}

type Segment struct {
	Name            SegmentName     `json:"name"`
	DistanceKm      decimal.Decimal `json:"distanceKm"`
	DurationMinutes decimal.Decimal `json:"durationMinutes"`
	Cost            cost.Breakdown  `json:"cost"`
	IsEstimated     bool            `json:"isEstimated"`
}

// VehicleSelection is the transparency data shown when a specific vehicle and base are chosen.
type VehicleSelection struct {
	VehicleID    types.ID    `json:"vehicleId"`
	BaseID       types.ID    `json:"baseId"`
	BaseName     string      `json:"baseName"`
	BaseLocation types.Point `json:"baseLocation"`
}

type CostOverride struct {
	Segment   SegmentName      `json:"segment"`
	Component cost.Component   `json:"component"`
	Original  *decimal.Decimal `json:"original,omitempty"`
	Edited    decimal.Decimal  `json:"edited"`
	EditedBy  string           `json:"editedBy"`
	EditedAt  time.Time        `json:"editedAt"`
	Reason    string           `json:"reason"`
}

type TripAnalysis struct {
	Segments             []Segment         `json:"segments"`
	TotalDistanceKm      decimal.Decimal   `json:"totalDistanceKm"`
	TotalDurationMinutes decimal.Decimal   `json:"totalDurationMinutes"`
	TotalCost            cost.Breakdown    `json:"totalCost"`
	RoutingSource        RoutingSource     `json:"routingSource"`
	VehicleSelection     *VehicleSelection `json:"vehicleSelection,omitempty"`
	CostOverrides        []CostOverride    `json:"costOverrides,omitempty"`
}

// Service returns the service segment; every analysis has one.
func (a TripAnalysis) Service() Segment {
	for _, s := range a.Segments {
		if s.Name == SegmentService {
			return s
		}
	}
	return Segment{Name: SegmentService}
}

type Input struct {
	Service   Leg
	Approach  *Leg
	Return    *Leg
	Selection *VehicleSelection
	Rates     cost.Rates
	Category  *cost.CategoryOverride
	// ServiceSurcharge is charged on the service segment only.
	ServiceSurcharge *decimal.Decimal
}
