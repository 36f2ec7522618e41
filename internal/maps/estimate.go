// README: Haversine estimate used when no routing provider is configured or it fails.
package maps

import (
	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

const (
	// RoadDistanceFactor converts great-circle distance into an approximate road distance.
	RoadDistanceFactor     = 1.3
	DefaultAverageSpeedKmh = 50.0
)

// EstimateLeg approximates a driving leg from straight-line distance.
func EstimateLeg(origin, destination types.Point) shadow.Leg {
	km := zone.HaversineKm(origin, destination) * RoadDistanceFactor
	return shadow.Leg{
		DistanceKm:      decimal.NewFromFloat(km).Round(3),
		DurationMinutes: decimal.NewFromFloat(km / DefaultAverageSpeedKmh * 60).Round(2),
		Source:          shadow.SourceHaversineEstimate,
	}
}
