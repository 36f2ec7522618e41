// README: Pricing zone definitions. A zone is a tagged geometry plus pricing attributes.
package zone

import (
	"errors"

	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

type Type string

const (
	TypeRadius  Type = "RADIUS"
	TypePolygon Type = "POLYGON"
	TypePoint   Type = "POINT"
)

// PointToleranceKm is how close a location must be to a POINT zone to count as inside it.
const PointToleranceKm = 0.1

var (
	ErrMissingCenter = errors.New("zone geometry requires a center")
	ErrMissingRadius = errors.New("radius zone requires a positive radius")
	ErrPolygonTooFew = errors.New("polygon zone requires at least 3 distinct points")
	ErrUnknownType   = errors.New("unknown zone type")
)

// Geometry is a sum type over the three zone shapes; Kind selects which fields are meaningful.
type Geometry struct {
	Kind     Type          `json:"kind"`
	Center   *types.Point  `json:"center,omitempty"`
	RadiusKm float64       `json:"radiusKm,omitempty"`
	Ring     []types.Point `json:"ring,omitempty"`
}

func Radius(center types.Point, radiusKm float64) Geometry {
	return Geometry{Kind: TypeRadius, Center: &center, RadiusKm: radiusKm}
}

func Polygon(ring ...types.Point) Geometry {
	return Geometry{Kind: TypePolygon, Ring: ring}
}

func Point(center types.Point) Geometry {
	return Geometry{Kind: TypePoint, Center: &center}
}

type Zone struct {
	ID              types.ID        `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	Geometry        Geometry        `json:"geometry"`
	Priority        int             `json:"priority"`
	PriceMultiplier decimal.Decimal `json:"priceMultiplier"`
	IsActive        bool            `json:"isActive"`
	// ParkingSurcharge and AccessFee are internal costs, not price multipliers.
	ParkingSurcharge decimal.Decimal `json:"parkingSurcharge"`
	AccessFee        decimal.Decimal `json:"accessFee"`
}

// Surcharge is the additive cost contribution of the zone; zero for plain zones.
func (z Zone) Surcharge() decimal.Decimal {
	return z.ParkingSurcharge.Add(z.AccessFee)
}

func (z Zone) HasSurcharge() bool {
	return z.Surcharge().IsPositive()
}

// multiplier returns the configured multiplier, treating unset values as neutral.
func (z Zone) multiplier() decimal.Decimal {
	if z.PriceMultiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return z.PriceMultiplier
}
