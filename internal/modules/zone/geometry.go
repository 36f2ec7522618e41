// README: Pure geographic helpers for zone containment and distance.
package zone

import (
	"math"

	"vtcquote/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two points.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Validate checks that the fields required by Kind are present.
func (g Geometry) Validate() error {
	switch g.Kind {
	case TypeRadius:
		if g.Center == nil {
			return ErrMissingCenter
		}
		if g.RadiusKm <= 0 {
			return ErrMissingRadius
		}
	case TypePolygon:
		if len(openRing(g.Ring)) < 3 {
			return ErrPolygonTooFew
		}
	case TypePoint:
		if g.Center == nil {
			return ErrMissingCenter
		}
	default:
		return ErrUnknownType
	}
	return nil
}

// Contains reports whether p lies inside the geometry. Invalid geometries contain nothing.
func (g Geometry) Contains(p types.Point) bool {
	if g.Validate() != nil {
		return false
	}
	switch g.Kind {
	case TypeRadius:
		return HaversineKm(*g.Center, p) < g.RadiusKm
	case TypePolygon:
		return pointInRing(p, openRing(g.Ring))
	case TypePoint:
		return HaversineKm(*g.Center, p) <= PointToleranceKm
	}
	return false
}

// Anchor is the reference point used for distance comparisons. Polygons use the
// provided center when set, otherwise their first vertex.
func (g Geometry) Anchor() (types.Point, bool) {
	if g.Center != nil {
		return *g.Center, true
	}
	if g.Kind == TypePolygon && len(g.Ring) > 0 {
		return g.Ring[0], true
	}
	return types.Point{}, false
}

// DistanceToAnchorKm returns +Inf when the geometry has no anchor.
func (g Geometry) DistanceToAnchorKm(p types.Point) float64 {
	a, ok := g.Anchor()
	if !ok {
		return math.Inf(1)
	}
	return HaversineKm(a, p)
}

// openRing drops the closing vertex when the ring repeats its first point.
func openRing(ring []types.Point) []types.Point {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		return ring[:n-1]
	}
	return ring
}

// pointInRing is the even-odd ray casting test with lng as x and lat as y.
func pointInRing(p types.Point, ring []types.Point) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		yi, yj := ring[i].Lat, ring[j].Lat
		xi, xj := ring[i].Lng, ring[j].Lng
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// ringsCross reports whether any edge of a properly crosses an edge of b.
func ringsCross(a, b []types.Point) bool {
	for i := range a {
		p1, p2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if segmentsCross(p1, p2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross is strict: shared endpoints and collinear edges do not count.
func segmentsCross(p1, p2, q1, q2 types.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)
	return d1*d2 < 0 && d3*d4 < 0
}

func orientation(a, b, c types.Point) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}

// distanceToRingKm is the shortest distance from c to the ring boundary. It projects onto a
// local equirectangular plane centered on c, which holds at city scale.
func distanceToRingKm(c types.Point, ring []types.Point) float64 {
	kmPerDeg := earthRadiusKm * math.Pi / 180
	kmPerDegLng := kmPerDeg * math.Cos(degreesToRadians(c.Lat))
	project := func(p types.Point) (float64, float64) {
		return (p.Lng - c.Lng) * kmPerDegLng, (p.Lat - c.Lat) * kmPerDeg
	}

	best := math.Inf(1)
	for i := range ring {
		ax, ay := project(ring[i])
		bx, by := project(ring[(i+1)%len(ring)])
		best = math.Min(best, distanceToSegment(ax, ay, bx, by))
	}
	return best
}

// distanceToSegment is the distance from the origin to segment ab.
func distanceToSegment(ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	t := 0.0
	if l := dx*dx + dy*dy; l > 0 {
		t = math.Max(0, math.Min(1, -(ax*dx+ay*dy)/l))
	}
	return math.Hypot(ax+t*dx, ay+t*dy)
}

// sortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function. It is stable.
func sortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
