// README: Zone configuration report. Overlaps are configuration warnings, never pricing errors.
package zone

import (
	"vtcquote/internal/types"
)

type GeometryIssue struct {
	ZoneID types.ID `json:"zoneId"`
	Code   string   `json:"code"`
	Error  string   `json:"error"`
}

type Overlap struct {
	First  types.ID  `json:"first"`
	Second types.ID  `json:"second"`
	Codes  [2]string `json:"codes"`
}

type Report struct {
	Issues   []GeometryIssue `json:"issues"`
	Overlaps []Overlap       `json:"overlaps"`
	Warnings []string        `json:"warnings"`
}

// Valid is true when every zone has a usable geometry. Overlaps do not make a report invalid.
func (r Report) Valid() bool { return len(r.Issues) == 0 }

// Validate checks geometries of all zones and flags overlapping pairs among the active, valid ones.
func Validate(zones []Zone, strategy ConflictStrategy) Report {
	rep := Report{Issues: []GeometryIssue{}, Overlaps: []Overlap{}, Warnings: []string{}}
	if strategy == "" {
		rep.Warnings = append(rep.Warnings, WarnNoConflictStrategy)
	}

	candidates := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if err := z.Geometry.Validate(); err != nil {
			rep.Issues = append(rep.Issues, GeometryIssue{ZoneID: z.ID, Code: z.Code, Error: err.Error()})
			continue
		}
		if z.IsActive {
			candidates = append(candidates, z)
		}
	}

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if Overlaps(a.Geometry, b.Geometry) {
				rep.Overlaps = append(rep.Overlaps, Overlap{
					First:  a.ID,
					Second: b.ID,
					Codes:  [2]string{a.Code, b.Code},
				})
			}
		}
	}
	return rep
}

// Overlaps reports whether two valid geometries share area. Polygons overlap when a vertex
// lies inside the other shape or when their boundaries cross.
func Overlaps(a, b Geometry) bool {
	if a.Kind == TypeRadius && b.Kind == TypeRadius {
		return HaversineKm(*a.Center, *b.Center) < a.RadiusKm+b.RadiusKm
	}
	if a.Kind == TypePoint {
		return b.Contains(*a.Center)
	}
	if b.Kind == TypePoint {
		return a.Contains(*b.Center)
	}
	return touches(a, b) || touches(b, a) || edgesMeet(a, b)
}

// touches reports whether a representative point of a falls inside b.
func touches(a, b Geometry) bool {
	switch a.Kind {
	case TypeRadius:
		return b.Contains(*a.Center)
	case TypePolygon:
		for _, v := range openRing(a.Ring) {
			if b.Contains(v) {
				return true
			}
		}
	}
	return false
}

// edgesMeet catches overlaps with no vertex inside the other shape.
func edgesMeet(a, b Geometry) bool {
	switch {
	case a.Kind == TypePolygon && b.Kind == TypePolygon:
		return ringsCross(openRing(a.Ring), openRing(b.Ring))
	case a.Kind == TypeRadius && b.Kind == TypePolygon:
		return distanceToRingKm(*a.Center, openRing(b.Ring)) < a.RadiusKm
	case a.Kind == TypePolygon && b.Kind == TypeRadius:
		return distanceToRingKm(*b.Center, openRing(a.Ring)) < b.RadiusKm
	}
	return false
}
