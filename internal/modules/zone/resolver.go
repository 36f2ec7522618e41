// README: Zone resolution: point → matching zones → one effective price multiplier.
package zone

import (
	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

type ConflictStrategy string

const (
	StrategyPriority      ConflictStrategy = "PRIORITY"
	StrategyMostExpensive ConflictStrategy = "MOST_EXPENSIVE"
	StrategyClosest       ConflictStrategy = "CLOSEST"
	StrategyCombined      ConflictStrategy = "COMBINED"
)

// AggregationStrategy combines the pickup and dropoff multipliers of a trip.
type AggregationStrategy string

const (
	AggregateMax         AggregationStrategy = "MAX"
	AggregatePickupOnly  AggregationStrategy = "PICKUP_ONLY"
	AggregateDropoffOnly AggregationStrategy = "DROPOFF_ONLY"
	AggregateAverage     AggregationStrategy = "AVERAGE"
)

const WarnNoConflictStrategy = "no zone conflict strategy configured, defaulted to MOST_EXPENSIVE"

var one = decimal.NewFromInt(1)

type Match struct {
	Zone       Zone    `json:"zone"`
	DistanceKm float64 `json:"distanceKm"`
}

type Resolution struct {
	Zone       *Zone            `json:"zone,omitempty"`
	Matches    []Match          `json:"matches"`
	Multiplier decimal.Decimal  `json:"multiplier"`
	Strategy   ConflictStrategy `json:"strategy"`
	// Defaulted is set when no strategy was configured and MOST_EXPENSIVE was used.
	Defaulted bool `json:"defaulted"`
}

// Codes returns the codes of every matched zone in match order.
func (r Resolution) Codes() []string {
	codes := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		codes = append(codes, m.Zone.Code)
	}
	return codes
}

// IDs returns the ids of every matched zone in match order.
func (r Resolution) IDs() []types.ID {
	ids := make([]types.ID, 0, len(r.Matches))
	for _, m := range r.Matches {
		ids = append(ids, m.Zone.ID)
	}
	return ids
}

// FindZonesForPoint returns every active zone containing p, in input order.
func FindZonesForPoint(p types.Point, zones []Zone) []Match {
	var matches []Match
	for _, z := range zones {
		if !z.IsActive || !z.Geometry.Contains(p) {
			continue
		}
		matches = append(matches, Match{Zone: z, DistanceKm: z.Geometry.DistanceToAnchorKm(p)})
	}
	return matches
}

// Resolve picks the effective multiplier for p according to strategy.
func Resolve(p types.Point, zones []Zone, strategy ConflictStrategy) Resolution {
	res := Resolution{Strategy: strategy, Multiplier: one}
	if strategy == "" {
		res.Strategy = StrategyMostExpensive
		res.Defaulted = true
	}
	res.Matches = FindZonesForPoint(p, zones)
	if len(res.Matches) == 0 {
		return res
	}

	switch res.Strategy {
	case StrategyCombined:
		m := one
		for _, match := range res.Matches {
			m = m.Mul(match.Zone.multiplier())
		}
		winner := res.Matches[0].Zone
		res.Zone = &winner
		res.Multiplier = m
		return res
	case StrategyPriority:
		res.Zone = pick(res.Matches, func(a, b Match) bool { return a.Zone.Priority > b.Zone.Priority })
	case StrategyClosest:
		sorted := append([]Match(nil), res.Matches...)
		sortByDistance(sorted, func(m Match) float64 { return m.DistanceKm })
		winner := sorted[0].Zone
		res.Zone = &winner
	default:
		res.Zone = pick(res.Matches, func(a, b Match) bool {
			return a.Zone.multiplier().GreaterThan(b.Zone.multiplier())
		})
	}
	res.Multiplier = res.Zone.multiplier()
	return res
}

// pick returns the first match that no later match beats.
func pick(matches []Match, better func(a, b Match) bool) *Zone {
	best := matches[0]
	for _, m := range matches[1:] {
		if better(m, best) {
			best = m
		}
	}
	z := best.Zone
	return &z
}

type TripResolution struct {
	Pickup      Resolution          `json:"pickup"`
	Dropoff     Resolution          `json:"dropoff"`
	Aggregation AggregationStrategy `json:"aggregation"`
	Multiplier  decimal.Decimal     `json:"multiplier"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// ResolveTrip resolves both ends of a trip and aggregates their multipliers.
func ResolveTrip(pickup, dropoff types.Point, zones []Zone, strategy ConflictStrategy, agg AggregationStrategy) TripResolution {
	tr := TripResolution{
		Pickup:      Resolve(pickup, zones, strategy),
		Dropoff:     Resolve(dropoff, zones, strategy),
		Aggregation: agg,
	}
	if tr.Aggregation == "" {
		tr.Aggregation = AggregateMax
	}
	if tr.Pickup.Defaulted {
		tr.Warnings = append(tr.Warnings, WarnNoConflictStrategy)
	}

	p, d := tr.Pickup.Multiplier, tr.Dropoff.Multiplier
	switch tr.Aggregation {
	case AggregatePickupOnly:
		tr.Multiplier = p
	case AggregateDropoffOnly:
		tr.Multiplier = d
	case AggregateAverage:
		tr.Multiplier = p.Add(d).Div(decimal.NewFromInt(2))
	default:
		tr.Multiplier = types.MaxDec(p, d)
	}
	return tr
}
