package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func idp(s string) *types.ID {
	id := types.ID(s)
	return &id
}

var (
	paris     = types.Point{Lat: 48.8566, Lng: 2.3522}
	nearParis = types.Point{Lat: 48.8600, Lng: 2.3600}
	lyon      = types.Point{Lat: 45.7640, Lng: 4.8357}
	marseille = types.Point{Lat: 43.2965, Lng: 5.3698}

	// Tuesday noon in Paris.
	tuesdayNoon = time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC)
)

func baseSettings() Settings {
	return Settings{
		BaseRatePerKm:       dec("2"),
		BaseRatePerHour:     dec("45"),
		TargetMarginPercent: dec("20"),
		Margins:             MarginThresholds{GreenPercent: dec("30"), OrangePercent: dec("15")},
		Costs: cost.Rates{
			FuelConsumptionL100km: decp("8"),
			FuelPricePerLiter:     decp("1.8"),
			DriverHourlyCost:      decp("30"),
		},
		ZoneConflictStrategy: zone.StrategyMostExpensive,
		ZoneAggregation:      zone.AggregateMax,
		Excursion:            ExcursionSettings{MinimumHours: dec("4"), SurchargePercent: dec("15")},
		Dispo:                DispoSettings{IncludedKmPerHour: dec("50"), OverageRatePerKm: dec("0.50"), MinimumHours: dec("2")},
		RoundTrip:            RoundTripSettings{BufferMinutes: dec("15")},
		Rounding:             RoundingRule{Mode: RoundingNone},
		Timezone:             "Europe/Paris",
	}
}

func baseSnapshot() Snapshot {
	return Snapshot{Settings: baseSettings()}
}

// transfer is a Lyon → Marseille style request with no zone match.
func transfer(km, minutes string) Request {
	return Request{
		Pickup:   lyon,
		Dropoff:  marseille,
		Service:  shadow.Leg{DistanceKm: dec(km), DurationMinutes: dec(minutes), Source: shadow.SourceGoogleAPI},
		TripType: TripTransfer,
		PickupAt: tuesdayNoon,
	}
}

func ruleTypes(rules []AppliedRule) []RuleType {
	out := make([]RuleType, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Type)
	}
	return out
}

func equalTypes(a, b []RuleType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func decInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func decMax(a, b decimal.Decimal) decimal.Decimal { return decimal.Max(a, b) }
