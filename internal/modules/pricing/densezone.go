// README: Dense-zone and blocked round-trip detection, both compared against MAD (hourly) pricing.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

type DenseZoneAnalysis struct {
	IsDense           bool             `json:"isDense"`
	PickupInDense     bool             `json:"pickupInDenseZone"`
	DropoffInDense    bool             `json:"dropoffInDenseZone"`
	SpeedKmh          *decimal.Decimal `json:"speedKmh,omitempty"`
	SpeedThresholdKmh decimal.Decimal  `json:"speedThresholdKmh"`
}

// DetectDenseZone flags trips that start and end in dense zones and crawl below the speed
// threshold. A zero duration has no defined speed and is never dense.
func DetectDenseZone(pickupCodes, dropoffCodes []string, distanceKm, durationMinutes decimal.Decimal, s DenseZoneSettings) DenseZoneAnalysis {
	a := DenseZoneAnalysis{
		PickupInDense:     anyCodeIn(pickupCodes, s.ZoneCodes),
		DropoffInDense:    anyCodeIn(dropoffCodes, s.ZoneCodes),
		SpeedThresholdKmh: s.threshold(),
	}
	if durationMinutes.IsPositive() {
		speed := distanceKm.Div(types.Hours(durationMinutes))
		a.SpeedKmh = &speed
	}
	a.IsDense = a.PickupInDense && a.DropoffInDense &&
		a.SpeedKmh != nil && a.SpeedKmh.LessThan(a.SpeedThresholdKmh)
	return a
}

type RoundTripAnalysis struct {
	IsDriverBlocked    bool            `json:"isDriverBlocked"`
	WaitingMinutes     decimal.Decimal `json:"waitingMinutes"`
	RequiredMinutes    decimal.Decimal `json:"requiredMinutes"`
	ExceedsMaxDistance bool            `json:"exceedsMaxDistance"`
}

// DetectRoundTripBlocked reports whether the driver must stay on site: the wait is too short
// to drive back and return (2 × one-way + buffer), or the leg is too long to drive back.
func DetectRoundTripBlocked(oneWayKm, oneWayMinutes, waitingMinutes decimal.Decimal, s RoundTripSettings) RoundTripAnalysis {
	required := oneWayMinutes.Mul(decimal.NewFromInt(2)).Add(s.BufferMinutes)
	a := RoundTripAnalysis{
		WaitingMinutes:  waitingMinutes,
		RequiredMinutes: required,
	}
	if s.MaxReturnDistanceKm != nil {
		a.ExceedsMaxDistance = oneWayKm.GreaterThan(*s.MaxReturnDistanceKm)
	}
	a.IsDriverBlocked = waitingMinutes.LessThan(required) || a.ExceedsMaxDistance
	return a
}

// madPrice is the hourly-disposal equivalent of a trip, never below the MAD minimum hours.
func madPrice(hours, km, hourlyRate decimal.Decimal, s DispoSettings) decimal.Decimal {
	p, _ := PriceDispo(types.MaxDec(hours, s.MinimumHours), km, hourlyRate, s)
	return p
}

// madStep compares the running price with MAD. It suggests MAD when it is higher and switches
// to it when auto-switch is enabled.
func madStep(kind SuggestionType, reason string, mad decimal.Decimal, autoSwitch bool, suggestions *[]Suggestion) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		if !mad.GreaterThan(price) {
			return price, nil
		}
		sg := Suggestion{
			Type:          kind,
			Reason:        reason,
			TransferPrice: types.RoundMoney(price),
			MADPrice:      types.RoundMoney(mad),
			Difference:    types.RoundMoney(mad.Sub(price)),
			AutoSwitched:  autoSwitch,
		}
		*suggestions = append(*suggestions, sg)
		if !autoSwitch {
			return price, nil
		}
		return mad, &AppliedRule{
			Type:        RuleAutoSwitchToMAD,
			Description: fmt.Sprintf("switched to MAD pricing: %s", reason),
			Amount:      &sg.Difference,
		}
	}
}

func anyCodeIn(codes, set []string) bool {
	for _, c := range codes {
		for _, s := range set {
			if c == s {
				return true
			}
		}
	}
	return false
}
