// README: Organization pricing settings and the per-organization snapshot the engine reads.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

// DefaultDenseSpeedThresholdKmh applies when the organization leaves the threshold unset.
var DefaultDenseSpeedThresholdKmh = decimal.NewFromInt(15)

type RoundingMode string

const (
	RoundingNone    RoundingMode = "NONE"
	RoundingNearest RoundingMode = "NEAREST"
	RoundingUp      RoundingMode = "UP"
	RoundingDown    RoundingMode = "DOWN"
)

type RoundingRule struct {
	Mode RoundingMode    `json:"mode" yaml:"mode"`
	Step decimal.Decimal `json:"step" yaml:"step"`
}

type MarginThresholds struct {
	GreenPercent  decimal.Decimal `json:"greenPercent" yaml:"greenPercent"`
	OrangePercent decimal.Decimal `json:"orangePercent" yaml:"orangePercent"`
}

type DenseZoneSettings struct {
	ZoneCodes         []string         `json:"zoneCodes" yaml:"zoneCodes"`
	SpeedThresholdKmh *decimal.Decimal `json:"speedThresholdKmh,omitempty" yaml:"speedThresholdKmh"`
	AutoSwitchToMAD   bool             `json:"autoSwitchToMad" yaml:"autoSwitchToMad"`
}

func (d DenseZoneSettings) threshold() decimal.Decimal {
	if d.SpeedThresholdKmh == nil || !d.SpeedThresholdKmh.IsPositive() {
		return DefaultDenseSpeedThresholdKmh
	}
	return *d.SpeedThresholdKmh
}

type RoundTripSettings struct {
	BufferMinutes       decimal.Decimal  `json:"bufferMinutes" yaml:"bufferMinutes"`
	MaxReturnDistanceKm *decimal.Decimal `json:"maxReturnDistanceKm,omitempty" yaml:"maxReturnDistanceKm"`
	AutoSwitchToMAD     bool             `json:"autoSwitchToMad" yaml:"autoSwitchToMad"`
}

type ExcursionSettings struct {
	MinimumHours     decimal.Decimal `json:"minimumHours" yaml:"minimumHours"`
	SurchargePercent decimal.Decimal `json:"surchargePercent" yaml:"surchargePercent"`
}

type DispoSettings struct {
	IncludedKmPerHour decimal.Decimal `json:"includedKmPerHour" yaml:"includedKmPerHour"`
	OverageRatePerKm  decimal.Decimal `json:"overageRatePerKm" yaml:"overageRatePerKm"`
	// MinimumHours is the least a MAD-equivalent comparison bills. Booked dispo trips bill
	// their requested hours.
	MinimumHours decimal.Decimal `json:"minimumHours" yaml:"minimumHours"`
}

// Settings is the organization pricing configuration. It is passed by value into every
// pricing call.
type Settings struct {
	BaseRatePerKm        decimal.Decimal          `json:"baseRatePerKm" yaml:"baseRatePerKm"`
	BaseRatePerHour      decimal.Decimal          `json:"baseRatePerHour" yaml:"baseRatePerHour"`
	TargetMarginPercent  decimal.Decimal          `json:"targetMarginPercent" yaml:"targetMarginPercent"`
	Margins              MarginThresholds         `json:"margins" yaml:"margins"`
	MinimumFare          *decimal.Decimal         `json:"minimumFare,omitempty" yaml:"minimumFare"`
	Rounding             RoundingRule             `json:"rounding" yaml:"rounding"`
	Costs                cost.Rates               `json:"costs" yaml:"costs"`
	ZoneConflictStrategy zone.ConflictStrategy    `json:"zoneConflictStrategy" yaml:"zoneConflictStrategy"`
	ZoneAggregation      zone.AggregationStrategy `json:"zoneAggregation" yaml:"zoneAggregation"`
	DenseZone            DenseZoneSettings        `json:"denseZone" yaml:"denseZone"`
	RoundTrip            RoundTripSettings        `json:"roundTrip" yaml:"roundTrip"`
	Excursion            ExcursionSettings        `json:"excursion" yaml:"excursion"`
	Dispo                DispoSettings            `json:"dispo" yaml:"dispo"`
	Timezone             string                   `json:"timezone" yaml:"timezone"`
}

var ErrInvalidSettings = errors.New("invalid pricing settings")

// Validate rejects settings the engine cannot price with. An empty conflict strategy is
// allowed and reported as a warning at pricing time.
func (s Settings) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.Join(ErrInvalidSettings, fmt.Errorf(format, args...))
	}
	for name, v := range map[string]decimal.Decimal{
		"baseRatePerKm":       s.BaseRatePerKm,
		"baseRatePerHour":     s.BaseRatePerHour,
		"targetMarginPercent": s.TargetMarginPercent,
		"rounding.step":       s.Rounding.Step,
	} {
		if v.IsNegative() {
			return invalid("%s must not be negative", name)
		}
	}
	if s.MinimumFare != nil && s.MinimumFare.IsNegative() {
		return invalid("minimumFare must not be negative")
	}
	switch s.Rounding.Mode {
	case "", RoundingNone, RoundingNearest, RoundingUp, RoundingDown:
	default:
		return invalid("unknown rounding mode %q", s.Rounding.Mode)
	}
	if s.Margins.OrangePercent.GreaterThan(s.Margins.GreenPercent) {
		return invalid("orange threshold %s is above green threshold %s", s.Margins.OrangePercent, s.Margins.GreenPercent)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return invalid("timezone %q: %w", s.Timezone, err)
		}
	}
	return nil
}

// Location resolves the organization timezone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type VehicleCategory struct {
	ID                    types.ID                `json:"id"`
	Name                  string                  `json:"name"`
	RatePerKm             *decimal.Decimal        `json:"ratePerKm,omitempty"`
	RatePerHour           *decimal.Decimal        `json:"ratePerHour,omitempty"`
	FuelType              string                  `json:"fuelType,omitempty"`
	FuelConsumptionL100km *decimal.Decimal        `json:"fuelConsumptionL100km,omitempty"`
	Regulatory            cost.RegulatoryCategory `json:"regulatoryCategory"`
}

func (c *VehicleCategory) costOverride() *cost.CategoryOverride {
	if c == nil {
		return nil
	}
	return &cost.CategoryOverride{FuelConsumptionL100km: c.FuelConsumptionL100km, Regulatory: c.Regulatory}
}

// Snapshot is everything the engine needs about one organization, loaded by the caller.
type Snapshot struct {
	Settings      Settings                     `json:"settings"`
	Zones         []zone.Zone                  `json:"zones"`
	Categories    map[types.ID]VehicleCategory `json:"categories"`
	AdvancedRates []AdvancedRate               `json:"advancedRates"`
	Seasonal      []SeasonalMultiplier         `json:"seasonal"`
}

func (s Snapshot) category(id *types.ID) *VehicleCategory {
	if id == nil {
		return nil
	}
	c, ok := s.Categories[*id]
	if !ok {
		return nil
	}
	return &c
}
