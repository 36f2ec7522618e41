// README: Operational cost model. Components are nil when the organization has not configured them.
package cost

import (
	"errors"

	"github.com/shopspring/decimal"
)

type RegulatoryCategory string

const (
	RegulatoryLight RegulatoryCategory = "LIGHT"
	RegulatoryHeavy RegulatoryCategory = "HEAVY"
)

type Component string

const (
	ComponentFuel    Component = "FUEL"
	ComponentTolls   Component = "TOLLS"
	ComponentWear    Component = "WEAR"
	ComponentDriver  Component = "DRIVER"
	ComponentParking Component = "PARKING"
)

var ErrUnknownComponent = errors.New("unknown cost component")

// Rates are the organization cost unit rates.
type Rates struct {
	FuelConsumptionL100km *decimal.Decimal `json:"fuelConsumptionL100km,omitempty" yaml:"fuelConsumptionL100km"`
	FuelPricePerLiter     *decimal.Decimal `json:"fuelPricePerLiter,omitempty" yaml:"fuelPricePerLiter"`
	TollCostPerKm         *decimal.Decimal `json:"tollCostPerKm,omitempty" yaml:"tollCostPerKm"`
	WearCostPerKm         *decimal.Decimal `json:"wearCostPerKm,omitempty" yaml:"wearCostPerKm"`
	DriverHourlyCost      *decimal.Decimal `json:"driverHourlyCost,omitempty" yaml:"driverHourlyCost"`
}

// CategoryOverride carries the vehicle-category values that take precedence over Rates.
type CategoryOverride struct {
	FuelConsumptionL100km *decimal.Decimal
	Regulatory            RegulatoryCategory
}

type Input struct {
	DistanceKm      decimal.Decimal
	DurationMinutes decimal.Decimal
	Rates           Rates
	Category        *CategoryOverride
	// ZoneSurcharge is the summed parking/access fee of matched surcharge zones, nil when none matched.
	ZoneSurcharge *decimal.Decimal
}

type Breakdown struct {
	Fuel    *decimal.Decimal `json:"fuel,omitempty"`
	Tolls   *decimal.Decimal `json:"tolls,omitempty"`
	Wear    *decimal.Decimal `json:"wear,omitempty"`
	Driver  *decimal.Decimal `json:"driver,omitempty"`
	Parking *decimal.Decimal `json:"parking,omitempty"`
	// BreakMinutes is the mandatory RSE rest time billed as driver time.
	BreakMinutes int64           `json:"breakMinutes,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

func (b Breakdown) components() []*decimal.Decimal {
	return []*decimal.Decimal{b.Fuel, b.Tolls, b.Wear, b.Driver, b.Parking}
}

// HasInternalCost reports whether at least one component is configured.
func (b Breakdown) HasInternalCost() bool {
	for _, c := range b.components() {
		if c != nil {
			return true
		}
	}
	return false
}

// InternalCost is the rounded total, or nil when nothing was configured.
func (b Breakdown) InternalCost() *decimal.Decimal {
	if !b.HasInternalCost() {
		return nil
	}
	t := b.Total
	return &t
}

func (b Breakdown) Get(c Component) (*decimal.Decimal, error) {
	p, err := b.slot(c)
	if err != nil {
		return nil, err
	}
	return *p, nil
}

// With returns a copy of b with component c replaced and the total recomputed.
func (b Breakdown) With(c Component, v decimal.Decimal) (Breakdown, error) {
	p, err := b.slot(c)
	if err != nil {
		return b, err
	}
	*p = &v
	b.Total = sum(b.components())
	return b, nil
}

func (b *Breakdown) slot(c Component) (**decimal.Decimal, error) {
	switch c {
	case ComponentFuel:
		return &b.Fuel, nil
	case ComponentTolls:
		return &b.Tolls, nil
	case ComponentWear:
		return &b.Wear, nil
	case ComponentDriver:
		return &b.Driver, nil
	case ComponentParking:
		return &b.Parking, nil
	}
	return nil, ErrUnknownComponent
}
