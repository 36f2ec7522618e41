// README: Dynamic base price: the larger of distance and duration pricing, plus target margin.
package pricing

import (
	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

type PricingMethod string

const (
	MethodDistance PricingMethod = "DISTANCE"
	MethodDuration PricingMethod = "DURATION"
)

type RateSource string

const (
	RateFromCategory     RateSource = "CATEGORY"
	RateFromOrganization RateSource = "ORGANIZATION"
)

// DynamicBaseResult keeps every intermediate value for display and debugging.
type DynamicBaseResult struct {
	DistanceKm          decimal.Decimal `json:"distanceKm"`
	DurationMinutes     decimal.Decimal `json:"durationMinutes"`
	RatePerKm           decimal.Decimal `json:"ratePerKm"`
	RatePerKmSource     RateSource      `json:"ratePerKmSource"`
	RatePerHour         decimal.Decimal `json:"ratePerHour"`
	RatePerHourSource   RateSource      `json:"ratePerHourSource"`
	DistanceBasedPrice  decimal.Decimal `json:"distanceBasedPrice"`
	DurationBasedPrice  decimal.Decimal `json:"durationBasedPrice"`
	BasePrice           decimal.Decimal `json:"basePrice"`
	Method              PricingMethod   `json:"method"`
	TargetMarginPercent decimal.Decimal `json:"targetMarginPercent"`
	PriceWithMargin     decimal.Decimal `json:"priceWithMargin"`
}

type resolvedRates struct {
	perKm, perHour             decimal.Decimal
	perKmSource, perHourSource RateSource
}

// resolveRates applies the category → organization fallback to each rate independently.
func resolveRates(s Settings, c *VehicleCategory) resolvedRates {
	r := resolvedRates{
		perKm:         s.BaseRatePerKm,
		perHour:       s.BaseRatePerHour,
		perKmSource:   RateFromOrganization,
		perHourSource: RateFromOrganization,
	}
	if c == nil {
		return r
	}
	if c.RatePerKm != nil {
		r.perKm, r.perKmSource = *c.RatePerKm, RateFromCategory
	}
	if c.RatePerHour != nil {
		r.perHour, r.perHourSource = *c.RatePerHour, RateFromCategory
	}
	return r
}

// CalculateDynamicBasePrice prices a trip by distance and by duration and keeps the larger.
// Ties go to distance.
func CalculateDynamicBasePrice(distanceKm, durationMinutes decimal.Decimal, s Settings, c *VehicleCategory) DynamicBaseResult {
	rates := resolveRates(s, c)
	res := DynamicBaseResult{
		DistanceKm:          distanceKm,
		DurationMinutes:     durationMinutes,
		RatePerKm:           rates.perKm,
		RatePerKmSource:     rates.perKmSource,
		RatePerHour:         rates.perHour,
		RatePerHourSource:   rates.perHourSource,
		DistanceBasedPrice:  distanceKm.Mul(rates.perKm),
		DurationBasedPrice:  types.Hours(durationMinutes).Mul(rates.perHour),
		TargetMarginPercent: s.TargetMarginPercent,
	}

	res.Method = MethodDistance
	res.BasePrice = res.DistanceBasedPrice
	if res.DurationBasedPrice.GreaterThan(res.DistanceBasedPrice) {
		res.Method = MethodDuration
		res.BasePrice = res.DurationBasedPrice
	}

	withMargin := res.BasePrice.Add(types.Percent(res.BasePrice, s.TargetMarginPercent))
	res.PriceWithMargin = types.RoundMoney(withMargin)
	return res
}
