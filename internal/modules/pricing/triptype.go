// README: Trip-type pricing. Transfer keeps the dynamic base price; excursion and dispo replace it.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

// normalizeTripType maps an empty type to transfer and reports unknown values.
func normalizeTripType(t TripType) (TripType, bool) {
	switch t {
	case "", TripTransfer:
		return TripTransfer, true
	case TripExcursion, TripDispo:
		return t, true
	}
	return TripTransfer, false
}

// PriceExcursion bills max(requested, minimum) hours plus the excursion surcharge.
func PriceExcursion(requestedHours, hourlyRate decimal.Decimal, s ExcursionSettings) (decimal.Decimal, ExcursionDetail) {
	effective := types.MaxDec(requestedHours, s.MinimumHours)
	base := effective.Mul(hourlyRate)
	price := base.Add(types.Percent(base, s.SurchargePercent))
	return price, ExcursionDetail{
		RequestedHours:   requestedHours,
		MinimumHours:     s.MinimumHours,
		EffectiveHours:   effective,
		HourlyRate:       hourlyRate,
		SurchargePercent: s.SurchargePercent,
	}
}

// PriceDispo bills the booked hours and any kilometres beyond the included bucket.
func PriceDispo(hours, actualKm, hourlyRate decimal.Decimal, s DispoSettings) (decimal.Decimal, DispoDetail) {
	included := hours.Mul(s.IncludedKmPerHour)
	overage := decimal.Max(decimal.Zero, actualKm.Sub(included))
	overageAmount := overage.Mul(s.OverageRatePerKm)
	price := hours.Mul(hourlyRate).Add(overageAmount)
	return price, DispoDetail{
		Hours:            hours,
		HourlyRate:       hourlyRate,
		IncludedKm:       included,
		ActualKm:         actualKm,
		OverageKm:        overage,
		OverageRatePerKm: s.OverageRatePerKm,
		OverageAmount:    overageAmount,
	}
}

// tripTypeStep replaces the running price for excursion and dispo trips.
func tripTypeStep(t TripType, hours, distanceKm, hourlyRate decimal.Decimal, s Settings) step {
	return func(price decimal.Decimal) (decimal.Decimal, *AppliedRule) {
		switch t {
		case TripExcursion:
			next, detail := PriceExcursion(hours, hourlyRate, s.Excursion)
			return next, &AppliedRule{
				Type: RuleTripTypeExcursion,
				Description: fmt.Sprintf("excursion %sh (minimum %sh) +%s%%",
					detail.EffectiveHours, detail.MinimumHours, detail.SurchargePercent),
				Percentage: &detail.SurchargePercent,
				Excursion:  &detail,
			}
		case TripDispo:
			next, detail := PriceDispo(hours, distanceKm, hourlyRate, s.Dispo)
			return next, &AppliedRule{
				Type: RuleTripTypeDispo,
				Description: fmt.Sprintf("dispo %sh, %skm included, %skm overage",
					detail.Hours, detail.IncludedKm, detail.OverageKm),
				Amount: &detail.OverageAmount,
				Dispo:  &detail,
			}
		}
		return price, nil
	}
}
