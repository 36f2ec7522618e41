// README: Advanced rate and seasonal multiplier rule records with their activation predicates.
package pricing

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/types"
)

type AdjustmentType string

const (
	AdjustPercentage  AdjustmentType = "PERCENTAGE"
	AdjustFixedAmount AdjustmentType = "FIXED_AMOUNT"
)

type AdvancedRate struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
	// StartTime and EndTime are "HH:MM" in the organization timezone. A window whose end is
	// before its start wraps over midnight. Both empty means any time.
	StartTime          string           `json:"startTime,omitempty"`
	EndTime            string           `json:"endTime,omitempty"`
	DaysOfWeek         []time.Weekday   `json:"daysOfWeek,omitempty"`
	MinDistanceKm      *decimal.Decimal `json:"minDistanceKm,omitempty"`
	MaxDistanceKm      *decimal.Decimal `json:"maxDistanceKm,omitempty"`
	ZoneID             *types.ID        `json:"zoneId,omitempty"`
	AdjustmentType     AdjustmentType   `json:"adjustmentType"`
	Value              decimal.Decimal  `json:"value"`
	Priority           int              `json:"priority"`
	IsActive           bool             `json:"isActive"`
	VehicleCategoryID  *types.ID        `json:"vehicleCategoryId,omitempty"`
	VehicleCategoryIDs []types.ID       `json:"vehicleCategoryIds,omitempty"`
}

type SeasonalMultiplier struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
	// StartDate and EndDate are calendar dates; both ends are inclusive.
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	Multiplier         decimal.Decimal `json:"multiplier"`
	Priority           int             `json:"priority"`
	IsActive           bool            `json:"isActive"`
	VehicleCategoryID  *types.ID       `json:"vehicleCategoryId,omitempty"`
	VehicleCategoryIDs []types.ID      `json:"vehicleCategoryIds,omitempty"`
}

// ruleContext is the trip data rule predicates are evaluated against.
type ruleContext struct {
	at         time.Time
	distanceKm decimal.Decimal
	zoneIDs    []types.ID
	category   *types.ID
}

// matchesVehicleCategory gates a rule on the quote vehicle category. A quote without a
// category matches every rule. A non-empty id list takes precedence over the single id; an
// empty list falls through to the single id, and no restriction at all matches.
func matchesVehicleCategory(single *types.ID, ids []types.ID, quote *types.ID) bool {
	if quote == nil {
		return true
	}
	if len(ids) > 0 {
		for _, id := range ids {
			if id == *quote {
				return true
			}
		}
		return false
	}
	if single != nil {
		return *single == *quote
	}
	return true
}

func (r AdvancedRate) matches(rc ruleContext) bool {
	if !r.IsActive {
		return false
	}
	if !matchesVehicleCategory(r.VehicleCategoryID, r.VehicleCategoryIDs, rc.category) {
		return false
	}
	if !r.inTimeWindow(rc.at) || !r.onDay(rc.at.Weekday()) {
		return false
	}
	if r.MinDistanceKm != nil && rc.distanceKm.LessThan(*r.MinDistanceKm) {
		return false
	}
	if r.MaxDistanceKm != nil && !rc.distanceKm.LessThan(*r.MaxDistanceKm) {
		return false
	}
	if r.ZoneID != nil && !containsID(rc.zoneIDs, *r.ZoneID) {
		return false
	}
	return true
}

func (r AdvancedRate) onDay(d time.Weekday) bool {
	if len(r.DaysOfWeek) == 0 {
		return true
	}
	for _, day := range r.DaysOfWeek {
		if day == d {
			return true
		}
	}
	return false
}

func (r AdvancedRate) inTimeWindow(at time.Time) bool {
	if r.StartTime == "" && r.EndTime == "" {
		return true
	}
	start, okStart := parseClock(r.StartTime)
	end, okEnd := parseClock(r.EndTime)
	if !okStart || !okEnd {
		return false
	}
	m := at.Hour()*60 + at.Minute()
	switch {
	case start == end:
		return true
	case start < end:
		return m >= start && m < end
	default:
		return m >= start || m < end
	}
}

func (t AdjustmentType) known() bool {
	return t == AdjustPercentage || t == AdjustFixedAmount
}

// apply returns the adjusted price. It reports false and leaves the price unchanged for an
// unknown adjustment type.
func (r AdvancedRate) apply(price decimal.Decimal) (decimal.Decimal, bool) {
	switch r.AdjustmentType {
	case AdjustFixedAmount:
		return price.Add(r.Value), true
	case AdjustPercentage:
		return price.Add(types.Percent(price, r.Value)), true
	}
	return price, false
}

func (m SeasonalMultiplier) matches(rc ruleContext) bool {
	if !m.IsActive {
		return false
	}
	if !matchesVehicleCategory(m.VehicleCategoryID, m.VehicleCategoryIDs, rc.category) {
		return false
	}
	day := civilDate(rc.at)
	return !day.Before(civilDate(m.StartDate)) && !day.After(civilDate(m.EndDate))
}

// parseClock turns "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}

func civilDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func containsID(ids []types.ID, id types.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
