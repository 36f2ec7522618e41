// README: Pricing request/result types and the applied-rule audit record.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

type TripType string

const (
	TripTransfer  TripType = "transfer"
	TripExcursion TripType = "excursion"
	TripDispo     TripType = "dispo"
)

type RuleType string

const (
	RuleDynamicBase        RuleType = "DYNAMIC_BASE"
	RuleTripTypeExcursion  RuleType = "TRIP_TYPE_EXCURSION"
	RuleTripTypeDispo      RuleType = "TRIP_TYPE_DISPO"
	RuleZoneMultiplier     RuleType = "ZONE_MULTIPLIER"
	RuleAdvancedRate       RuleType = "ADVANCED_RATE"
	RuleSeasonalMultiplier RuleType = "SEASONAL_MULTIPLIER"
	RuleRoundTrip          RuleType = "ROUND_TRIP"
	RuleAutoSwitchToMAD    RuleType = "AUTO_SWITCH_TO_MAD"
	RuleMinimumFare        RuleType = "MINIMUM_FARE"
	RuleRounding           RuleType = "ROUNDING"
)

// Request holds the trip facts for one pricing call. Distances and durations come from the
// service leg; approach and return legs only feed the cost analysis.
type Request struct {
	Pickup            types.Point
	Dropoff           types.Point
	Service           shadow.Leg
	Approach          *shadow.Leg
	Return            *shadow.Leg
	Selection         *shadow.VehicleSelection
	TripType          TripType
	VehicleCategoryID *types.ID
	PickupAt          time.Time
	// RequestedHours is the booked duration for excursion and dispo trips. When nil the
	// service leg duration is used.
	RequestedHours *decimal.Decimal
	IsRoundTrip    bool
	// WaitingMinutes is the on-site wait between the outbound and return legs of a round trip.
	WaitingMinutes *decimal.Decimal
	// CommissionPercent is set for partner contacts only.
	CommissionPercent *decimal.Decimal
}

type ExcursionDetail struct {
	RequestedHours   decimal.Decimal `json:"requestedHours"`
	MinimumHours     decimal.Decimal `json:"minimumHours"`
	EffectiveHours   decimal.Decimal `json:"effectiveHours"`
	HourlyRate       decimal.Decimal `json:"hourlyRate"`
	SurchargePercent decimal.Decimal `json:"surchargePercent"`
}

type DispoDetail struct {
	Hours            decimal.Decimal `json:"hours"`
	HourlyRate       decimal.Decimal `json:"hourlyRate"`
	IncludedKm       decimal.Decimal `json:"includedKm"`
	ActualKm         decimal.Decimal `json:"actualKm"`
	OverageKm        decimal.Decimal `json:"overageKm"`
	OverageRatePerKm decimal.Decimal `json:"overageRatePerKm"`
	OverageAmount    decimal.Decimal `json:"overageAmount"`
}

// AppliedRule records one adjustment. Rules are appended in the order they were applied.
type AppliedRule struct {
	Type        RuleType         `json:"type"`
	RuleID      types.ID         `json:"ruleId,omitempty"`
	Description string           `json:"description"`
	PriceBefore decimal.Decimal  `json:"priceBefore"`
	PriceAfter  decimal.Decimal  `json:"priceAfter"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Multiplier  *decimal.Decimal `json:"multiplier,omitempty"`
	Excursion   *ExcursionDetail `json:"excursion,omitempty"`
	Dispo       *DispoDetail     `json:"dispo,omitempty"`
}

type SuggestionType string

const (
	SuggestDenseZoneMAD SuggestionType = "DENSE_ZONE_MAD"
	SuggestRoundTripMAD SuggestionType = "ROUND_TRIP_MAD"
)

// Suggestion is a non-binding hint for the UI. AutoSwitched is set when the engine already
// applied it.
type Suggestion struct {
	Type          SuggestionType  `json:"type"`
	Reason        string          `json:"reason"`
	TransferPrice decimal.Decimal `json:"transferPrice"`
	MADPrice      decimal.Decimal `json:"madPrice"`
	Difference    decimal.Decimal `json:"difference"`
	AutoSwitched  bool            `json:"autoSwitched"`
}

type Result struct {
	Price         decimal.Decimal     `json:"price"`
	Currency      string              `json:"currency"`
	TripType      TripType            `json:"tripType"`
	InternalCost  *decimal.Decimal    `json:"internalCost"`
	Dynamic       DynamicBaseResult   `json:"dynamic"`
	Trip          shadow.TripAnalysis `json:"tripAnalysis"`
	Zones         zone.TripResolution `json:"zones"`
	AppliedRules  []AppliedRule       `json:"appliedRules"`
	DenseZone     *DenseZoneAnalysis  `json:"denseZone,omitempty"`
	RoundTrip     *RoundTripAnalysis  `json:"roundTrip,omitempty"`
	Suggestions   []Suggestion        `json:"suggestions,omitempty"`
	Profitability *Profitability      `json:"profitability,omitempty"`
	Commission    *Commission         `json:"commission,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}
