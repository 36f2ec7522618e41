// README: Quote aggregate and status definitions.
package quote

import (
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/types"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

type Quote struct {
	ID            types.ID           `json:"id"`
	OrgID         types.ID           `json:"orgId"`
	Status        Status             `json:"status"`
	StatusVersion int                `json:"statusVersion"`
	Input         pricing.QuoteInput `json:"input"`
	Price         decimal.Decimal    `json:"price"`
	InternalCost  *decimal.Decimal   `json:"internalCost"`
	Tier          pricing.Tier       `json:"profitabilityTier,omitempty"`
	Result        pricing.Result     `json:"pricing"`
	CreatedBy     string             `json:"createdBy"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Editable reports whether pricing figures may still change.
func (q *Quote) Editable() bool { return q.Status == StatusDraft }

// AllowedTransitions represents the quote state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusExpired},
	StatusSent:  {StatusAccepted, StatusRejected, StatusExpired},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func tierOf(res pricing.Result) pricing.Tier {
	if res.Profitability == nil {
		return ""
	}
	return res.Profitability.Tier
}
