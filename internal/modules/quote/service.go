// README: Quote service: prices and persists quotes, guards edits and status transitions.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/types"
)

var (
	ErrNotFound     = errors.New("quote not found")
	ErrNotEditable  = errors.New("quote is not editable")
	ErrInvalidState = errors.New("invalid quote status transition")
	ErrConflict     = errors.New("quote state conflict")
	ErrBadRequest   = errors.New("bad request")
)

type Repository interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, orgID, id types.ID) (*Quote, error)
	UpdateStatus(ctx context.Context, orgID, id types.ID, from, to Status, version int) (bool, error)
	UpdatePricing(ctx context.Context, q *Quote, version int) (bool, error)
}

type Pricer interface {
	Quote(ctx context.Context, orgID types.ID, in pricing.QuoteInput) (pricing.Result, error)
	Snapshot(ctx context.Context, orgID types.ID) (pricing.Snapshot, error)
}

type Service struct {
	store   Repository
	pricing Pricer
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(store Repository, pricer Pricer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, pricing: pricer, logger: logger, now: time.Now}
}

type CreateCommand struct {
	OrgID     types.ID
	CreatedBy string
	Input     pricing.QuoteInput
}

type OverrideCommand struct {
	OrgID    types.ID
	QuoteID  types.ID
	Override shadow.CostOverride
}

type TransitionCommand struct {
	OrgID   types.ID
	QuoteID types.ID
	To      Status
}

// Create prices the trip and stores it as a DRAFT quote.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Quote, error) {
	if cmd.OrgID == "" {
		return nil, ErrBadRequest
	}
	res, err := s.pricing.Quote(ctx, cmd.OrgID, cmd.Input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	q := &Quote{
		ID:           types.ID(uuid.NewString()),
		OrgID:        cmd.OrgID,
		Status:       StatusDraft,
		Input:        cmd.Input,
		Price:        res.Price,
		InternalCost: res.InternalCost,
		Tier:         tierOf(res),
		Result:       res,
		CreatedBy:    cmd.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("quote created",
		zap.String("quote_id", string(q.ID)),
		zap.String("org_id", string(q.OrgID)),
		zap.String("price", q.Price.StringFixed(2)),
	)
	return q, nil
}

func (s *Service) Get(ctx context.Context, orgID, id types.ID) (*Quote, error) {
	return s.store.Get(ctx, orgID, id)
}

// ApplyCostOverride replaces one segment cost component and recomputes internal cost,
// profitability and commission. The sell price does not change.
func (s *Service) ApplyCostOverride(ctx context.Context, cmd OverrideCommand) (*Quote, error) {
	q, err := s.store.Get(ctx, cmd.OrgID, cmd.QuoteID)
	if err != nil {
		return nil, err
	}
	if !q.Editable() {
		return nil, ErrNotEditable
	}

	o := cmd.Override
	o.EditedAt = s.now()
	trip, err := shadow.ApplyOverride(q.Result.Trip, o)
	if err != nil {
		return nil, errors.Join(ErrBadRequest, err)
	}
	snap, err := s.pricing.Snapshot(ctx, q.OrgID)
	if err != nil {
		return nil, err
	}

	res := q.Result
	res.Trip = trip
	roundTrip := res.TripType == pricing.TripTransfer && q.Input.IsRoundTrip
	res.RefreshCosts(roundTrip, q.Input.CommissionPercent, snap.Settings.Margins)

	version := q.StatusVersion
	q.Result = res
	q.InternalCost = res.InternalCost
	q.Tier = tierOf(res)
	q.UpdatedAt = o.EditedAt
	ok, err := s.store.UpdatePricing(ctx, q, version)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	q.StatusVersion = version + 1

	s.logger.Info("quote cost overridden",
		zap.String("quote_id", string(q.ID)),
		zap.String("segment", string(o.Segment)),
		zap.String("component", string(o.Component)),
		zap.String("edited_by", o.EditedBy),
	)
	return q, nil
}

func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Quote, error) {
	q, err := s.store.Get(ctx, cmd.OrgID, cmd.QuoteID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(q.Status, cmd.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidState, q.Status, cmd.To)
	}
	ok, err := s.store.UpdateStatus(ctx, q.OrgID, q.ID, q.Status, cmd.To, q.StatusVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	q.Status = cmd.To
	q.StatusVersion++
	q.UpdatedAt = s.now()
	return q, nil
}
