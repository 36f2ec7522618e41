// README: Pricing service: loads the organization snapshot, routes legs, then runs the engine.
package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vtcquote/internal/maps"
	"vtcquote/internal/metrics"
	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

var (
	ErrInvalidTrip = errors.New("invalid trip request")
	ErrInvalidZone = errors.New("invalid zone")
)

// Router returns a driving leg between two points.
type Router interface {
	Route(ctx context.Context, origin, destination types.Point) (shadow.Leg, error)
}

type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, orgID types.ID, defaults Settings) (Snapshot, error)
}

// Repository is the configuration store behind the service.
type Repository interface {
	SnapshotLoader
	UpsertSettings(ctx context.Context, orgID types.ID, settings Settings) error
	UpsertZone(ctx context.Context, orgID types.ID, z zone.Zone) error
}

type SnapshotCache interface {
	Get(ctx context.Context, orgID types.ID) (Snapshot, bool, error)
	Set(ctx context.Context, orgID types.ID, snap Snapshot) error
	Invalidate(ctx context.Context, orgID types.ID) error
}

// VehicleChoice selects a vehicle and its base, which adds approach and return legs.
type VehicleChoice struct {
	VehicleID    types.ID    `json:"vehicleId"`
	BaseID       types.ID    `json:"baseId"`
	BaseName     string      `json:"baseName"`
	BaseLocation types.Point `json:"baseLocation"`
}

type QuoteInput struct {
	Pickup            types.Point      `json:"pickup"`
	Dropoff           types.Point      `json:"dropoff"`
	TripType          TripType         `json:"tripType"`
	VehicleCategoryID *types.ID        `json:"vehicleCategoryId,omitempty"`
	PickupAt          time.Time        `json:"pickupAt"`
	RequestedHours    *decimal.Decimal `json:"requestedHours,omitempty"`
	IsRoundTrip       bool             `json:"isRoundTrip"`
	WaitingMinutes    *decimal.Decimal `json:"waitingMinutes,omitempty"`
	CommissionPercent *decimal.Decimal `json:"commissionPercent,omitempty"`
	Vehicle           *VehicleChoice   `json:"vehicle,omitempty"`
}

func (in QuoteInput) validate() error {
	if in.Pickup.IsZero() || in.Dropoff.IsZero() {
		return errors.Join(ErrInvalidTrip, errors.New("pickup and dropoff are required"))
	}
	if in.PickupAt.IsZero() {
		return errors.Join(ErrInvalidTrip, errors.New("pickupAt is required"))
	}
	for _, v := range []*decimal.Decimal{in.RequestedHours, in.WaitingMinutes, in.CommissionPercent} {
		if v != nil && v.IsNegative() {
			return errors.Join(ErrInvalidTrip, errors.New("durations and percentages must not be negative"))
		}
	}
	return nil
}

type Service struct {
	store    Repository
	cache    SnapshotCache
	routes   Router
	defaults Settings
	logger   *zap.Logger
}

// NewService wires the pricing service. cache and routes may be nil: snapshots are then read
// from the store on every call and legs are haversine estimates.
func NewService(store Repository, cache SnapshotCache, routes Router, defaults Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: cache, routes: routes, defaults: defaults, logger: logger}
}

// Quote prices a trip for the organization without persisting anything.
func (s *Service) Quote(ctx context.Context, orgID types.ID, in QuoteInput) (Result, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	snap, err := s.Snapshot(ctx, orgID)
	if err != nil {
		return Result{}, err
	}

	req := Request{
		Pickup:            in.Pickup,
		Dropoff:           in.Dropoff,
		Service:           s.leg(ctx, in.Pickup, in.Dropoff),
		TripType:          in.TripType,
		VehicleCategoryID: in.VehicleCategoryID,
		PickupAt:          in.PickupAt,
		RequestedHours:    in.RequestedHours,
		IsRoundTrip:       in.IsRoundTrip,
		WaitingMinutes:    in.WaitingMinutes,
		CommissionPercent: in.CommissionPercent,
	}
	if v := in.Vehicle; v != nil {
		approach := s.leg(ctx, v.BaseLocation, in.Pickup)
		ret := s.leg(ctx, in.Dropoff, v.BaseLocation)
		req.Approach, req.Return = &approach, &ret
		req.Selection = &shadow.VehicleSelection{
			VehicleID:    v.VehicleID,
			BaseID:       v.BaseID,
			BaseName:     v.BaseName,
			BaseLocation: v.BaseLocation,
		}
	}

	res := Calculate(req, snap)

	tier := ""
	if res.Profitability != nil {
		tier = string(res.Profitability.Tier)
	}
	metrics.ObserveQuote(string(res.TripType), tier, time.Since(start))
	if len(res.Warnings) > 0 {
		s.logger.Info("quote priced with warnings",
			zap.String("org_id", string(orgID)),
			zap.Strings("warnings", res.Warnings),
		)
	}
	return res, nil
}

// Snapshot returns the organization snapshot, from cache when possible. Cache failures
// degrade to a store read.
func (s *Service) Snapshot(ctx context.Context, orgID types.ID) (Snapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, orgID)
		switch {
		case err != nil:
			metrics.SnapshotCache.WithLabelValues("error").Inc()
			s.logger.Warn("pricing snapshot cache read failed", zap.String("org_id", string(orgID)), zap.Error(err))
		case ok:
			metrics.SnapshotCache.WithLabelValues("hit").Inc()
			return snap, nil
		default:
			metrics.SnapshotCache.WithLabelValues("miss").Inc()
		}
	}

	snap, err := s.store.LoadSnapshot(ctx, orgID, s.defaults)
	if err != nil {
		return Snapshot{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, orgID, snap); err != nil {
			s.logger.Warn("pricing snapshot cache write failed", zap.String("org_id", string(orgID)), zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Service) InvalidateSnapshot(ctx context.Context, orgID types.ID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, orgID)
}

// UpdateSettings replaces the organization settings. The cached snapshot is dropped so the next
// quote reads them back.
func (s *Service) UpdateSettings(ctx context.Context, orgID types.ID, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.store.UpsertSettings(ctx, orgID, settings); err != nil {
		return err
	}
	s.dropSnapshot(ctx, orgID)
	return nil
}

// UpsertZone creates or replaces one zone. Overlaps are not rejected; ValidateZones reports them.
func (s *Service) UpsertZone(ctx context.Context, orgID types.ID, z zone.Zone) error {
	if z.ID == "" {
		return errors.Join(ErrInvalidZone, errors.New("zone id is required"))
	}
	if err := z.Geometry.Validate(); err != nil {
		return errors.Join(ErrInvalidZone, err)
	}
	if err := s.store.UpsertZone(ctx, orgID, z); err != nil {
		return err
	}
	s.dropSnapshot(ctx, orgID)
	return nil
}

// dropSnapshot logs cache failures; the entry then expires on its TTL.
func (s *Service) dropSnapshot(ctx context.Context, orgID types.ID) {
	if err := s.InvalidateSnapshot(ctx, orgID); err != nil {
		s.logger.Warn("pricing snapshot cache invalidation failed", zap.String("org_id", string(orgID)), zap.Error(err))
	}
}

// ValidateZones reports geometry errors and overlaps in the organization zone configuration.
func (s *Service) ValidateZones(ctx context.Context, orgID types.ID) (zone.Report, error) {
	snap, err := s.Snapshot(ctx, orgID)
	if err != nil {
		return zone.Report{}, err
	}
	return zone.Validate(snap.Zones, snap.Settings.ZoneConflictStrategy), nil
}

// leg routes through the provider and falls back to a haversine estimate on any failure.
func (s *Service) leg(ctx context.Context, origin, destination types.Point) shadow.Leg {
	if s.routes != nil {
		leg, err := s.routes.Route(ctx, origin, destination)
		if err == nil {
			metrics.RoutingSources.WithLabelValues(string(leg.Source)).Inc()
			return leg
		}
		s.logger.Warn("routing failed, using haversine estimate", zap.Error(err))
	}
	leg := maps.EstimateLeg(origin, destination)
	metrics.RoutingSources.WithLabelValues(string(leg.Source)).Inc()
	return leg
}
