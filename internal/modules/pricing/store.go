// README: Pricing store backed by PostgreSQL: settings, vehicle categories and rule tables.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

type Store struct {
	db    *pgxpool.Pool
	zones *zone.Store
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db, zones: zone.NewStore(db)}
}

// LoadSnapshot reads everything the engine needs for one organization. Organizations
// without a settings row get defaults.
func (s *Store) LoadSnapshot(ctx context.Context, orgID types.ID, defaults Settings) (Snapshot, error) {
	settings, found, err := s.GetSettings(ctx, orgID)
	if err != nil {
		return Snapshot{}, err
	}
	if !found {
		settings = defaults
	}

	snap := Snapshot{Settings: settings}
	if snap.Zones, err = s.zones.ListByOrg(ctx, orgID); err != nil {
		return Snapshot{}, err
	}
	if snap.Categories, err = s.ListCategories(ctx, orgID); err != nil {
		return Snapshot{}, err
	}
	if snap.AdvancedRates, err = s.ListAdvancedRates(ctx, orgID); err != nil {
		return Snapshot{}, err
	}
	if snap.Seasonal, err = s.ListSeasonal(ctx, orgID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) GetSettings(ctx context.Context, orgID types.ID) (Settings, bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT settings FROM organization_pricing_settings WHERE org_id = $1`, string(orgID),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("get pricing settings: %w", err)
	}
	var out Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return Settings{}, false, fmt.Errorf("decode pricing settings: %w", err)
	}
	return out, true, nil
}

func (s *Store) UpsertSettings(ctx context.Context, orgID types.ID, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode pricing settings: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO organization_pricing_settings (org_id, settings, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (org_id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = NOW()`,
		string(orgID), raw,
	)
	if err != nil {
		return fmt.Errorf("upsert pricing settings: %w", err)
	}
	return nil
}

func (s *Store) UpsertZone(ctx context.Context, orgID types.ID, z zone.Zone) error {
	if err := s.zones.Upsert(ctx, orgID, z); err != nil {
		return fmt.Errorf("upsert zone %s: %w", z.ID, err)
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, orgID types.ID) (map[types.ID]VehicleCategory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, rate_per_km, rate_per_hour, fuel_type, fuel_consumption_l100km, regulatory_category
		FROM vehicle_categories
		WHERE org_id = $1`, string(orgID),
	)
	if err != nil {
		return nil, fmt.Errorf("list vehicle categories: %w", err)
	}
	defer rows.Close()

	out := map[types.ID]VehicleCategory{}
	for rows.Next() {
		var c VehicleCategory
		var fuelType *string
		var regulatory string
		if err := rows.Scan(&c.ID, &c.Name, &c.RatePerKm, &c.RatePerHour, &fuelType, &c.FuelConsumptionL100km, &regulatory); err != nil {
			return nil, fmt.Errorf("scan vehicle category: %w", err)
		}
		if fuelType != nil {
			c.FuelType = *fuelType
		}
		c.Regulatory = cost.RegulatoryCategory(regulatory)
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (s *Store) ListAdvancedRates(ctx context.Context, orgID types.ID) ([]AdvancedRate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, start_time, end_time, days_of_week, min_distance_km, max_distance_km,
		       zone_id, adjustment_type, value, priority, is_active,
		       vehicle_category_id, vehicle_category_ids
		FROM advanced_rates
		WHERE org_id = $1
		ORDER BY priority ASC, created_at ASC`, string(orgID),
	)
	if err != nil {
		return nil, fmt.Errorf("list advanced rates: %w", err)
	}
	defer rows.Close()

	var out []AdvancedRate
	for rows.Next() {
		var r AdvancedRate
		var start, end, zoneID, categoryID *string
		var days []int32
		var categoryIDs []string
		var adjustment string
		if err := rows.Scan(
			&r.ID, &r.Name, &start, &end, &days, &r.MinDistanceKm, &r.MaxDistanceKm,
			&zoneID, &adjustment, &r.Value, &r.Priority, &r.IsActive,
			&categoryID, &categoryIDs,
		); err != nil {
			return nil, fmt.Errorf("scan advanced rate: %w", err)
		}
		if start != nil {
			r.StartTime = *start
		}
		if end != nil {
			r.EndTime = *end
		}
		for _, d := range days {
			r.DaysOfWeek = append(r.DaysOfWeek, time.Weekday(d))
		}
		r.ZoneID = toIDPtr(zoneID)
		r.AdjustmentType = AdjustmentType(adjustment)
		r.VehicleCategoryID = toIDPtr(categoryID)
		r.VehicleCategoryIDs = toIDs(categoryIDs)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListSeasonal(ctx context.Context, orgID types.ID) ([]SeasonalMultiplier, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, start_date, end_date, multiplier, priority, is_active,
		       vehicle_category_id, vehicle_category_ids
		FROM seasonal_multipliers
		WHERE org_id = $1
		ORDER BY priority ASC, created_at ASC`, string(orgID),
	)
	if err != nil {
		return nil, fmt.Errorf("list seasonal multipliers: %w", err)
	}
	defer rows.Close()

	var out []SeasonalMultiplier
	for rows.Next() {
		var m SeasonalMultiplier
		var categoryID *string
		var categoryIDs []string
		var multiplier decimal.Decimal
		if err := rows.Scan(
			&m.ID, &m.Name, &m.StartDate, &m.EndDate, &multiplier, &m.Priority, &m.IsActive,
			&categoryID, &categoryIDs,
		); err != nil {
			return nil, fmt.Errorf("scan seasonal multiplier: %w", err)
		}
		m.Multiplier = multiplier
		m.VehicleCategoryID = toIDPtr(categoryID)
		m.VehicleCategoryIDs = toIDs(categoryIDs)
		out = append(out, m)
	}
	return out, rows.Err()
}

func toIDPtr(v *string) *types.ID {
	if v == nil {
		return nil
	}
	id := types.ID(*v)
	return &id
}

// toIDs keeps the nil/empty distinction of the stored array.
func toIDs(v []string) []types.ID {
	if v == nil {
		return nil
	}
	out := make([]types.ID, len(v))
	for i, s := range v {
		out[i] = types.ID(s)
	}
	return out
}
