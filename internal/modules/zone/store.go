// README: Zone store backed by PostgreSQL. Geometry is kept as JSONB.
package zone

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vtcquote/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ListByOrg returns every zone of the organization, active or not, ordered by priority.
func (s *Store) ListByOrg(ctx context.Context, orgID types.ID) ([]Zone, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, code, geometry, priority, price_multiplier, is_active,
		       parking_surcharge, access_fee
		FROM pricing_zones
		WHERE org_id = $1
		ORDER BY priority DESC, created_at ASC`, string(orgID),
	)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var out []Zone
	for rows.Next() {
		var z Zone
		var geom []byte
		if err := rows.Scan(
			&z.ID, &z.Name, &z.Code, &geom, &z.Priority, &z.PriceMultiplier, &z.IsActive,
			&z.ParkingSurcharge, &z.AccessFee,
		); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		if err := json.Unmarshal(geom, &z.Geometry); err != nil {
			return nil, fmt.Errorf("decode geometry of zone %s: %w", z.ID, err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, orgID types.ID, z Zone) error {
	if err := z.Geometry.Validate(); err != nil {
		return err
	}
	geom, err := json.Marshal(z.Geometry)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pricing_zones (
			id, org_id, name, code, zone_type, geometry, priority, price_multiplier,
			is_active, parking_surcharge, access_fee
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			zone_type = EXCLUDED.zone_type,
			geometry = EXCLUDED.geometry,
			priority = EXCLUDED.priority,
			price_multiplier = EXCLUDED.price_multiplier,
			is_active = EXCLUDED.is_active,
			parking_surcharge = EXCLUDED.parking_surcharge,
			access_fee = EXCLUDED.access_fee`,
		string(z.ID), string(orgID), z.Name, z.Code, string(z.Geometry.Kind), geom,
		z.Priority, z.PriceMultiplier, z.IsActive, z.ParkingSurcharge, z.AccessFee,
	)
	return err
}
