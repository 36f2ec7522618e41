// README: Quote store backed by PostgreSQL.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, q *Quote) error {
	input, result, rules, trip, err := encode(q)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO quotes (
			id, org_id, status, status_version,
			input, price, internal_cost, profitability_tier,
			applied_rules, trip_analysis, result,
			created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14
		)`,
		string(q.ID), string(q.OrgID), string(q.Status), q.StatusVersion,
		input, q.Price, nullDecimal(q.InternalCost), nullString(string(q.Tier)),
		rules, trip, result,
		q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// Get is scoped to the organization: quotes of other tenants are reported as not found.
func (s *Store) Get(ctx context.Context, orgID, id types.ID) (*Quote, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, org_id, status, status_version,
		       input, price, internal_cost, profitability_tier, result,
		       created_by, created_at, updated_at
		FROM quotes
		WHERE id = $1 AND org_id = $2`, string(id), string(orgID),
	)

	var q Quote
	var input, result []byte
	var internalCost decimal.NullDecimal
	var tier *string
	err := row.Scan(
		&q.ID, &q.OrgID, &q.Status, &q.StatusVersion,
		&input, &q.Price, &internalCost, &tier, &result,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}

	if err := json.Unmarshal(input, &q.Input); err != nil {
		return nil, fmt.Errorf("decode quote input: %w", err)
	}
	if err := json.Unmarshal(result, &q.Result); err != nil {
		return nil, fmt.Errorf("decode quote result: %w", err)
	}
	if internalCost.Valid {
		v := internalCost.Decimal
		q.InternalCost = &v
	}
	if tier != nil {
		q.Tier = pricing.Tier(*tier)
	}
	return &q, nil
}

// UpdateStatus is an optimistic write: it only succeeds when status and version still match.
func (s *Store) UpdateStatus(ctx context.Context, orgID, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE quotes
		SET status = $1,
		    status_version = status_version + 1,
		    updated_at = NOW()
		WHERE id = $2 AND org_id = $3 AND status = $4 AND status_version = $5`,
		string(to), string(id), string(orgID), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePricing rewrites the pricing figures of a DRAFT quote at the given version.
func (s *Store) UpdatePricing(ctx context.Context, q *Quote, version int) (bool, error) {
	_, result, rules, trip, err := encode(q)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE quotes
		SET price = $1,
		    internal_cost = $2,
		    profitability_tier = $3,
		    applied_rules = $4,
		    trip_analysis = $5,
		    result = $6,
		    status_version = status_version + 1,
		    updated_at = $7
		WHERE id = $8 AND org_id = $9 AND status = 'DRAFT' AND status_version = $10`,
		q.Price, nullDecimal(q.InternalCost), nullString(string(q.Tier)),
		rules, trip, result, q.UpdatedAt,
		string(q.ID), string(q.OrgID), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func encode(q *Quote) (input, result, rules, trip []byte, err error) {
	if input, err = json.Marshal(q.Input); err != nil {
		return
	}
	if result, err = json.Marshal(q.Result); err != nil {
		return
	}
	if rules, err = json.Marshal(q.Result.AppliedRules); err != nil {
		return
	}
	trip, err = json.Marshal(q.Result.Trip)
	return
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
