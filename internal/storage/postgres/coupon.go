package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpro/storefront/internal/domain/coupon"
)

const (
	getCouponByCodeSQL = `SELECT code, value, description, active
		FROM coupons WHERE code = $1 AND active = TRUE`

	listActiveCodesSQL = `SELECT code FROM coupons WHERE active = TRUE`

	upsertCouponSQL = `INSERT INTO coupons (code, value, description, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET value = EXCLUDED.value, description = EXCLUDED.description, active = EXCLUDED.active`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL. Codes
// match exactly: no case folding.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up an active coupon by its exact code. Returns
// coupon.ErrInvalidCoupon when no matching active coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "finding coupon %q", code)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (coupon.Rule, error) {
		var rule coupon.Rule
		err := row.Scan(&rule.Code, &rule.Value, &rule.Description, &rule.Active)
		return rule, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, errors.Wrapf(err, "finding coupon %q", code)
	}
	return &rule, nil
}

// ActiveCodes returns the codes of all active coupons.
func (r *CouponRepository) ActiveCodes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listActiveCodesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing active coupons")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var code string
		err := row.Scan(&code)
		return code, err
	})
}

// Upsert inserts or updates a coupon rule. Used by seeding.
func (r *CouponRepository) Upsert(ctx context.Context, rule coupon.Rule) error {
	_, err := r.pool.Exec(ctx, upsertCouponSQL, rule.Code, rule.Value, rule.Description, rule.Active)
	if err != nil {
		return errors.Wrapf(err, "upserting coupon %q", rule.Code)
	}
	return nil
}
