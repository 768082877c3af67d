package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpro/storefront/internal/domain/report"
)

const (
	upsertStatsSQL = `INSERT INTO owner_stats (owner_email, owner_name, product_count, total_inventory_value, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (owner_email) DO UPDATE
		SET owner_name = EXCLUDED.owner_name,
			product_count = EXCLUDED.product_count,
			total_inventory_value = EXCLUDED.total_inventory_value,
			updated_at = now()`

	listStatsSQL = `SELECT owner_email, owner_name, product_count, total_inventory_value, updated_at
		FROM owner_stats ORDER BY owner_email`

	deleteStatsSQL = `DELETE FROM owner_stats WHERE owner_email = $1`
)

var _ report.Repository = (*StatsRepository)(nil)

// StatsRepository implements report.Repository backed by PostgreSQL.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a StatsRepository that uses the given pool.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Upsert inserts or refreshes an owner's reporting row.
func (r *StatsRepository) Upsert(ctx context.Context, s report.Stats) error {
	_, err := r.pool.Exec(ctx, upsertStatsSQL,
		s.OwnerEmail, s.OwnerName, s.ProductCount, s.InventoryValue,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting stats for %q", s.OwnerEmail)
	}
	return nil
}

// List returns every owner's reporting row.
func (r *StatsRepository) List(ctx context.Context) ([]report.Stats, error) {
	rows, err := r.pool.Query(ctx, listStatsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing owner stats")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.Stats, error) {
		var (
			s     report.Stats
			count int32
		)
		err := row.Scan(&s.OwnerEmail, &s.OwnerName, &count, &s.InventoryValue, &s.UpdatedAt)
		s.ProductCount = int(count)
		return s, err
	})
}

// Delete removes an owner's reporting row.
func (r *StatsRepository) Delete(ctx context.Context, ownerEmail string) error {
	if _, err := r.pool.Exec(ctx, deleteStatsSQL, ownerEmail); err != nil {
		return errors.Wrapf(err, "deleting stats for %q", ownerEmail)
	}
	return nil
}
