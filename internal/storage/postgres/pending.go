package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpro/storefront/internal/domain/checkout"
)

const (
	createPendingSQL = `INSERT INTO pending_checkouts (order_id, customer_email, snapshot, shipping_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id) DO NOTHING`

	listStalePendingSQL = `SELECT order_id, customer_email, snapshot, shipping_address, created_at
		FROM pending_checkouts WHERE created_at < $1 ORDER BY created_at`

	deletePendingSQL = `DELETE FROM pending_checkouts WHERE order_id = $1`
)

var _ checkout.PendingRepository = (*PendingRepository)(nil)

// PendingRepository persists checkout snapshots backed by PostgreSQL.
type PendingRepository struct {
	pool *pgxpool.Pool
}

// NewPendingRepository returns a PendingRepository that uses the given pool.
func NewPendingRepository(pool *pgxpool.Pool) *PendingRepository {
	return &PendingRepository{pool: pool}
}

// Create records a pre-payment checkout snapshot.
func (r *PendingRepository) Create(ctx context.Context, p *checkout.Pending) error {
	snapshot, err := json.Marshal(p.Invoice)
	if err != nil {
		return errors.Wrap(err, "marshaling snapshot")
	}
	addr, err := json.Marshal(p.Address)
	if err != nil {
		return errors.Wrap(err, "marshaling address")
	}

	_, err = r.pool.Exec(ctx, createPendingSQL, p.OrderID, p.CustomerEmail, snapshot, addr)
	if err != nil {
		return errors.Wrapf(err, "creating pending checkout %q", p.OrderID)
	}
	return nil
}

// ListStale returns snapshots older than the given age, oldest first.
func (r *PendingRepository) ListStale(ctx context.Context, olderThan time.Duration) ([]checkout.Pending, error) {
	cutoff := time.Now().Add(-olderThan)
	rows, err := r.pool.Query(ctx, listStalePendingSQL, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "listing stale checkouts")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (checkout.Pending, error) {
		var (
			p        checkout.Pending
			snapshot []byte
			addr     []byte
		)
		if err := row.Scan(&p.OrderID, &p.CustomerEmail, &snapshot, &addr, &p.CreatedAt); err != nil {
			return p, err
		}
		if err := json.Unmarshal(snapshot, &p.Invoice); err != nil {
			return p, errors.Wrap(err, "unmarshaling snapshot")
		}
		if err := json.Unmarshal(addr, &p.Address); err != nil {
			return p, errors.Wrap(err, "unmarshaling address")
		}
		return p, nil
	})
}

// Delete removes a settled or abandoned snapshot.
func (r *PendingRepository) Delete(ctx context.Context, orderID string) error {
	if _, err := r.pool.Exec(ctx, deletePendingSQL, orderID); err != nil {
		return errors.Wrapf(err, "deleting pending checkout %q", orderID)
	}
	return nil
}
