// Package worker runs the payment reconciliation loop. A checkout whose
// confirmation callback never arrived (browser closed, network drop) leaves a
// stale pending snapshot; the worker asks the gateway for the truth and
// either finalizes the order or discards the snapshot.
package worker

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/taskpro/storefront/internal/domain/checkout"
	"github.com/taskpro/storefront/internal/domain/order"
	"github.com/taskpro/storefront/internal/payment"
)

// Reconciler resolves stale pending checkouts against the payment gateway.
type Reconciler struct {
	pending    checkout.PendingRepository
	orders     *order.Service
	gateway    payment.Gateway
	interval   time.Duration
	staleAfter time.Duration
}

// NewReconciler creates a Reconciler. staleAfter is how old a pending
// checkout must be before the worker touches it.
func NewReconciler(
	pending checkout.PendingRepository,
	orders *order.Service,
	gateway payment.Gateway,
	interval, staleAfter time.Duration,
) *Reconciler {
	return &Reconciler{
		pending:    pending,
		orders:     orders,
		gateway:    gateway,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// Run executes the reconciliation loop until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	zctx.From(ctx).Info("Reconciliation worker started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_after", r.staleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				zctx.From(ctx).Error("Reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep processes all currently stale pending checkouts once. A gateway
// error for one snapshot leaves it for the next sweep.
func (r *Reconciler) Sweep(ctx context.Context) error {
	stale, err := r.pending.ListStale(ctx, r.staleAfter)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	lg := zctx.From(ctx)
	lg.Info("Reconciling stale checkouts", zap.Int("count", len(stale)))

	for _, p := range stale {
		paid, err := r.gateway.CheckStatus(ctx, p.OrderID)
		if err != nil {
			lg.Warn("Gateway status check failed",
				zap.String("order_id", p.OrderID),
				zap.Error(err),
			)
			continue
		}

		if paid {
			if _, err := r.orders.Confirm(ctx, p.ConfirmRequest()); err != nil {
				lg.Error("Finalizing reconciled order failed",
					zap.String("order_id", p.OrderID),
					zap.Error(err),
				)
				continue
			}
			lg.Info("Recovered paid checkout", zap.String("order_id", p.OrderID))
		} else {
			lg.Info("Dropping unpaid checkout", zap.String("order_id", p.OrderID))
		}

		if err := r.pending.Delete(ctx, p.OrderID); err != nil {
			lg.Error("Deleting pending checkout failed",
				zap.String("order_id", p.OrderID),
				zap.Error(err),
			)
		}
	}
	return nil
}
