// Package report maintains per-owner reporting snapshots for the superadmin
// dashboard. Snapshots are recomputed from the catalog document rather than
// tracked incrementally.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

// Stats is one owner's reporting row.
type Stats struct {
	OwnerEmail     string
	OwnerName      string
	ProductCount   int
	InventoryValue decimal.Decimal
	UpdatedAt      time.Time
}

// Repository persists reporting snapshots.
type Repository interface {
	Upsert(ctx context.Context, s Stats) error
	List(ctx context.Context) ([]Stats, error)
	Delete(ctx context.Context, ownerEmail string) error
}

// Compute builds an owner's stats from their catalog slice. Inventory value
// is the sum of product prices.
func Compute(oc catalog.OwnerCatalog) Stats {
	value := decimal.Zero
	for _, p := range oc.Products {
		value = value.Add(p.Price)
	}
	return Stats{
		OwnerEmail:     oc.Owner.Email,
		OwnerName:      oc.Owner.Username,
		ProductCount:   len(oc.Products),
		InventoryValue: value,
	}
}

// Refresh recomputes and stores stats for every owner in the catalog.
func Refresh(ctx context.Context, store catalog.Store, repo Repository) error {
	owners, err := store.Owners(ctx)
	if err != nil {
		return err
	}
	for _, oc := range owners {
		if err := repo.Upsert(ctx, Compute(oc)); err != nil {
			return err
		}
	}
	return nil
}
