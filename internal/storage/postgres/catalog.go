package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

const (
	upsertCatalogProductSQL = `INSERT INTO catalog_products
		(owner_email, name, category, subcategory, price, description, image_path, rating, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (owner_email, name) DO UPDATE
		SET category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			image_path = EXCLUDED.image_path,
			rating = EXCLUDED.rating,
			synced_at = now()`

	deleteOwnerCatalogSQL = `DELETE FROM catalog_products WHERE owner_email = $1`
)

// CatalogMirror maintains the relational copy of the JSON catalog document.
// It is written by the sync job and queried by reporting tools; the
// storefront itself reads the document directly.
type CatalogMirror struct {
	pool *pgxpool.Pool
}

// NewCatalogMirror returns a CatalogMirror that uses the given pool.
func NewCatalogMirror(pool *pgxpool.Pool) *CatalogMirror {
	return &CatalogMirror{pool: pool}
}

// SyncOwner replaces the owner's mirrored rows with the given products.
func (m *CatalogMirror) SyncOwner(ctx context.Context, ownerEmail string, products []catalog.Product) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, deleteOwnerCatalogSQL, ownerEmail); err != nil {
		return errors.Wrapf(err, "clearing mirror for %q", ownerEmail)
	}
	for _, p := range products {
		if _, err := tx.Exec(ctx, upsertCatalogProductSQL,
			ownerEmail, p.Name, p.Category, p.Subcategory,
			p.Price, p.Description, p.ImagePath, p.Rating,
		); err != nil {
			return errors.Wrapf(err, "mirroring product %q of %q", p.Name, ownerEmail)
		}
	}

	return tx.Commit(ctx)
}
