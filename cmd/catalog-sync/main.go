// Command catalog-sync mirrors the catalog document into PostgreSQL so that
// reporting queries can join products against orders without touching the
// document store. One owner is synced per worker.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/storage/jsonfile"
	"github.com/taskpro/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		catalogPath string
		pepper      string
		workers     int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogPath, "catalog-path", "db/catalog.json", "path to the catalog document")
	flag.StringVar(&pepper, "pepper", "", "HMAC pepper the catalog was created with (or STORE_PEPPER env)")
	flag.IntVar(&workers, "workers", 4, "concurrent owner syncs")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("STORE_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogPath, pepper, workers); err != nil {
		slog.Error("catalog sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog sync completed successfully")
}

func run(ctx context.Context, databaseURL, catalogPath, pepper string, workers int) error {
	store, err := jsonfile.Open(catalogPath, []byte(pepper))
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}

	owners, err := store.Owners(ctx)
	if err != nil {
		return errors.Wrap(err, "list owners")
	}
	slog.Info("loaded catalog", slog.Int("owners", len(owners)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	mirror := postgres.NewCatalogMirror(pool)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, oc := range owners {
		g.Go(syncOwner(ctx, mirror, oc))
	}
	return g.Wait()
}

func syncOwner(ctx context.Context, mirror *postgres.CatalogMirror, oc catalog.OwnerCatalog) func() error {
	return func() error {
		if err := mirror.SyncOwner(ctx, oc.Owner.Email, oc.Products); err != nil {
			return errors.Wrapf(err, "sync owner %s", oc.Owner.Email)
		}

		slog.Info("synced owner",
			slog.String("email", oc.Owner.Email),
			slog.Int("products", len(oc.Products)),
		)
		return nil
	}
}
