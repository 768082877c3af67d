// Command seed-db prepares a fresh deployment: it runs migrations, stores the
// storewide coupon, hashes and stores the superadmin API key, and optionally
// creates a demo catalog document.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/auth"
	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/domain/coupon"
	"github.com/taskpro/storefront/internal/handler"
	"github.com/taskpro/storefront/internal/storage/jsonfile"
	"github.com/taskpro/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		catalogPath string
		apiKey      string
		pepper      string
		demo        bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogPath, "catalog-path", "db/catalog.json", "path to the catalog document")
	flag.StringVar(&apiKey, "api-key", "", "superadmin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&pepper, "pepper", "", "HMAC pepper for password and API key hashing (or STORE_PEPPER env)")
	flag.BoolVar(&demo, "demo", false, "seed a demo owner with sample products")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("STORE_PEPPER")
	}
	if pepper == "" {
		slog.Error("pepper is required: set --pepper or STORE_PEPPER")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogPath, apiKey, pepper, demo); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogPath, apiKey, pepper string, demo bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCoupon(ctx, postgres.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupon")
	}

	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	if demo {
		if err := seedDemoCatalog(ctx, catalogPath, pepper); err != nil {
			return errors.Wrap(err, "seed demo catalog")
		}
	}

	return nil
}

func seedCoupon(ctx context.Context, repo *postgres.CouponRepository) error {
	slog.Info("seeding storewide coupon")

	return repo.Upsert(ctx, coupon.Rule{
		Code:        "DISCOUNT20",
		Value:       decimal.NewFromInt(20),
		Description: "20% off entire order",
		Active:      true,
	})
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding superadmin api key")

	return repo.Upsert(ctx, auth.APIKeyInfo{
		ID:      "superadmin",
		KeyHash: handler.HashAPIKey(apiKey, []byte(pepper)),
		Name:    "superadmin key",
	})
}

func seedDemoCatalog(ctx context.Context, catalogPath, pepper string) error {
	slog.Info("seeding demo catalog", slog.String("path", catalogPath))

	store, err := jsonfile.Open(catalogPath, []byte(pepper))
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}

	const owner = "demo@example.com"
	if err := store.RegisterOwner(ctx, owner, "demo", "demo1234"); err != nil {
		if errors.Is(err, catalog.ErrOwnerExists) {
			slog.Info("demo owner already present, skipping")
			return nil
		}
		return errors.Wrap(err, "register demo owner")
	}

	products := []catalog.Product{
		{Name: "Shirt", Price: decimal.NewFromInt(500), Category: "mens", Subcategory: "shirts"},
		{Name: "Jeans", Price: decimal.NewFromInt(1200), Category: "mens", Subcategory: "trousers"},
		{Name: "Dress", Price: decimal.NewFromInt(900), Category: "women", Subcategory: "dresses"},
		{Name: "Scarf", Price: decimal.NewFromInt(250), Category: "women", Subcategory: "accessories"},
	}
	for _, p := range products {
		if err := store.AddProduct(ctx, owner, p); err != nil {
			return errors.Wrapf(err, "add product %s", p.Name)
		}
		slog.Info("added product", slog.String("name", p.Name))
	}

	return nil
}
