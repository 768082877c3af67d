package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taskpro/storefront/internal/domain/checkout"
	"github.com/taskpro/storefront/internal/domain/coupon"
	"github.com/taskpro/storefront/internal/domain/order"
	"github.com/taskpro/storefront/internal/handler"
	"github.com/taskpro/storefront/internal/notify"
	"github.com/taskpro/storefront/internal/payment"
	"github.com/taskpro/storefront/internal/session"
	"github.com/taskpro/storefront/internal/storage/jsonfile"
	"github.com/taskpro/storefront/internal/storage/postgres"
	"github.com/taskpro/storefront/internal/worker"
	"github.com/taskpro/storefront/pkg/health"
	"github.com/taskpro/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the reconciliation
// worker, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Catalog document.
	store, err := jsonfile.Open(cfg.CatalogPath, []byte(cfg.Pepper))
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.DatabaseCheck(pool))
	healthSvc.AddReadinessCheck("catalog", 5*time.Second, health.FileCheck(cfg.CatalogPath))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	orderRepo := postgres.NewOrderRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	pendingRepo := postgres.NewPendingRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)

	// Payment gateway: the real client when credentials are configured,
	// otherwise the in-memory fake.
	var gateway payment.Gateway
	if cfg.Gateway.KeyID != "" {
		gateway = payment.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	} else {
		lg.Warn("No gateway credentials, using fake payment gateway")
		gateway = payment.NewFakeGateway()
	}

	// Order event notifier: Kafka when brokers are configured, logs otherwise.
	var notifier notify.Notifier = notify.LogNotifier{}
	if len(cfg.Kafka.Brokers) > 0 {
		kn, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return errors.Wrap(err, "create kafka notifier")
		}
		defer func() {
			_ = kn.Close()
		}()
		notifier = kn
	}

	// Domain services.
	couponValidator, err := coupon.NewRepoValidator(ctx, couponRepo)
	if err != nil {
		return errors.Wrap(err, "create coupon validator")
	}
	orderService := order.NewService(orderRepo, notifier)
	checkoutService := checkout.NewService(store, couponValidator, gateway, pendingRepo)

	// Sessions.
	sessions := session.NewManager(cfg.SessionTTL)
	sessions.StartCleanup(ctx, time.Minute)

	// HTTP handlers.
	h := handler.NewHandler(
		store,
		checkoutService,
		orderService,
		pendingRepo,
		gateway,
		sessions,
		statsRepo,
		apikeyRepo,
		[]byte(cfg.Pepper),
		notifier,
	)

	// Mux: health endpoints + storefront routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", handler.APIKeyHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		), "storefront",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	reconciler := worker.NewReconciler(
		pendingRepo, orderService, gateway,
		cfg.Reconcile.Interval, cfg.Reconcile.StaleAfter,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := reconciler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "reconciler")
		}
		return nil
	})

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}
