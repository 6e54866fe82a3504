package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/kadapaimran/grocery-storefront/api/routes"
	"github.com/kadapaimran/grocery-storefront/internal/admin"
	authsvc "github.com/kadapaimran/grocery-storefront/internal/auth"
	"github.com/kadapaimran/grocery-storefront/internal/cart"
	"github.com/kadapaimran/grocery-storefront/internal/catalog"
	checkoutsvc "github.com/kadapaimran/grocery-storefront/internal/checkout"
	"github.com/kadapaimran/grocery-storefront/internal/session"
	"github.com/kadapaimran/grocery-storefront/pkg/config"
	"github.com/kadapaimran/grocery-storefront/pkg/db"
	"github.com/kadapaimran/grocery-storefront/pkg/gateway"
	"github.com/kadapaimran/grocery-storefront/pkg/localstore"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/metrics"
	"github.com/kadapaimran/grocery-storefront/pkg/payments"
	"github.com/kadapaimran/grocery-storefront/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	persist, err := localstore.Open(cfg.LocalStore)
	if err != nil {
		logg.Error(ctx, "failed to open local store", err)
		os.Exit(1)
	}

	cacheDB, err := db.New(ctx, cfg.Cache, logg)
	if err != nil {
		logg.Error(ctx, "failed to open catalog cache", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	cartStore, err := cart.NewStore(persist, logg, storeMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build cart store", err)
		os.Exit(1)
	}

	sessions, err := session.NewContainer(persist, logg)
	if err != nil {
		logg.Error(ctx, "failed to build session container", err)
		os.Exit(1)
	}

	gwClient, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		logg.Error(ctx, "failed to build gateway client", err)
		os.Exit(1)
	}

	cache, err := catalog.NewCache(cacheDB)
	if err != nil {
		logg.Error(ctx, "failed to build catalog cache", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(gwClient, cache, logg, storeMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build catalog service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(gwClient, sessions, cfg.JWT, cfg.Admin, logg)
	if err != nil {
		logg.Error(ctx, "failed to build auth service", err)
		os.Exit(1)
	}

	processor, err := buildProcessor(ctx, cfg.Payment, logg)
	if err != nil {
		logg.Error(ctx, "failed to build payment processor", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartStore, processor, cfg.Payment, logg, storeMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build checkout service", err)
		os.Exit(1)
	}

	legacyCheckout, err := checkoutsvc.NewLegacyService(cartStore, payments.NewSimulatedProcessor(cfg.Payment, logg), logg, storeMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build legacy checkout", err)
		os.Exit(1)
	}

	panel, err := admin.NewPanel(gwClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to build admin panel", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			Redis:          redisClient,
			Sessions:       sessions,
			AuthService:    authService,
			CatalogService: catalogService,
			CartStore:      cartStore,
			Checkout:       checkoutService,
			LegacyCheckout: legacyCheckout,
			AdminPanel:     panel,
			Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		startCtx := logg.WithFields(context.Background(), map[string]any{
			"env":  cfg.App.Env,
			"addr": addr,
		})
		logg.Info(startCtx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-runCtx.Done():
		logg.Info(context.Background(), "shutdown signal received")
	case err := <-errCh:
		logg.Error(context.Background(), "storefront server stopped unexpectedly", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, cacheDB.Close())
	closeErr = multierr.Append(closeErr, persist.Close())
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	if closeErr != nil {
		logg.Error(context.Background(), "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(context.Background(), "shutdown complete")
}

func buildProcessor(ctx context.Context, cfg config.PaymentConfig, logg *logger.Logger) (payments.Processor, error) {
	if cfg.UseSquare() {
		return payments.NewSquareProcessor(ctx, cfg, logg)
	}
	return payments.NewSimulatedProcessor(cfg, logg), nil
}
