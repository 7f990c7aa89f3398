package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/popeyesteak/pos-backend/api/routes"
	cartsvc "github.com/popeyesteak/pos-backend/internal/cart"
	"github.com/popeyesteak/pos-backend/internal/catalog"
	checkoutsvc "github.com/popeyesteak/pos-backend/internal/checkout"
	"github.com/popeyesteak/pos-backend/internal/options"
	"github.com/popeyesteak/pos-backend/internal/reports"
	"github.com/popeyesteak/pos-backend/internal/staff"
	"github.com/popeyesteak/pos-backend/pkg/config"
	"github.com/popeyesteak/pos-backend/pkg/logger"
	"github.com/popeyesteak/pos-backend/pkg/metrics"
	pkgredis "github.com/popeyesteak/pos-backend/pkg/redis"
	"github.com/popeyesteak/pos-backend/pkg/upstream"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	upstreamClient, err := upstream.NewClient(cfg.Upstream.BaseURL, upstream.WithTimeout(cfg.Upstream.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		os.Exit(1)
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, checkout idempotency guard disabled")
	}

	catalogService, err := catalog.NewService(upstreamClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	resolver, err := options.NewResolver(upstreamClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create option resolver", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartsvc.NewStore(), catalogService, resolver, cfg.Cart.TaxRate)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	composer, err := checkoutsvc.NewComposer(cartService, upstreamClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout composer", err)
		os.Exit(1)
	}
	reportsService, err := reports.NewService(upstreamClient, catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}
	staffService := staff.NewService(cfg.Terminal, cfg.JWT)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	// Best effort warm-up; the catalog lazily reloads on first request if
	// the backend is down right now.
	if err := catalogService.Load(context.Background()); err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "catalog warm-up failed")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"version": Version,
	})
	logg.Info(ctx, "starting pos api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			Upstream:       upstreamClient,
			Redis:          redisClient,
			HTTPMetrics:    httpMetrics,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Catalog:        catalogService,
			Resolver:       resolver,
			Carts:          cartService,
			Composer:       composer,
			Staff:          staffService,
			Reports:        reportsService,
			Version:        Version,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "pos api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
