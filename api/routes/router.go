package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/popeyesteak/pos-backend/api/controllers"
	"github.com/popeyesteak/pos-backend/api/middleware"
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

// Deps carries everything the router wires together.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Upstream       *upstream.Client
	Redis          *pkgredis.Client
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Catalog        catalog.Service
	Resolver       options.Resolver
	Carts          cartsvc.Service
	Composer       checkoutsvc.Composer
	Staff          staff.Service
	Reports        reports.Service
	Version        string
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware())
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		var upstreamPinger controllers.UpstreamPinger
		if deps.Upstream != nil {
			upstreamPinger = deps.Upstream
		}
		var redisPinger pkgredis.Pinger
		if deps.Redis != nil {
			redisPinger = deps.Redis
		}
		r.Get("/ready", controllers.HealthReady(cfg, logg, upstreamPinger, redisPinger))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	if deps.Upstream != nil {
		relayClient := &http.Client{Timeout: cfg.Upstream.Timeout}
		r.Handle("/api/proxy/*", controllers.Relay(deps.Upstream.BaseURL(), relayClient, logg))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Staff, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/version", controllers.VersionInfo(deps.Version))
		r.Get("/catalog", controllers.CatalogList(deps.Catalog, logg))
		r.Post("/catalog/refresh", controllers.CatalogRefresh(deps.Catalog, logg))
		r.Get("/tables", controllers.TableList(deps.Catalog, logg))
		r.Get("/products/{productId}/option-groups", controllers.ProductOptionGroups(deps.Resolver, logg))

		r.Route("/tables/{tableId}", func(r chi.Router) {
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
				r.Patch("/items/{slotKey}", controllers.CartUpdateItem(deps.Carts, logg))
				r.Delete("/items/{slotKey}", controllers.CartRemoveItem(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
			})

			if deps.Redis != nil {
				r.With(middleware.Idempotency(deps.Redis, cfg.Cart.IdempotencyTTL, logg)).
					Post("/checkout", controllers.Checkout(deps.Composer, logg))
			} else {
				r.Post("/checkout", controllers.Checkout(deps.Composer, logg))
			}
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", controllers.ReportsSales(deps.Reports, logg))
			r.Post("/profit", controllers.ReportsProfit(logg))
		})
	})

	return r
}
