package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	cartsvc "github.com/popeyesteak/pos-backend/internal/cart"
	"github.com/popeyesteak/pos-backend/internal/catalog"
	checkoutsvc "github.com/popeyesteak/pos-backend/internal/checkout"
	"github.com/popeyesteak/pos-backend/internal/options"
	"github.com/popeyesteak/pos-backend/internal/reports"
	"github.com/popeyesteak/pos-backend/internal/staff"
	pkgauth "github.com/popeyesteak/pos-backend/pkg/auth"
	"github.com/popeyesteak/pos-backend/pkg/config"
	"github.com/popeyesteak/pos-backend/pkg/logger"
	"github.com/popeyesteak/pos-backend/pkg/metrics"
	"github.com/popeyesteak/pos-backend/pkg/upstream"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		Upstream: config.UpstreamConfig{
			BaseURL: "http://backend.local",
			Timeout: 5 * time.Second,
		},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "pos-backend",
			ExpirationMinutes: 60,
		},
		Terminal: config.TerminalConfig{Username: "cashier", PIN: "123456"},
		Cart: config.CartConfig{
			TaxRate:        decimal.RequireFromString("0.07"),
			IdempotencyTTL: time.Minute,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func testRouter(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	cfg := testConfig()
	if backendURL != "" {
		cfg.Upstream.BaseURL = backendURL
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	upstreamClient, err := upstream.NewClient(cfg.Upstream.BaseURL)
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	catalogService, err := catalog.NewService(upstreamClient)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	resolver, err := options.NewResolver(upstreamClient)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	cartService, err := cartsvc.NewService(cartsvc.NewStore(), catalogService, resolver, cfg.Cart.TaxRate)
	if err != nil {
		t.Fatalf("carts: %v", err)
	}
	composer, err := checkoutsvc.NewComposer(cartService, upstreamClient)
	if err != nil {
		t.Fatalf("composer: %v", err)
	}
	reportsService, err := reports.NewService(upstreamClient, catalogService)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}

	registry := prometheus.NewRegistry()
	return NewRouter(Deps{
		Config:         cfg,
		Logger:         logg,
		Upstream:       upstreamClient,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Catalog:        catalogService,
		Resolver:       resolver,
		Carts:          cartService,
		Composer:       composer,
		Staff:          staff.NewService(cfg.Terminal, cfg.JWT),
		Reports:        reportsService,
		Version:        "test",
	})
}

func TestHealthLive(t *testing.T) {
	router := testRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-POS-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := testRouter(t, "")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/catalog"},
		{http.MethodGet, "/api/v1/tables"},
		{http.MethodGet, "/api/v1/tables/4/cart/"},
		{http.MethodPost, "/api/v1/tables/4/checkout"},
		{http.MethodGet, "/api/v1/reports/sales"},
		{http.MethodGet, "/api/v1/version"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestLoginThenAuthorizedRequest(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer backend.Close()

	router := testRouter(t, backend.URL)

	rec := httptest.NewRecorder()
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"pin":"123456"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, loginReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data staff.Session `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	claims, err := pkgauth.ParseSessionToken(testConfig().JWT, envelope.Data.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Username != "cashier" {
		t.Fatalf("claims username = %q", claims.Username)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog with token: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := testRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("request counter missing from exposition")
	}
}

func TestRelayMountedWithoutAuth(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer backend.Close()

	router := testRouter(t, backend.URL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proxy/menus/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("relay: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("relay CORS header missing")
	}
}
