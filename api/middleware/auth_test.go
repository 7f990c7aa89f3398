package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/popeyesteak/pos-backend/pkg/auth"
	"github.com/popeyesteak/pos-backend/pkg/config"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "pos-backend",
		ExpirationMinutes: 60,
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(authTestConfig(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(authTestConfig(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSeedsStaffContext(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgauth.MintSessionToken(cfg, time.Now(), "cashier")
	if err != nil {
		t.Fatalf("MintSessionToken: %v", err)
	}

	var seenStaff string
	handler := Auth(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenStaff = StaffFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seenStaff != "cashier" {
		t.Fatalf("staff = %q", seenStaff)
	}
}

func TestAuthAcceptsRawToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgauth.MintSessionToken(cfg, time.Now(), "cashier")
	if err != nil {
		t.Fatalf("MintSessionToken: %v", err)
	}

	handler := Auth(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for raw token, got %d", rec.Code)
	}
}
