package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/popeyesteak/pos-backend/internal/staff"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubStaffService struct {
	session *staff.Session
	err     error
	lastPIN string
}

func (s *stubStaffService) Login(pin string) (*staff.Session, error) {
	s.lastPIN = pin
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func TestAuthLoginSuccess(t *testing.T) {
	stub := &stubStaffService{session: &staff.Session{
		Token:     "jwt-token",
		Username:  "cashier",
		ExpiresAt: time.Now().Add(time.Hour),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"pin":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthLogin(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastPIN != "123456" {
		t.Fatalf("pin forwarded as %q", stub.lastPIN)
	}

	var envelope struct {
		Data staff.Session `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token != "jwt-token" {
		t.Fatalf("token = %q", envelope.Data.Token)
	}
}

func TestAuthLoginWrongPIN(t *testing.T) {
	stub := &stubStaffService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"pin":"000000"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthLogin(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthLoginRejectsMalformedBody(t *testing.T) {
	cases := []string{
		`{}`,
		`{"pin":"abc!"}`,
		`{"pin":"12"}`,
		`not json`,
	}
	for _, body := range cases {
		stub := &stubStaffService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AuthLogin(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
		if stub.lastPIN != "" {
			t.Fatalf("service must not be called for %q", body)
		}
	}
}
