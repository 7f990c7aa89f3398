package staff

import (
	"testing"
	"time"

	"github.com/popeyesteak/pos-backend/pkg/auth"
	"github.com/popeyesteak/pos-backend/pkg/config"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/security"
)

func testConfig(t *testing.T) (config.TerminalConfig, config.JWTConfig) {
	t.Helper()
	return config.TerminalConfig{
			Username:         "cashier",
			PIN:              "123456",
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}, config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "pos-backend",
			ExpirationMinutes: 60,
		}
}

func TestLoginSuccess(t *testing.T) {
	terminal, jwtCfg := testConfig(t)
	svc := NewService(terminal, jwtCfg)

	session, err := svc.Login("123456")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Username != "cashier" {
		t.Fatalf("username = %q", session.Username)
	}
	if session.Token == "" {
		t.Fatalf("expected a token")
	}
	if remaining := time.Until(session.ExpiresAt); remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Fatalf("expiry out of range: %v", session.ExpiresAt)
	}

	claims, err := auth.ParseSessionToken(jwtCfg, session.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.Username != "cashier" {
		t.Fatalf("claims username = %q", claims.Username)
	}
}

func TestLoginWrongPIN(t *testing.T) {
	terminal, jwtCfg := testConfig(t)
	svc := NewService(terminal, jwtCfg)

	_, err := svc.Login("000000")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginWithHashedPIN(t *testing.T) {
	terminal, jwtCfg := testConfig(t)
	hash, err := security.HashPIN("123456", terminal)
	if err != nil {
		t.Fatalf("HashPIN: %v", err)
	}
	terminal.PIN = ""
	terminal.PINHash = hash

	svc := NewService(terminal, jwtCfg)
	if _, err := svc.Login("123456"); err != nil {
		t.Fatalf("Login with hash: %v", err)
	}
	if _, err := svc.Login("654321"); err == nil {
		t.Fatalf("expected rejection for wrong pin")
	}
}
