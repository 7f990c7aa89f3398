package staff

import (
	"time"

	"github.com/popeyesteak/pos-backend/pkg/auth"
	"github.com/popeyesteak/pos-backend/pkg/config"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/security"
)

// Session is returned to the terminal after a successful PIN login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service authenticates the shared terminal PIN and mints session tokens.
type Service interface {
	Login(pin string) (*Session, error)
}

type service struct {
	terminal config.TerminalConfig
	jwt      config.JWTConfig
	now      func() time.Time
}

func NewService(terminal config.TerminalConfig, jwtCfg config.JWTConfig) Service {
	return &service{terminal: terminal, jwt: jwtCfg, now: time.Now}
}

func (s *service) Login(pin string) (*Session, error) {
	ok, err := security.MatchesTerminal(pin, s.terminal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pin verification failed")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")
	}

	now := s.now()
	token, err := auth.MintSessionToken(s.jwt, now, s.terminal.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "token mint failed")
	}

	return &Session{
		Token:     token,
		Username:  s.terminal.Username,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
	}, nil
}
