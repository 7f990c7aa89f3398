package middleware

import (
	"net/http"
	"strings"

	"github.com/popeyesteak/pos-backend/api/responses"
	pkgauth "github.com/popeyesteak/pos-backend/pkg/auth"
	"github.com/popeyesteak/pos-backend/pkg/config"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

// Auth validates the session token minted at PIN sign-in and seeds the
// request context. This is a navigation gate for the terminal UI, not a
// tenant-security boundary.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithStaff(r.Context(), claims.Username)
			if logg != nil {
				ctx = logg.WithStaff(ctx, claims.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
