package controllers

import (
	"context"
	"net/http"

	"github.com/popeyesteak/pos-backend/api/responses"
	"github.com/popeyesteak/pos-backend/pkg/config"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
	pkgredis "github.com/popeyesteak/pos-backend/pkg/redis"
)

// UpstreamPinger reports whether the menu backend is reachable.
type UpstreamPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-POS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the upstream backend and, when configured, redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, upstream UpstreamPinger, redisClient pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-POS-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if upstream != nil {
			if err := upstream.Ping(r.Context()); err != nil {
				checks["upstream"] = "unreachable"
				healthy = false
			} else {
				checks["upstream"] = "ok"
			}
		} else {
			checks["upstream"] = "not configured"
			healthy = false
		}

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		} else {
			checks["redis"] = "disabled"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
