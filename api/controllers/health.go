package controllers

import (
	"context"
	"net/http"

	"github.com/orchardlabs/storefront-backend/api/responses"
	"github.com/orchardlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the API's hard dependencies. Redis is
// checked but not required: the API degrades without it.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		checks := map[string]string{}

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}
		checks["database"] = "ok"

		checks["redis"] = "ok"
		if redisP == nil {
			checks["redis"] = "not configured"
		} else if err := redisP.Ping(r.Context()); err != nil {
			checks["redis"] = "unreachable"
			if logg != nil {
				logg.Warn(r.Context(), "redis unreachable during readiness check")
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
