package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/markethive/accounts-backend/api/responses"
	"github.com/markethive/accounts-backend/pkg/config"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketHive-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores before declaring readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["database"] = checkDependency(ctx, db)
		checks["redis"] = checkDependency(ctx, redis)
		for _, status := range checks {
			if status != "ok" {
				healthy = false
			}
		}

		w.Header().Set("X-MarketHive-Env", cfg.App.Env)
		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkDependency(ctx context.Context, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}
