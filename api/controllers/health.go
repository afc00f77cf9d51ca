package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/cohortiq-backend/api/responses"
	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
	"github.com/angelmondragon/cohortiq-backend/pkg/config"
	"github.com/angelmondragon/cohortiq-backend/pkg/db"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

const (
	envHeader        = "X-CohortIQ-Env"
	readinessTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the warehouse answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if dbP == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable").
				WithDetails(map[string]any{"dependency": "postgres"}))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
