package analytics

import (
	"net/http"

	"github.com/angelmondragon/cohortiq-backend/api/responses"
	"github.com/angelmondragon/cohortiq-backend/api/validators"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics/window"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

const (
	ExperimentKeyParam  = "experimentKey"
	maxExperimentKeyLen = 64
)

// Experiment serves a fixed experiment key, e.g. the checkout button test.
func Experiment(service analytics.Service, key string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeExperiment(w, r, service, key, logg)
	}
}

// ExperimentByKey reads the experiment key from the route.
func ExperimentByKey(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := validators.PathParam(r, ExperimentKeyParam, maxExperimentKeyLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeExperiment(w, r, service, key, logg)
	}
}

func writeExperiment(w http.ResponseWriter, r *http.Request, service analytics.Service, key string, logg *logger.Logger) {
	ctx := r.Context()
	days, err := validators.ParseQueryInt(r, "days", window.DefaultDays)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}

	result, err := service.Experiment(ctx, key, days)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}
