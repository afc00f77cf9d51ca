package analytics

import (
	"net/http"

	"github.com/angelmondragon/cohortiq-backend/api/responses"
	"github.com/angelmondragon/cohortiq-backend/api/validators"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics/window"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

func Funnel(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := validators.ParseQueryInt(r, "days", window.DefaultDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Funnel(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func TrafficSources(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := validators.ParseQueryInt(r, "days", window.DefaultDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := service.TrafficSources(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Revenue(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := validators.ParseQueryInt(r, "days", window.DefaultDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		points, err := service.Revenue(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, points)
	}
}

func Categories(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := validators.ParseQueryInt(r, "days", window.DefaultDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out, err := service.Categories(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func TopProducts(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := validators.ParseQueryInt(r, "days", window.DefaultDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", window.DefaultLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out, err := service.TopProducts(ctx, days, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func Retention(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		weeks, err := validators.ParseQueryInt(r, "weeks", window.DefaultWeeks)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Retention(ctx, weeks)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
