package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/cohortiq-backend/api/controllers"
	analyticscontrollers "github.com/angelmondragon/cohortiq-backend/api/controllers/analytics"
	"github.com/angelmondragon/cohortiq-backend/api/middleware"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics"
	"github.com/angelmondragon/cohortiq-backend/pkg/config"
	"github.com/angelmondragon/cohortiq-backend/pkg/db"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	gatherer prometheus.Gatherer,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	limit := middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, logg)

	r.Route("/metrics", func(r chi.Router) {
		if gatherer != nil {
			r.Method(http.MethodGet, "/", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		}
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Get("/funnel", analyticscontrollers.Funnel(analyticsService, logg))
			r.Get("/traffic-source", analyticscontrollers.TrafficSources(analyticsService, logg))
			r.Get("/revenue", analyticscontrollers.Revenue(analyticsService, logg))
			r.Get("/categories", analyticscontrollers.Categories(analyticsService, logg))
			r.Get("/top-products", analyticscontrollers.TopProducts(analyticsService, logg))
			r.Get("/retention", analyticscontrollers.Retention(analyticsService, logg))
		})
	})

	r.Route("/experiments", func(r chi.Router) {
		r.Use(limit)
		r.Get("/"+cfg.Experiments.DefaultKey, analyticscontrollers.Experiment(analyticsService, cfg.Experiments.DefaultKey, logg))
		r.Get("/{"+analyticscontrollers.ExperimentKeyParam+"}", analyticscontrollers.ExperimentByKey(analyticsService, logg))
	})

	return r
}
