package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/angelmondragon/cohortiq-backend/api/responses"
	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

// RateLimit caps requests per client IP. A non-positive limit disables it.
func RateLimit(requests int, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			err := pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests").
				WithDetails(map[string]any{"limit": requests, "window": window.String()})
			responses.WriteError(r.Context(), logg, w, err)
		}),
	)
}
