package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/cohortiq-backend/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

func ptr[T any](v T) *T { return &v }

func TestFunnelDefaultsToThirtyDays(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := Funnel(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/funnel", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 30, stub.days)
}

func TestFunnelEncodesNullRates(t *testing.T) {
	stub := &testAnalyticsService{funnel: &types.FunnelResult{
		Days:   7,
		Daily:  []types.DailyFunnelPoint{},
		Totals: types.FunnelTotals{},
		Rates:  types.FunnelRates{AddToPurchase: ptr(0.25)},
	}}
	handler := Funnel(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/funnel?days=7", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	rates := envelope.Data["rates"].(map[string]any)
	assert.Contains(t, rates, "view_to_add")
	assert.Nil(t, rates["view_to_add"])
	assert.Equal(t, 0.25, rates["add_to_purchase"])
	assert.Equal(t, []any{}, envelope.Data["daily"])
}

func TestNonNumericDaysIsRejectedBeforeService(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := TrafficSources(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/traffic-source?days=week", nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, stub.calls)
}

func TestServiceValidationErrorMapsTo400(t *testing.T) {
	stub := &testAnalyticsService{err: pkgerrors.New(pkgerrors.CodeValidation, "days must be between 1 and 365")}
	handler := Revenue(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/revenue?days=0", nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, 0, stub.days)
}

func TestPoolExhaustedMapsTo503(t *testing.T) {
	stub := &testAnalyticsService{err: pkgerrors.New(pkgerrors.CodePoolExhausted, "no connection available")}
	handler := Categories(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/categories", nil))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "POOL_EXHAUSTED")
}

func TestTopProductsParsesLimit(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := TopProducts(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/top-products?days=14&limit=5", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 14, stub.days)
	assert.Equal(t, 5, stub.limit)
}

func TestTopProductsDefaultLimit(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := TopProducts(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/top-products", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 10, stub.limit)
}

func TestRetentionDefaultsToFiveWeeks(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := Retention(stub, logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics/retention", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 5, stub.weeks)
}

func TestExperimentFixedKey(t *testing.T) {
	stub := &testAnalyticsService{experiment: &types.ExperimentResult{
		Experiment: "checkout_button",
		Days:       30,
		Variants: types.ExperimentVariants{
			A: types.VariantStats{N: 100, Buyers: 10, ConversionRate: 0.1},
			B: types.VariantStats{N: 100, Buyers: 15, ConversionRate: 0.15},
		},
		LiftAbs: 0.05,
		ZScore:  ptr(1.361),
	}}
	handler := Experiment(stub, "checkout_button", logger.Nop())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/experiments/checkout_button", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "checkout_button", stub.key)

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	variant := envelope.Data["variant"].(map[string]any)
	assert.Contains(t, variant, "A")
	assert.Contains(t, variant, "B")
	assert.Equal(t, 1.361, envelope.Data["z_score"])
}

func TestExperimentByKeyNotFound(t *testing.T) {
	stub := &testAnalyticsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "missing variant data").
		WithDetails(map[string]any{"experiment": "new_banner"})}

	r := chi.NewRouter()
	r.Get("/experiments/{"+ExperimentKeyParam+"}", ExperimentByKey(stub, logger.Nop()))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/experiments/new_banner?days=7", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "new_banner", stub.key)
	assert.Equal(t, 7, stub.days)
	assert.Contains(t, resp.Body.String(), "missing variant data")
}
