package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/cohortiq-backend/internal/analytics/cohort"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics/query"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics/stats"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics/types"
	"github.com/angelmondragon/cohortiq-backend/internal/analytics/window"
	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
	"github.com/angelmondragon/cohortiq-backend/pkg/metrics"
)

const (
	OpFunnel         = "funnel"
	OpTrafficSources = "traffic_sources"
	OpExperiment     = "experiment"
	OpRevenue        = "revenue"
	OpCategories     = "categories"
	OpTopProducts    = "top_products"
	OpRetention      = "retention"
)

const (
	variantA = "A"
	variantB = "B"
)

// Service computes the dashboard metrics. Every method validates its window
// before touching storage and either returns a complete result or an error.
type Service interface {
	Funnel(ctx context.Context, days int) (*types.FunnelResult, error)
	TrafficSources(ctx context.Context, days int) ([]types.TrafficSourceRow, error)
	// Experiment returns NOT_FOUND when either variant has no data.
	Experiment(ctx context.Context, key string, days int) (*types.ExperimentResult, error)
	Revenue(ctx context.Context, days int) ([]types.RevenuePoint, error)
	Categories(ctx context.Context, days int) ([]types.CategorySummary, error)
	TopProducts(ctx context.Context, days, limit int) ([]types.TopProduct, error)
	Retention(ctx context.Context, weeks int) (*types.RetentionResult, error)
}

// ServiceParams wires the collaborators of the analytics service.
type ServiceParams struct {
	Store   query.Store
	Metrics *metrics.QueryMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	reader  *query.Reader
	metrics *metrics.QueryMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds an analytics service reading through the given store.
func NewService(params ServiceParams) (Service, error) {
	reader, err := query.NewReader(params.Store)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		reader:  reader,
		metrics: params.Metrics,
		logg:    logg,
		now:     now,
	}, nil
}

func (s *service) Funnel(ctx context.Context, days int) (result *types.FunnelResult, err error) {
	w, err := window.Days(days, s.now())
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpFunnel, time.Now(), &err)

	rows, err := s.reader.DailyFunnel(ctx, w.Since)
	if err != nil {
		return nil, err
	}

	out := &types.FunnelResult{Days: days, Daily: make([]types.DailyFunnelPoint, 0, len(rows))}
	for _, row := range rows {
		out.Daily = append(out.Daily, types.DailyFunnelPoint{
			Date:      row.Day,
			Views:     row.Views,
			Adds:      row.Adds,
			Purchases: row.Purchases,
		})
		out.Totals.Views += row.Views
		out.Totals.Adds += row.Adds
		out.Totals.Purchases += row.Purchases
	}
	out.Rates = types.FunnelRates{
		ViewToAdd:     stats.Rate(out.Totals.Adds, out.Totals.Views),
		AddToPurchase: stats.Rate(out.Totals.Purchases, out.Totals.Adds),
	}
	return out, nil
}

func (s *service) TrafficSources(ctx context.Context, days int) (result []types.TrafficSourceRow, err error) {
	w, err := window.Days(days, s.now())
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpTrafficSources, time.Now(), &err)

	rows, err := s.reader.TrafficSources(ctx, w.Since)
	if err != nil {
		return nil, err
	}

	out := make([]types.TrafficSourceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.TrafficSourceRow{
			Source:        row.Source,
			Views:         row.Views,
			Adds:          row.Adds,
			Purchases:     row.Purchases,
			ViewToAdd:     stats.Rate(row.Adds, row.Views),
			AddToPurchase: stats.Rate(row.Purchases, row.Adds),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Purchases != out[j].Purchases {
			return out[i].Purchases > out[j].Purchases
		}
		return out[i].Adds > out[j].Adds
	})
	return out, nil
}

func (s *service) Experiment(ctx context.Context, key string, days int) (result *types.ExperimentResult, err error) {
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "experiment key required").
			WithDetails(map[string]any{"field": "experiment"})
	}
	w, err := window.Days(days, s.now())
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpExperiment, time.Now(), &err)

	row, ok, err := s.reader.ExperimentConversion(ctx, key, w.Since)
	if err != nil {
		return nil, err
	}
	if !ok || !row.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "missing variant data").
			WithDetails(map[string]any{"experiment": key, "variants": []string{variantA, variantB}})
	}

	test := stats.TwoProportionTest(*row.NA, *row.XA, *row.NB, *row.XB)
	return &types.ExperimentResult{
		Experiment: key,
		Days:       days,
		Variants: types.ExperimentVariants{
			A: types.VariantStats{N: *row.NA, Buyers: *row.XA, ConversionRate: stats.Round(test.PA, stats.ConversionPlaces)},
			B: types.VariantStats{N: *row.NB, Buyers: *row.XB, ConversionRate: stats.Round(test.PB, stats.ConversionPlaces)},
		},
		LiftAbs: test.LiftAbs,
		ZScore:  test.Z,
	}, nil
}

func (s *service) Revenue(ctx context.Context, days int) (result []types.RevenuePoint, err error) {
	w, err := window.Days(days, s.now())
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpRevenue, time.Now(), &err)

	rows, err := s.reader.RevenueByDay(ctx, w.Since)
	if err != nil {
		return nil, err
	}

	out := make([]types.RevenuePoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.RevenuePoint{Date: row.Day, Revenue: types.NewMoney(row.Revenue)})
	}
	return out, nil
}

func (s *service) Categories(ctx context.Context, days int) (result []types.CategorySummary, err error) {
	w, err := window.Days(days, s.now())
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpCategories, time.Now(), &err)

	rows, err := s.reader.CategoryPurchases(ctx, w.Since)
	if err != nil {
		return nil, err
	}

	out := make([]types.CategorySummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.CategorySummary{
			Category:  row.Category,
			Purchases: row.Purchases,
			AvgPrice:  types.NewMoney(row.AvgPrice),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Purchases > out[j].Purchases })
	return out, nil
}

func (s *service) TopProducts(ctx context.Context, days, limit int) (result []types.TopProduct, err error) {
	w, err := window.Days(days, s.now())
	if err != nil {
		return nil, err
	}
	if limit, err = window.Limit(limit); err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpTopProducts, time.Now(), &err)

	rows, err := s.reader.TopProducts(ctx, w.Since, limit)
	if err != nil {
		return nil, err
	}

	out := make([]types.TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.TopProduct{
			ProductID: row.ProductID,
			Category:  row.Category,
			Purchases: row.Purchases,
			Revenue:   types.NewMoney(row.Revenue),
		})
	}
	return out, nil
}

func (s *service) Retention(ctx context.Context, weeks int) (result *types.RetentionResult, err error) {
	w, err := window.Weeks(weeks, s.now())
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, OpRetention, time.Now(), &err)

	// Touches start at the Monday of the oldest cohort week so its offset 0
	// keeps every member.
	rows, err := s.reader.RetentionFeed(ctx, cohort.WeekStart(w.Since))
	if err != nil {
		return nil, err
	}

	firstSeen, touches := cohort.FromTouchRows(rows)
	return &types.RetentionResult{
		Weeks:   weeks,
		Cohorts: cohort.Bucket(firstSeen, touches, weeks),
	}, nil
}

func (s *service) observe(ctx context.Context, op string, start time.Time, errp *error) {
	s.metrics.ObserveDuration(op, time.Since(start))
	if *errp == nil {
		s.metrics.IncSuccess(op)
		return
	}

	code := pkgerrors.CodeOf(*errp)
	s.metrics.IncFailure(op, string(code))
	ctx = s.logg.WithOperation(ctx, op)
	ctx = s.logg.WithField(ctx, "error_code", code)
	s.logg.Error(ctx, fmt.Sprintf("analytics %s failed", op), *errp)
}
