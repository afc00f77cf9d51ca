package analytics

import (
	"context"

	"github.com/angelmondragon/cohortiq-backend/internal/analytics/types"
)

type testAnalyticsService struct {
	calls int
	days  int
	weeks int
	limit int
	key   string
	err   error

	funnel     *types.FunnelResult
	traffic    []types.TrafficSourceRow
	experiment *types.ExperimentResult
	retention  *types.RetentionResult
}

func (s *testAnalyticsService) Funnel(ctx context.Context, days int) (*types.FunnelResult, error) {
	s.calls++
	s.days = days
	if s.err != nil {
		return nil, s.err
	}
	if s.funnel == nil {
		return &types.FunnelResult{Days: days, Daily: []types.DailyFunnelPoint{}}, nil
	}
	return s.funnel, nil
}

func (s *testAnalyticsService) TrafficSources(ctx context.Context, days int) ([]types.TrafficSourceRow, error) {
	s.calls++
	s.days = days
	if s.err != nil {
		return nil, s.err
	}
	if s.traffic == nil {
		return []types.TrafficSourceRow{}, nil
	}
	return s.traffic, nil
}

func (s *testAnalyticsService) Experiment(ctx context.Context, key string, days int) (*types.ExperimentResult, error) {
	s.calls++
	s.key = key
	s.days = days
	if s.err != nil {
		return nil, s.err
	}
	if s.experiment == nil {
		return &types.ExperimentResult{Experiment: key, Days: days}, nil
	}
	return s.experiment, nil
}

func (s *testAnalyticsService) Revenue(ctx context.Context, days int) ([]types.RevenuePoint, error) {
	s.calls++
	s.days = days
	if s.err != nil {
		return nil, s.err
	}
	return []types.RevenuePoint{}, nil
}

func (s *testAnalyticsService) Categories(ctx context.Context, days int) ([]types.CategorySummary, error) {
	s.calls++
	s.days = days
	if s.err != nil {
		return nil, s.err
	}
	return []types.CategorySummary{}, nil
}

func (s *testAnalyticsService) TopProducts(ctx context.Context, days, limit int) ([]types.TopProduct, error) {
	s.calls++
	s.days = days
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	return []types.TopProduct{}, nil
}

func (s *testAnalyticsService) Retention(ctx context.Context, weeks int) (*types.RetentionResult, error) {
	s.calls++
	s.weeks = weeks
	if s.err != nil {
		return nil, s.err
	}
	if s.retention == nil {
		return &types.RetentionResult{Weeks: weeks, Cohorts: []types.CohortSeries{}}, nil
	}
	return s.retention, nil
}
