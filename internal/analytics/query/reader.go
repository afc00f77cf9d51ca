package query

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/cohortiq-backend/internal/analytics/types"
)

// Store executes one parameterized read statement and scans every row into
// dest. Implementations must release any connection before returning.
type Store interface {
	Select(ctx context.Context, dest any, query string, args ...any) error
}

// Reader runs the fixed aggregation statements against a Store. Each method
// issues exactly one statement and returns an empty slice when nothing
// matches.
type Reader struct {
	store Store
}

// NewReader builds a Reader backed by store.
func NewReader(store Store) (*Reader, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &Reader{store: store}, nil
}

func (r *Reader) DailyFunnel(ctx context.Context, since time.Time) ([]types.FunnelDayRow, error) {
	rows := []types.FunnelDayRow{}
	if err := r.store.Select(ctx, &rows, dailyFunnelSQL, since); err != nil {
		return nil, fmt.Errorf("query funnel: %w", err)
	}
	return rows, nil
}

func (r *Reader) TrafficSources(ctx context.Context, since time.Time) ([]types.TrafficSourceCountRow, error) {
	rows := []types.TrafficSourceCountRow{}
	if err := r.store.Select(ctx, &rows, trafficSourceSQL, since); err != nil {
		return nil, fmt.Errorf("query traffic sources: %w", err)
	}
	return rows, nil
}

// ExperimentConversion returns per-variant counts. ok is false when the
// statement produced no row at all.
func (r *Reader) ExperimentConversion(ctx context.Context, key string, since time.Time) (row types.ExperimentCountsRow, ok bool, err error) {
	rows := []types.ExperimentCountsRow{}
	if err := r.store.Select(ctx, &rows, experimentSQL, key, since); err != nil {
		return types.ExperimentCountsRow{}, false, fmt.Errorf("query experiment %s: %w", key, err)
	}
	if len(rows) == 0 {
		return types.ExperimentCountsRow{}, false, nil
	}
	return rows[0], true, nil
}

func (r *Reader) RevenueByDay(ctx context.Context, since time.Time) ([]types.RevenueDayRow, error) {
	rows := []types.RevenueDayRow{}
	if err := r.store.Select(ctx, &rows, revenueSQL, since); err != nil {
		return nil, fmt.Errorf("query revenue: %w", err)
	}
	return rows, nil
}

func (r *Reader) CategoryPurchases(ctx context.Context, since time.Time) ([]types.CategoryRow, error) {
	rows := []types.CategoryRow{}
	if err := r.store.Select(ctx, &rows, categorySQL, since); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return rows, nil
}

func (r *Reader) TopProducts(ctx context.Context, since time.Time, limit int) ([]types.TopProductRow, error) {
	rows := []types.TopProductRow{}
	if err := r.store.Select(ctx, &rows, topProductsSQL, since, limit); err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	return rows, nil
}

func (r *Reader) RetentionFeed(ctx context.Context, since time.Time) ([]types.RetentionTouchRow, error) {
	rows := []types.RetentionTouchRow{}
	if err := r.store.Select(ctx, &rows, retentionSQL, since); err != nil {
		return nil, fmt.Errorf("query retention: %w", err)
	}
	return rows, nil
}
