package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rows scanned from the aggregation statements. Column tags match the SELECT
// aliases in internal/analytics/query.

type FunnelDayRow struct {
	Day       string `gorm:"column:day"`
	Views     int64  `gorm:"column:views"`
	Adds      int64  `gorm:"column:adds"`
	Purchases int64  `gorm:"column:purchases"`
}

type TrafficSourceCountRow struct {
	Source    string `gorm:"column:traffic_source"`
	Views     int64  `gorm:"column:views"`
	Adds      int64  `gorm:"column:adds"`
	Purchases int64  `gorm:"column:purchases"`
}

// ExperimentCountsRow carries distinct users (N) and distinct purchasers (X)
// per variant. A nil field means the variant had no rows in the window.
type ExperimentCountsRow struct {
	NA *int64 `gorm:"column:n_a"`
	XA *int64 `gorm:"column:x_a"`
	NB *int64 `gorm:"column:n_b"`
	XB *int64 `gorm:"column:x_b"`
}

// Complete reports whether both variants are present.
func (r ExperimentCountsRow) Complete() bool {
	return r.NA != nil && r.XA != nil && r.NB != nil && r.XB != nil
}

type RevenueDayRow struct {
	Day     string          `gorm:"column:day"`
	Revenue decimal.Decimal `gorm:"column:revenue"`
}

type CategoryRow struct {
	Category  string          `gorm:"column:category"`
	Purchases int64           `gorm:"column:purchases"`
	AvgPrice  decimal.Decimal `gorm:"column:avg_price"`
}

type TopProductRow struct {
	ProductID string          `gorm:"column:product_id"`
	Category  string          `gorm:"column:category"`
	Purchases int64           `gorm:"column:purchases"`
	Revenue   decimal.Decimal `gorm:"column:revenue"`
}

// RetentionTouchRow is one distinct (user, active day) pair joined with the
// user's first-seen day over all history.
type RetentionTouchRow struct {
	UserID       string    `gorm:"column:user_id"`
	FirstSeenDay time.Time `gorm:"column:first_seen_day"`
	ActiveDay    time.Time `gorm:"column:active_day"`
}
