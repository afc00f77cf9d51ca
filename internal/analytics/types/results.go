package types

// FunnelResult summarizes raw event counts per calendar day. Counts are event
// totals, not distinct users or sessions, so adds may exceed views on a day.
type FunnelResult struct {
	Days   int                `json:"days"`
	Daily  []DailyFunnelPoint `json:"daily"`
	Totals FunnelTotals       `json:"totals"`
	Rates  FunnelRates        `json:"rates"`
}

// DailyFunnelPoint is one calendar day with at least one event. Days without
// events are absent rather than zero-filled.
type DailyFunnelPoint struct {
	Date      string `json:"date"`
	Views     int64  `json:"views"`
	Adds      int64  `json:"adds"`
	Purchases int64  `json:"purchases"`
}

type FunnelTotals struct {
	Views     int64 `json:"views"`
	Adds      int64 `json:"adds"`
	Purchases int64 `json:"purchases"`
}

// FunnelRates are nil when the denominator stage has no events.
type FunnelRates struct {
	ViewToAdd     *float64 `json:"view_to_add"`
	AddToPurchase *float64 `json:"add_to_purchase"`
}

// TrafficSourceRow counts user-sessions that reached each stage, per
// acquisition source. A session contributes at most 1 to each stage.
type TrafficSourceRow struct {
	Source        string   `json:"traffic_source"`
	Views         int64    `json:"views"`
	Adds          int64    `json:"adds"`
	Purchases     int64    `json:"purchases"`
	ViewToAdd     *float64 `json:"view_to_add"`
	AddToPurchase *float64 `json:"add_to_purchase"`
}

// ExperimentResult compares conversion of variants A and B.
type ExperimentResult struct {
	Experiment string             `json:"experiment"`
	Days       int                `json:"days"`
	Variants   ExperimentVariants `json:"variant"`
	LiftAbs    float64            `json:"lift_abs"`
	ZScore     *float64           `json:"z_score"`
}

type ExperimentVariants struct {
	A VariantStats `json:"A"`
	B VariantStats `json:"B"`
}

type VariantStats struct {
	N              int64   `json:"n"`
	Buyers         int64   `json:"buyers"`
	ConversionRate float64 `json:"conversion_rate"`
}

// RevenuePoint is the order revenue for one calendar day, two decimals.
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue Money  `json:"revenue"`
}

type CategorySummary struct {
	Category  string `json:"category"`
	Purchases int64  `json:"purchases"`
	AvgPrice  Money  `json:"avg_price"`
}

type TopProduct struct {
	ProductID string `json:"product_id"`
	Category  string `json:"category"`
	Purchases int64  `json:"purchases"`
	Revenue   Money  `json:"revenue"`
}

type RetentionResult struct {
	Weeks   int            `json:"weeks"`
	Cohorts []CohortSeries `json:"cohorts"`
}

// CohortSeries holds active-user counts for one Monday-aligned cohort week.
// Offsets with no active users are omitted and should be read as zero.
type CohortSeries struct {
	CohortWeek string        `json:"cohort_week"`
	Series     []CohortPoint `json:"series"`
}

type CohortPoint struct {
	WeekOffset  int   `json:"week_offset"`
	ActiveUsers int64 `json:"active_users"`
}
