// Package cohort groups user activity into Monday-aligned weekly cohorts.
package cohort

import (
	"sort"
	"time"

	"github.com/angelmondragon/cohortiq-backend/internal/analytics/types"
)

const dateLayout = "2006-01-02"

// FirstSeen is the earliest day a user produced any event.
type FirstSeen struct {
	UserID string
	Day    time.Time
}

// Touch is a day on which a user was active.
type Touch struct {
	UserID string
	Day    time.Time
}

type bucketKey struct {
	cohort time.Time
	offset int
}

// WeekStart returns the Monday on or before day, at UTC midnight.
func WeekStart(day time.Time) time.Time {
	d := truncateDay(day)
	sinceMonday := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -sinceMonday)
}

// WeekOffset is the number of whole weeks between cohortWeek and day. It is
// negative when day precedes cohortWeek.
func WeekOffset(cohortWeek, day time.Time) int {
	days := daysBetween(truncateDay(cohortWeek), truncateDay(day))
	return floorDiv(days, 7)
}

// Bucket counts distinct active users per (cohort week, week offset) for
// offsets in [0, weeks-1] and pivots the counts into one series per cohort.
// Cohorts are ordered by week ascending; each series by offset ascending.
// Touches from users without a first-seen day are ignored.
func Bucket(firstSeen []FirstSeen, touches []Touch, weeks int) []types.CohortSeries {
	if weeks <= 0 {
		return []types.CohortSeries{}
	}

	cohortOf := make(map[string]time.Time, len(firstSeen))
	for _, fs := range firstSeen {
		week := WeekStart(fs.Day)
		if prev, ok := cohortOf[fs.UserID]; ok && !week.Before(prev) {
			continue
		}
		cohortOf[fs.UserID] = week
	}

	members := make(map[bucketKey]map[string]struct{})
	for _, touch := range touches {
		week, ok := cohortOf[touch.UserID]
		if !ok {
			continue
		}
		offset := WeekOffset(week, touch.Day)
		if offset < 0 || offset >= weeks {
			continue
		}
		key := bucketKey{cohort: week, offset: offset}
		users, ok := members[key]
		if !ok {
			users = make(map[string]struct{})
			members[key] = users
		}
		users[touch.UserID] = struct{}{}
	}

	byCohort := make(map[time.Time][]types.CohortPoint)
	for key, users := range members {
		byCohort[key.cohort] = append(byCohort[key.cohort], types.CohortPoint{
			WeekOffset:  key.offset,
			ActiveUsers: int64(len(users)),
		})
	}

	cohortWeeks := make([]time.Time, 0, len(byCohort))
	for week := range byCohort {
		cohortWeeks = append(cohortWeeks, week)
	}
	sort.Slice(cohortWeeks, func(i, j int) bool { return cohortWeeks[i].Before(cohortWeeks[j]) })

	out := make([]types.CohortSeries, 0, len(cohortWeeks))
	for _, week := range cohortWeeks {
		series := byCohort[week]
		sort.Slice(series, func(i, j int) bool { return series[i].WeekOffset < series[j].WeekOffset })
		out = append(out, types.CohortSeries{
			CohortWeek: week.Format(dateLayout),
			Series:     series,
		})
	}
	return out
}

// FromTouchRows splits joined retention rows into the first-seen and touch
// inputs expected by Bucket.
func FromTouchRows(rows []types.RetentionTouchRow) ([]FirstSeen, []Touch) {
	firstSeen := make([]FirstSeen, 0)
	seen := make(map[string]struct{})
	touches := make([]Touch, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; !ok {
			seen[row.UserID] = struct{}{}
			firstSeen = append(firstSeen, FirstSeen{UserID: row.UserID, Day: row.FirstSeenDay})
		}
		touches = append(touches, Touch{UserID: row.UserID, Day: row.ActiveDay})
	}
	return firstSeen, touches
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
