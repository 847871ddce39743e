package events

import (
	"math"
	"time"
)

// UserActivity is one row of the grouped activity aggregate: a user's total
// event count and the timestamp of their earliest event.
type UserActivity struct {
	Username   string
	Total      int64
	FirstEvent time.Time
}

// computeAverages turns grouped activity rows into per-user daily averages.
// For each user, days active is the number of UTC calendar days from the
// date of their first event through today inclusive, floored at 1 so that
// clock skew can never produce a non-positive span. The average is the
// user's total divided by days active, rounded to two decimals.
//
// The result order follows the input order; callers wanting a display order
// sort on their side.
func computeAverages(rows []UserActivity, now time.Time) []AverageEntry {
	averages := make([]AverageEntry, 0, len(rows))
	for _, row := range rows {
		if row.Total <= 0 {
			continue
		}
		days := daysActive(row.FirstEvent, now)
		averages = append(averages, AverageEntry{
			Username: row.Username,
			Average:  round2(float64(row.Total) / float64(days)),
			Days:     days,
			Total:    row.Total,
		})
	}
	return averages
}

// daysActive counts UTC calendar days from first's date through now's date,
// inclusive of both endpoints. Minimum 1.
func daysActive(first, now time.Time) int {
	firstDate := truncateToDate(first.UTC())
	nowDate := truncateToDate(now.UTC())
	days := int(nowDate.Sub(firstDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// truncateToDate drops the time-of-day component, keeping the UTC date.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
