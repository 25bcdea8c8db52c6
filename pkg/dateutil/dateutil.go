package dateutil

import (
	"fmt"
	"time"

	"github.com/avelkov/stride/internal/models"
)

// YearRange returns the half-open date range [Jan 1, Jan 1 of next year)
// for the given calendar year.
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// MonthRange returns the half-open date range covering the given calendar month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// WeekRange returns the half-open date range for an ISO-8601 week.
// Week 1 is the week containing January 4th, so late-December dates may
// belong to week 1 of the following year.
func WeekRange(year, week int) (time.Time, time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)

	// time.Weekday counts Sunday as 0; ISO weeks start on Monday.
	offset := int(jan4.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	week1Monday := jan4.AddDate(0, 0, -offset)

	start := week1Monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 7)
}

// BucketRange maps a goal's temporal configuration to a concrete half-open
// date range [start, end).
func BucketRange(temporal models.TemporalType, year int, month, week *int) (time.Time, time.Time, error) {
	switch temporal {
	case models.TemporalYearly:
		start, end := YearRange(year)
		return start, end, nil
	case models.TemporalMonthly:
		if month == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("monthly bucket requires month to be set")
		}
		start, end := MonthRange(year, *month)
		return start, end, nil
	case models.TemporalWeekly:
		if week == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("weekly bucket requires week to be set")
		}
		start, end := WeekRange(year, *week)
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown temporal type: %s", temporal)
	}
}
