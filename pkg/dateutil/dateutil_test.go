package dateutil

import (
	"testing"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearRange(t *testing.T) {
	start, end := YearRange(2024)
	assert.Equal(t, date(2024, time.January, 1), start)
	assert.Equal(t, date(2025, time.January, 1), end)
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 2)
	assert.Equal(t, date(2024, time.February, 1), start)
	assert.Equal(t, date(2024, time.March, 1), end)

	// December rolls into the next year.
	start, end = MonthRange(2023, 12)
	assert.Equal(t, date(2023, time.December, 1), start)
	assert.Equal(t, date(2024, time.January, 1), end)
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		week  int
		start time.Time
		end   time.Time
	}{
		{
			// Jan 4 2025 is a Saturday, so week 1 reaches back into 2024.
			name:  "week 1 of 2025 starts in December 2024",
			year:  2025,
			week:  1,
			start: date(2024, time.December, 30),
			end:   date(2025, time.January, 6),
		},
		{
			// Jan 4 2024 is a Thursday.
			name:  "week 1 of 2024",
			year:  2024,
			week:  1,
			start: date(2024, time.January, 1),
			end:   date(2024, time.January, 8),
		},
		{
			name:  "week 2 of 2024",
			year:  2024,
			week:  2,
			start: date(2024, time.January, 8),
			end:   date(2024, time.January, 15),
		},
		{
			name:  "week 53 of 2020",
			year:  2020,
			week:  53,
			start: date(2020, time.December, 28),
			end:   date(2021, time.January, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(tt.year, tt.week)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestWeekRangeStartsOnMonday(t *testing.T) {
	for year := 2019; year <= 2027; year++ {
		start, _ := WeekRange(year, 1)
		assert.Equal(t, time.Monday, start.Weekday(), "year %d", year)
	}
}

func TestBucketRange(t *testing.T) {
	month := 3
	week := 10

	t.Run("yearly", func(t *testing.T) {
		start, end, err := BucketRange(models.TemporalYearly, 2024, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.January, 1), start)
		assert.Equal(t, date(2025, time.January, 1), end)
	})

	t.Run("monthly", func(t *testing.T) {
		start, end, err := BucketRange(models.TemporalMonthly, 2024, &month, nil)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.March, 1), start)
		assert.Equal(t, date(2024, time.April, 1), end)
	})

	t.Run("monthly without month fails", func(t *testing.T) {
		_, _, err := BucketRange(models.TemporalMonthly, 2024, nil, nil)
		assert.Error(t, err)
	})

	t.Run("weekly", func(t *testing.T) {
		start, end, err := BucketRange(models.TemporalWeekly, 2024, nil, &week)
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, end.Sub(start))
	})

	t.Run("weekly without week fails", func(t *testing.T) {
		_, _, err := BucketRange(models.TemporalWeekly, 2024, nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown temporal type fails", func(t *testing.T) {
		_, _, err := BucketRange(models.TemporalType("daily"), 2024, nil, nil)
		assert.Error(t, err)
	})
}
