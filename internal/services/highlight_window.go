package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/avelkov/stride/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sampleReader loads a recorded sample series for an activity.
type sampleReader interface {
	GetSampleSeries(ctx context.Context, activityID primitive.ObjectID, metric string) ([]models.TrackSample, error)
}

// powerWindowMinutes is the menu of rolling power windows ranked as
// highlights.
var powerWindowMinutes = []int{1, 2, 5, 10, 20, 30, 60}

var powerWindowMetrics = map[int]models.HighlightMetric{
	1:  models.MetricAvgPower1Min,
	2:  models.MetricAvgPower2Min,
	5:  models.MetricAvgPower5Min,
	10: models.MetricAvgPower10Min,
	20: models.MetricAvgPower20Min,
	30: models.MetricAvgPower30Min,
	60: models.MetricAvgPower60Min,
}

// bucketsPerWindow picks how many candidate start offsets are probed per
// window length. Short windows shift in fine steps, long windows in coarse
// ones, keeping the scan cost roughly flat across the menu.
func bucketsPerWindow(minutes int) int {
	switch {
	case minutes <= 2:
		return 30
	case minutes <= 10:
		return 12
	case minutes <= 30:
		return 6
	default:
		return 4
	}
}

// windowedPowerCalculator finds the best rolling average power over a fixed
// window in the activity's power sample series.
type windowedPowerCalculator struct {
	minutes int
	samples sampleReader
}

func newWindowedPowerCalculator(minutes int, samples sampleReader) *windowedPowerCalculator {
	return &windowedPowerCalculator{
		minutes: minutes,
		samples: samples,
	}
}

func (c *windowedPowerCalculator) Metric() models.HighlightMetric {
	return powerWindowMetrics[c.minutes]
}

func (c *windowedPowerCalculator) Compute(ctx context.Context, activity *models.Activity) (*models.CalculatorResult, error) {
	series, err := c.samples.GetSampleSeries(ctx, activity.ID, models.SampleMetricPower)
	if err != nil {
		return nil, fmt.Errorf("failed to load power series: %v", err)
	}
	if len(series) == 0 {
		return nil, nil
	}

	window := time.Duration(c.minutes) * time.Minute
	avg, startIdx, ok := bestWindowAverage(series, window, bucketsPerWindow(c.minutes))
	if !ok {
		return nil, nil
	}

	return &models.CalculatorResult{
		Value:   avg,
		TrackID: &startIdx,
	}, nil
}

// bestWindowAverage scans bucket-aligned window placements over the series
// and returns the highest average together with the index of the first
// sample inside the winning window. The series must be ordered by timestamp.
// ok is false when the recording is shorter than the window.
func bestWindowAverage(series []models.TrackSample, window time.Duration, buckets int) (float64, int, bool) {
	first := series[0].Timestamp
	last := series[len(series)-1].Timestamp
	if last.Sub(first) < window {
		return 0, 0, false
	}

	prefix := make([]float64, len(series)+1)
	for i, s := range series {
		prefix[i+1] = prefix[i] + s.Value
	}

	indexAtOrAfter := func(t time.Time) int {
		return sort.Search(len(series), func(i int) bool {
			return !series[i].Timestamp.Before(t)
		})
	}

	step := window / time.Duration(buckets)
	bestAvg := 0.0
	bestStart := 0
	found := false

	for start := first; !start.Add(window).After(last); start = start.Add(step) {
		lo := indexAtOrAfter(start)
		hi := indexAtOrAfter(start.Add(window))
		if hi <= lo {
			continue
		}

		avg := (prefix[hi] - prefix[lo]) / float64(hi-lo)
		if !found || avg > bestAvg {
			bestAvg = avg
			bestStart = lo
			found = true
		}
	}

	return bestAvg, bestStart, found
}
