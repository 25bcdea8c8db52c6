package services

import (
	"context"

	"github.com/avelkov/stride/internal/models"
)

// scalarCalculator lifts a single field off the activity into a highlight
// metric.
type scalarCalculator struct {
	metric  models.HighlightMetric
	extract func(a *models.Activity) *float64
}

func (c *scalarCalculator) Metric() models.HighlightMetric {
	return c.metric
}

func (c *scalarCalculator) Compute(_ context.Context, activity *models.Activity) (*models.CalculatorResult, error) {
	value := c.extract(activity)
	if value == nil {
		return nil, nil
	}
	return &models.CalculatorResult{Value: *value}, nil
}

// RegisterStandardCalculators wires the full metric set into the registry:
// the scalar activity fields plus the windowed power metrics computed from
// the power sample series.
func RegisterStandardCalculators(registry *CalculatorRegistry, samples sampleReader) error {
	scalars := []*scalarCalculator{
		{
			metric: models.MetricDuration,
			extract: func(a *models.Activity) *float64 {
				// Moving duration is the better effort measure when the
				// recording includes pauses. A zero moving duration means
				// the device did not really track it, so fall back to the
				// total.
				if a.MovingDurationSec != nil && *a.MovingDurationSec > 0 {
					return a.MovingDurationSec
				}
				d := a.DurationSec
				return &d
			},
		},
		{
			metric: models.MetricDistance,
			extract: func(a *models.Activity) *float64 {
				// A zero distance is a degenerate recording, not a best.
				if a.Distance == nil || *a.Distance == 0 {
					return nil
				}
				return a.Distance
			},
		},
		{
			metric:  models.MetricElevationGain,
			extract: func(a *models.Activity) *float64 { return a.ElevationGain },
		},
		{
			metric:  models.MetricAvgSpeed,
			extract: func(a *models.Activity) *float64 { return a.AvgSpeed },
		},
		{
			metric:  models.MetricMaxSpeed,
			extract: func(a *models.Activity) *float64 { return a.MaxSpeed },
		},
		{
			metric:  models.MetricAvgPower,
			extract: func(a *models.Activity) *float64 { return a.AvgPower },
		},
		{
			metric:  models.MetricMaxPower,
			extract: func(a *models.Activity) *float64 { return a.MaxPower },
		},
	}

	for _, c := range scalars {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	for _, minutes := range powerWindowMinutes {
		if err := registry.Register(newWindowedPowerCalculator(minutes, samples)); err != nil {
			return err
		}
	}

	return nil
}
