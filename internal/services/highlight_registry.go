package services

import (
	"context"
	"fmt"

	"github.com/avelkov/stride/internal/models"
	"github.com/sirupsen/logrus"
)

// Calculator produces one highlight metric value for an activity. A nil
// result means the activity has no data for the metric and should not be
// ranked.
type Calculator interface {
	Metric() models.HighlightMetric
	Compute(ctx context.Context, activity *models.Activity) (*models.CalculatorResult, error)
}

// CalculatorRegistry holds the set of metric calculators and runs them
// against activities. Registration order is preserved so runs are
// deterministic.
type CalculatorRegistry struct {
	calculators map[models.HighlightMetric]Calculator
	order       []models.HighlightMetric
}

func NewCalculatorRegistry() *CalculatorRegistry {
	return &CalculatorRegistry{
		calculators: make(map[models.HighlightMetric]Calculator),
	}
}

// Register adds a calculator. Registering two calculators for the same
// metric is a wiring bug.
func (r *CalculatorRegistry) Register(c Calculator) error {
	metric := c.Metric()
	if _, exists := r.calculators[metric]; exists {
		return fmt.Errorf("calculator for metric %q already registered", metric)
	}
	r.calculators[metric] = c
	r.order = append(r.order, metric)
	return nil
}

// Metrics returns the registered metrics in registration order.
func (r *CalculatorRegistry) Metrics() []models.HighlightMetric {
	return r.order
}

// RunAll executes every registered calculator against the activity. A
// calculator failure or panic is logged and recorded as a nil result; it
// never stops the remaining calculators.
func (r *CalculatorRegistry) RunAll(ctx context.Context, activity *models.Activity) map[models.HighlightMetric]*models.CalculatorResult {
	results := make(map[models.HighlightMetric]*models.CalculatorResult, len(r.order))

	for _, metric := range r.order {
		result, err := r.runOne(ctx, r.calculators[metric], activity)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"metric":      metric,
				"activity_id": activity.ID.Hex(),
			}).Error("Highlight calculator failed")
			results[metric] = nil
			continue
		}
		results[metric] = result
	}

	return results
}

func (r *CalculatorRegistry) runOne(ctx context.Context, c Calculator, activity *models.Activity) (result *models.CalculatorResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("calculator panicked: %v", rec)
		}
	}()
	return c.Compute(ctx, activity)
}
