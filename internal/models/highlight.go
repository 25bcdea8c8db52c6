package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HighlightMetric identifies one personal-best leaderboard. The set is open:
// new calculators register new metrics without schema changes.
type HighlightMetric string

const (
	MetricDuration      HighlightMetric = "duration"
	MetricDistance      HighlightMetric = "distance"
	MetricElevationGain HighlightMetric = "elevation_gain"
	MetricAvgSpeed      HighlightMetric = "avg_speed"
	MetricMaxSpeed      HighlightMetric = "max_speed"
	MetricAvgPower      HighlightMetric = "avg_power"
	MetricMaxPower      HighlightMetric = "max_power"
	MetricAvgPower1Min  HighlightMetric = "avg_power_1min"
	MetricAvgPower2Min  HighlightMetric = "avg_power_2min"
	MetricAvgPower5Min  HighlightMetric = "avg_power_5min"
	MetricAvgPower10Min HighlightMetric = "avg_power_10min"
	MetricAvgPower20Min HighlightMetric = "avg_power_20min"
	MetricAvgPower30Min HighlightMetric = "avg_power_30min"
	MetricAvgPower60Min HighlightMetric = "avg_power_60min"
)

// HighlightScope separates rankings within one calendar year from
// rankings across all time.
type HighlightScope string

const (
	ScopeYearly   HighlightScope = "yearly"
	ScopeLifetime HighlightScope = "lifetime"
)

// HighlightKey identifies one independent top-N ranking.
// Year is nil for lifetime scope.
type HighlightKey struct {
	UserID primitive.ObjectID
	Metric HighlightMetric
	Scope  HighlightScope
	Year   *int
	TypeID int64
}

// ActivityHighlight is one row of a top-N leaderboard. Rows for a key are
// always replaced as a whole set, so ranks stay contiguous 1..count.
type ActivityHighlight struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	ActivityID primitive.ObjectID `bson:"activity_id" json:"activity_id"`
	TypeID     int64              `bson:"type_id" json:"type_id"`
	Metric     HighlightMetric    `bson:"metric" json:"metric"`
	Scope      HighlightScope     `bson:"scope" json:"scope"`
	Year       *int               `bson:"year,omitempty" json:"year,omitempty"`
	Value      float64            `bson:"value" json:"value"`
	TrackID    *int               `bson:"track_id,omitempty" json:"track_id,omitempty"`
	Rank       int                `bson:"rank" json:"rank"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// PublicHighlight is the read-path representation of a leaderboard row.
type PublicHighlight ActivityHighlight

// ToPublic rounds the stored value for presentation: power metrics are
// reported as whole watts and duration as whole seconds, the precision the
// recording devices actually deliver.
func (h *ActivityHighlight) ToPublic() PublicHighlight {
	public := PublicHighlight(*h)
	if h.Metric == MetricDuration || isPowerMetric(h.Metric) {
		public.Value = math.Trunc(h.Value)
	}
	return public
}

func isPowerMetric(metric HighlightMetric) bool {
	switch metric {
	case MetricAvgPower, MetricMaxPower,
		MetricAvgPower1Min, MetricAvgPower2Min, MetricAvgPower5Min,
		MetricAvgPower10Min, MetricAvgPower20Min, MetricAvgPower30Min,
		MetricAvgPower60Min:
		return true
	}
	return false
}

// CalculatorResult is the transient output of one highlight calculator.
// TrackID references the sample offset of the sub-segment that produced a
// windowed value.
type CalculatorResult struct {
	Value   float64
	TrackID *int
}
