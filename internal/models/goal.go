package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalType determines where a goal's progress comes from.
type GoalType string

const (
	GoalTypeActivity GoalType = "activity"
	GoalTypeManual   GoalType = "manual"
	GoalTypeLocation GoalType = "location"
)

// GoalAggregation determines how matching activities are folded into the
// goal's current value.
type GoalAggregation string

const (
	AggregationCount         GoalAggregation = "count"
	AggregationTotalDistance GoalAggregation = "total_distance"
	AggregationAvgDistance   GoalAggregation = "avg_distance"
	AggregationMaxDistance   GoalAggregation = "max_distance"
	AggregationDuration      GoalAggregation = "duration"
)

// TemporalType determines the calendar bucket a goal is scoped to.
type TemporalType string

const (
	TemporalYearly  TemporalType = "yearly"
	TemporalMonthly TemporalType = "monthly"
	TemporalWeekly  TemporalType = "weekly"
)

// GoalConstraints narrows the set of activities a goal counts.
// EquipmentIDs means the activity must be linked to every listed id.
// LocationID is only valid (and required) for location goals.
type GoalConstraints struct {
	TypeID       *int64               `bson:"type_id,omitempty" json:"type_id,omitempty"`
	SubTypeID    *int64               `bson:"sub_type_id,omitempty" json:"sub_type_id,omitempty"`
	EquipmentIDs []primitive.ObjectID `bson:"equipment_ids,omitempty" json:"equipment_ids,omitempty"`
	LocationID   *primitive.ObjectID  `bson:"location_id,omitempty" json:"location_id,omitempty"`
}

// Goal tracks progress toward a user-defined target within one calendar bucket.
// Current and CurrentUpdated form the incremental cursor: CurrentUpdated marks
// the last point in time up to which matching activities were folded in.
type Goal struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Current        float64            `bson:"current" json:"current"`
	Target         float64            `bson:"target" json:"target"`
	CurrentUpdated *time.Time         `bson:"current_updated,omitempty" json:"current_updated,omitempty"`
	TemporalType   TemporalType       `bson:"temporal_type" json:"temporal_type"`
	Year           int                `bson:"year" json:"year"`
	Month          *int               `bson:"month,omitempty" json:"month,omitempty"`
	Week           *int               `bson:"week,omitempty" json:"week,omitempty"`
	Type           GoalType           `bson:"type" json:"type"`
	Aggregation    GoalAggregation    `bson:"aggregation" json:"aggregation"`
	Constraints    GoalConstraints    `bson:"constraints" json:"constraints"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// PublicGoal is the read-path representation of a goal with derived progress.
type PublicGoal struct {
	Goal
	Progress float64 `json:"progress"`
	Reached  bool    `json:"reached"`
}

// ToPublic derives progress and reached from current/target.
func (g *Goal) ToPublic() PublicGoal {
	progress := 0.0
	if g.Target > 0 {
		progress = g.Current / g.Target
	}
	return PublicGoal{
		Goal:     *g,
		Progress: progress,
		Reached:  progress >= 1.0,
	}
}
