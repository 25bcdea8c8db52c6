package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackSample is one sampled metric value of an activity's recording,
// e.g. a power reading. Samples are addressed per (activity, metric).
type TrackSample struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActivityID primitive.ObjectID `bson:"activity_id" json:"activity_id"`
	Metric     string             `bson:"metric" json:"metric"` // e.g. "power", "speed"
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Value      float64            `bson:"value" json:"value"`
}

// Sample metric names stored in the track sample collection.
const (
	SampleMetricPower = "power"
	SampleMetricSpeed = "speed"
)
