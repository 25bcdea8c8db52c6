package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON point, stored for geo queries against locations.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"` // always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// Activity is one recorded workout. Summary metrics (speed, power, elevation)
// are precomputed during ingestion; pointer fields are absent when the
// recording device did not provide them.
type Activity struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Name              string               `bson:"name" json:"name"`
	Start             time.Time            `bson:"start" json:"start"`
	DurationSec       float64              `bson:"duration_sec" json:"duration_sec"`
	MovingDurationSec *float64             `bson:"moving_duration_sec,omitempty" json:"moving_duration_sec,omitempty"`
	Distance          *float64             `bson:"distance,omitempty" json:"distance,omitempty"` // kilometers
	TypeID            int64                `bson:"type_id" json:"type_id"`
	SubTypeID         *int64               `bson:"sub_type_id,omitempty" json:"sub_type_id,omitempty"`
	EquipmentIDs      []primitive.ObjectID `bson:"equipment_ids,omitempty" json:"equipment_ids,omitempty"`
	ElevationGain     *float64             `bson:"elevation_gain,omitempty" json:"elevation_gain,omitempty"` // meters
	AvgSpeed          *float64             `bson:"avg_speed,omitempty" json:"avg_speed,omitempty"`           // km/h
	MaxSpeed          *float64             `bson:"max_speed,omitempty" json:"max_speed,omitempty"`           // km/h
	AvgPower          *float64             `bson:"avg_power,omitempty" json:"avg_power,omitempty"`           // watts
	MaxPower          *float64             `bson:"max_power,omitempty" json:"max_power,omitempty"`           // watts
	StartPoint        *GeoPoint            `bson:"start_point,omitempty" json:"start_point,omitempty"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
}

// ActivityFilter describes one filtered activity query. Zero-valued fields
// are not applied. From/To form a half-open range on the activity start time.
type ActivityFilter struct {
	UserID primitive.ObjectID
	From   time.Time
	To     time.Time

	TypeID    *int64
	SubTypeID *int64

	// The activity must be linked to every listed equipment id.
	EquipmentIDs []primitive.ObjectID

	// Restrict to activities created strictly after this time (the goal cursor).
	CreatedAfter *time.Time

	// Restrict to a candidate id set (geo-matched activities for location goals).
	IDs []primitive.ObjectID

	// Require a non-null distance (distance aggregations).
	RequireDistance bool

	// Exclude zero distances (location goals).
	ExcludeZeroDistance bool
}

// ActivityType is a coarse activity category, e.g. cycling or running.
type ActivityType struct {
	ID   int64  `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// ActivitySubType refines an ActivityType, e.g. gravel vs. road cycling.
type ActivitySubType struct {
	ID     int64  `bson:"_id" json:"id"`
	TypeID int64  `bson:"type_id" json:"type_id"`
	Name   string `bson:"name" json:"name"`
}
