package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a user-defined place of interest used by location goals.
type Location struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name      string             `bson:"name" json:"name"`
	Point     GeoPoint           `bson:"point" json:"point"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
