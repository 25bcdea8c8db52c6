package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Equipment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"` // e.g. "bike", "shoes"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
