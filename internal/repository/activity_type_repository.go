package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelkov/stride/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ActivityTypeRepository handles the static activity type/subtype catalog.
type ActivityTypeRepository struct {
	types    *mongo.Collection
	subTypes *mongo.Collection
}

func NewActivityTypeRepository(db *mongo.Database) *ActivityTypeRepository {
	return &ActivityTypeRepository{
		types:    db.Collection("activity_types"),
		subTypes: db.Collection("activity_sub_types"),
	}
}

// GetType fetches one activity type. Returns (nil, nil) when the id does not
// exist.
func (r *ActivityTypeRepository) GetType(ctx context.Context, id int64) (*models.ActivityType, error) {
	var t models.ActivityType
	err := r.types.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find activity type: %v", err)
	}
	return &t, nil
}

// GetSubType fetches one activity subtype. Returns (nil, nil) when the id
// does not exist.
func (r *ActivityTypeRepository) GetSubType(ctx context.Context, id int64) (*models.ActivitySubType, error) {
	var st models.ActivitySubType
	err := r.subTypes.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find activity subtype: %v", err)
	}
	return &st, nil
}
