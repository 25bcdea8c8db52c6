package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const earthRadiusMeters = 6378137.0

// ActivityRepository handles database operations related to activities.
type ActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// CreateActivity inserts a new activity.
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	activity.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert activity")
		return nil, fmt.Errorf("failed to insert activity: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	activity.ID = insertedID

	logrus.WithField("activity_id", activity.ID.Hex()).Info("Activity created successfully")
	return activity, nil
}

// GetActivityByID fetches a single activity.
func (r *ActivityRepository) GetActivityByID(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	var activity models.Activity
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&activity)
	if err != nil {
		logrus.WithError(err).WithField("activity_id", id.Hex()).Warn("Failed to find activity by ID")
		return nil, fmt.Errorf("failed to find activity: %v", err)
	}
	return &activity, nil
}

// Query returns all activities matching the filter, most recent start first.
func (r *ActivityRepository) Query(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	query := bson.M{
		"user_id": filter.UserID,
		"start":   bson.M{"$gte": filter.From, "$lt": filter.To},
	}

	if filter.TypeID != nil {
		query["type_id"] = *filter.TypeID
	}
	if filter.SubTypeID != nil {
		query["sub_type_id"] = *filter.SubTypeID
	}
	if len(filter.EquipmentIDs) > 0 {
		// $all is an exact superset match: the activity must be linked to
		// every constrained equipment id.
		query["equipment_ids"] = bson.M{"$all": filter.EquipmentIDs}
	}
	if filter.CreatedAfter != nil {
		query["created_at"] = bson.M{"$gt": *filter.CreatedAfter}
	}
	if len(filter.IDs) > 0 {
		query["_id"] = bson.M{"$in": filter.IDs}
	}

	distance := bson.M{}
	if filter.RequireDistance {
		distance["$ne"] = nil
	}
	if filter.ExcludeZeroDistance {
		distance["$nin"] = bson.A{nil, float64(0)}
	}
	if len(distance) > 0 {
		query["distance"] = distance
	}

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		logrus.WithError(err).WithField("user_id", filter.UserID.Hex()).Error("Failed to query activities")
		return nil, fmt.Errorf("failed to query activities: %v", err)
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %v", err)
	}

	return activities, nil
}

// FindNearLocation returns the ids of the user's activities whose start point
// lies within radiusMeters of the location. Requires a 2dsphere index on
// start_point.
func (r *ActivityRepository) FindNearLocation(ctx context.Context, userID primitive.ObjectID, loc *models.Location, radiusMeters float64) ([]primitive.ObjectID, error) {
	query := bson.M{
		"user_id": userID,
		"start_point": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					loc.Point.Coordinates,
					radiusMeters / earthRadiusMeters, // radians
				},
			},
		},
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		logrus.WithError(err).WithField("location_id", loc.ID.Hex()).Error("Failed to run geo query")
		return nil, fmt.Errorf("failed to run geo query: %v", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode geo result: %v", err)
		}
		ids = append(ids, doc.ID)
	}

	return ids, nil
}
