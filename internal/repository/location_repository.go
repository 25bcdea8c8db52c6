package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LocationRepository handles database operations related to locations.
type LocationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{
		collection: db.Collection("locations"),
	}
}

func (r *LocationRepository) CreateLocation(ctx context.Context, location *models.Location) (*models.Location, error) {
	location.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert location")
		return nil, fmt.Errorf("failed to insert location: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	location.ID = insertedID

	return location, nil
}

// GetLocationByID fetches one location. Returns (nil, nil) when the id does
// not exist.
func (r *LocationRepository) GetLocationByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var location models.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find location: %v", err)
	}
	return &location, nil
}

// GetUserLocations lists a user's locations.
func (r *LocationRepository) GetUserLocations(ctx context.Context, userID primitive.ObjectID) ([]models.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %v", err)
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %v", err)
	}
	return locations, nil
}
