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

// EquipmentRepository handles database operations related to equipment.
type EquipmentRepository struct {
	collection *mongo.Collection
}

func NewEquipmentRepository(db *mongo.Database) *EquipmentRepository {
	return &EquipmentRepository{
		collection: db.Collection("equipment"),
	}
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error) {
	equipment.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, equipment)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert equipment")
		return nil, fmt.Errorf("failed to insert equipment: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	equipment.ID = insertedID

	return equipment, nil
}

// GetEquipmentByID fetches one equipment item. Returns (nil, nil) when the id
// does not exist, so callers can distinguish "not found" from a real failure.
func (r *EquipmentRepository) GetEquipmentByID(ctx context.Context, id primitive.ObjectID) (*models.Equipment, error) {
	var equipment models.Equipment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&equipment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment: %v", err)
	}
	return &equipment, nil
}

// GetUserEquipment lists a user's equipment.
func (r *EquipmentRepository) GetUserEquipment(ctx context.Context, userID primitive.ObjectID) ([]models.Equipment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch equipment: %v", err)
	}
	defer cursor.Close(ctx)

	var items []models.Equipment
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %v", err)
	}
	return items, nil
}
