package repository

import (
	"context"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GoalRepository struct handles database operations related to goals
type GoalRepository struct {
	collection *mongo.Collection
}

// NewGoalRepository creates a new instance of GoalRepository
func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{
		collection: db.Collection("goals"),
	}
}

// CreateGoal creates a new goal in the database
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert goal")
		return nil, err
	}

	// Cast the inserted ID and assign it to the goal object
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	goal.ID = insertedID

	logger.Log.WithField("goal_id", goal.ID.Hex()).Info("Goal created successfully")
	return goal, nil
}

// GetGoalByID fetches a goal by its ID
func (r *GoalRepository) GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var goal models.Goal

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to find goal by ID")
		return nil, err
	}

	return &goal, nil
}

// GetGoals fetches goals for a specific user, scoped to a year and an
// optional month.
func (r *GoalRepository) GetGoals(ctx context.Context, userID primitive.ObjectID, year int, month *int) ([]models.Goal, error) {
	var goals []models.Goal

	filter := bson.M{"user_id": userID, "year": year}
	if month != nil {
		filter["month"] = *month
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &goals); err != nil {
		logger.Log.WithError(err).Error("Failed to decode goals")
		return nil, err
	}

	return goals, nil
}

// GetActiveGoals fetches all active non-manual goals, used by the nightly
// refresh job.
func (r *GoalRepository) GetActiveGoals(ctx context.Context) ([]models.Goal, error) {
	var goals []models.Goal

	filter := bson.M{
		"active": true,
		"type":   bson.M{"$ne": models.GoalTypeManual},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch active goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &goals); err != nil {
		return nil, err
	}

	return goals, nil
}

// UpdateGoal updates an existing goal in the database
func (r *GoalRepository) UpdateGoal(ctx context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	goal.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": goal},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to update goal")
		return nil, err
	}

	logger.Log.WithField("goal_id", id.Hex()).Info("Goal updated successfully")
	return goal, nil
}

// UpdateProgress persists a goal's accumulator and cursor in one write.
func (r *GoalRepository) UpdateProgress(ctx context.Context, id primitive.ObjectID, current float64, currentUpdated time.Time) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"current":         current,
			"current_updated": currentUpdated,
			"updated_at":      time.Now(),
		}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to update goal progress")
		return err
	}

	return nil
}

// UpdateCurrent persists a goal's accumulator without touching its cursor,
// used for manual goal adjustments.
func (r *GoalRepository) UpdateCurrent(ctx context.Context, id primitive.ObjectID, current float64) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"current":    current,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to update goal current value")
		return err
	}

	return nil
}

// DeleteGoal deletes a goal from the database by its ID
func (r *GoalRepository) DeleteGoal(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to delete goal")
		return err
	}

	logger.Log.WithField("goal_id", id.Hex()).Info("Goal deleted successfully")
	return nil
}
