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

// HighlightRepository handles database operations for leaderboard rows.
type HighlightRepository struct {
	collection *mongo.Collection
}

func NewHighlightRepository(db *mongo.Database) *HighlightRepository {
	return &HighlightRepository{
		collection: db.Collection("activity_highlights"),
	}
}

func keyFilter(key models.HighlightKey) bson.M {
	filter := bson.M{
		"user_id": key.UserID,
		"metric":  key.Metric,
		"scope":   key.Scope,
		"type_id": key.TypeID,
	}
	if key.Year != nil {
		filter["year"] = *key.Year
	} else {
		filter["year"] = bson.M{"$exists": false}
	}
	return filter
}

// GetTopN returns the current leaderboard rows for one key, ordered by rank.
func (r *HighlightRepository) GetTopN(ctx context.Context, key models.HighlightKey) ([]models.ActivityHighlight, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.collection.Find(ctx, keyFilter(key), opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch highlights")
		return nil, fmt.Errorf("failed to fetch highlights: %v", err)
	}
	defer cursor.Close(ctx)

	var highlights []models.ActivityHighlight
	if err := cursor.All(ctx, &highlights); err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %v", err)
	}

	return highlights, nil
}

// ReplaceTopN deletes every row for the key and inserts the new set as fresh
// rows. Replacing the whole set keeps ranks contiguous and avoids partial
// updates.
func (r *HighlightRepository) ReplaceTopN(ctx context.Context, key models.HighlightKey, rows []models.ActivityHighlight) error {
	if _, err := r.collection.DeleteMany(ctx, keyFilter(key)); err != nil {
		logrus.WithError(err).Error("Failed to delete highlights for key")
		return fmt.Errorf("failed to delete highlights: %v", err)
	}

	docs := make([]interface{}, 0, len(rows))
	for i := range rows {
		rows[i].ID = primitive.NilObjectID
		rows[i].CreatedAt = time.Now()
		docs = append(docs, rows[i])
	}

	if len(docs) == 0 {
		return nil
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		logrus.WithError(err).Error("Failed to insert highlights for key")
		return fmt.Errorf("failed to insert highlights: %v", err)
	}

	return nil
}

// List returns stored leaderboard rows for a user with optional metric and
// year filters, ordered by metric then rank.
func (r *HighlightRepository) List(ctx context.Context, userID primitive.ObjectID, metric *models.HighlightMetric, scope models.HighlightScope, year *int) ([]models.ActivityHighlight, error) {
	filter := bson.M{
		"user_id": userID,
		"scope":   scope,
	}
	if metric != nil {
		filter["metric"] = *metric
	}
	if year != nil {
		filter["year"] = *year
	}

	opts := options.Find().SetSort(bson.D{{Key: "metric", Value: 1}, {Key: "rank", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to list highlights")
		return nil, fmt.Errorf("failed to list highlights: %v", err)
	}
	defer cursor.Close(ctx)

	var highlights []models.ActivityHighlight
	if err := cursor.All(ctx, &highlights); err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %v", err)
	}

	return highlights, nil
}
