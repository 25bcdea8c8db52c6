package repository

import (
	"context"
	"fmt"

	"github.com/avelkov/stride/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TrackRepository handles the sampled time series attached to activities.
type TrackRepository struct {
	collection *mongo.Collection
}

func NewTrackRepository(db *mongo.Database) *TrackRepository {
	return &TrackRepository{
		collection: db.Collection("track_samples"),
	}
}

// InsertSamples stores a batch of samples for one activity and metric.
func (r *TrackRepository) InsertSamples(ctx context.Context, samples []models.TrackSample) error {
	if len(samples) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(samples))
	for i := range samples {
		docs = append(docs, samples[i])
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		logrus.WithError(err).Error("Failed to insert track samples")
		return fmt.Errorf("failed to insert track samples: %v", err)
	}

	return nil
}

// GetSampleSeries returns one activity's samples for a metric, ordered by
// timestamp.
func (r *TrackRepository) GetSampleSeries(ctx context.Context, activityID primitive.ObjectID, metric string) ([]models.TrackSample, error) {
	filter := bson.M{
		"activity_id": activityID,
		"metric":      metric,
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).WithField("activity_id", activityID.Hex()).Error("Failed to fetch sample series")
		return nil, fmt.Errorf("failed to fetch sample series: %v", err)
	}
	defer cursor.Close(ctx)

	var samples []models.TrackSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, fmt.Errorf("failed to decode sample series: %v", err)
	}

	return samples, nil
}
