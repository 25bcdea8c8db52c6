package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrActivityNotFound is returned when an activity id does not exist or
// belongs to another user.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityService encapsulates the business logic for recorded activities.
type ActivityService struct {
	repo   *repository.ActivityRepository
	tracks *repository.TrackRepository
	types  typeCatalog
}

func NewActivityService(repo *repository.ActivityRepository, tracks *repository.TrackRepository, types typeCatalog) *ActivityService {
	return &ActivityService{
		repo:   repo,
		tracks: tracks,
		types:  types,
	}
}

// CreateActivity validates and stores a new activity.
func (s *ActivityService) CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	if activity.Name == "" {
		return nil, newValidationError("Invalid activity: name is required")
	}
	if activity.DurationSec < 0 {
		return nil, newValidationError("Invalid activity: duration cannot be negative")
	}

	mainType, err := s.types.GetType(ctx, activity.TypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve activity type: %v", err)
	}
	if mainType == nil {
		return nil, newValidationError("Invalid activity: activity type %d not found", activity.TypeID)
	}

	if activity.SubTypeID != nil {
		subType, err := s.types.GetSubType(ctx, *activity.SubTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve activity subtype: %v", err)
		}
		if subType == nil {
			return nil, newValidationError("Invalid activity: activity subtype %d not found", *activity.SubTypeID)
		}
		if subType.TypeID != activity.TypeID {
			return nil, newValidationError("Invalid activity: subtype %d does not belong to type %d", *activity.SubTypeID, activity.TypeID)
		}
	}

	created, err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Service failed to create activity")
		return nil, fmt.Errorf("failed to create activity: %v", err)
	}

	return created, nil
}

// GetActivity fetches an activity owned by the given user.
func (s *ActivityService) GetActivity(ctx context.Context, id, userID primitive.ObjectID) (*models.Activity, error) {
	activity, err := s.repo.GetActivityByID(ctx, id)
	if err != nil {
		return nil, ErrActivityNotFound
	}
	if activity.UserID != userID {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// AddSampleSeries attaches a recorded sample series to an activity. Samples
// are stamped with the activity id and metric before storage.
func (s *ActivityService) AddSampleSeries(ctx context.Context, activityID, userID primitive.ObjectID, metric string, samples []models.TrackSample) error {
	if metric != models.SampleMetricPower && metric != models.SampleMetricSpeed {
		return newValidationError("Invalid sample metric: %q", metric)
	}
	if len(samples) == 0 {
		return newValidationError("Invalid sample series: no samples provided")
	}

	if _, err := s.GetActivity(ctx, activityID, userID); err != nil {
		return err
	}

	for i := range samples {
		samples[i].ActivityID = activityID
		samples[i].Metric = metric
	}

	if err := s.tracks.InsertSamples(ctx, samples); err != nil {
		return fmt.Errorf("failed to store sample series: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"activity_id": activityID.Hex(),
		"metric":      metric,
		"samples":     len(samples),
	}).Info("Sample series stored")

	return nil
}
