package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrGoalNotFound is returned when a goal id does not exist or belongs to
	// another user.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrNotManualGoal is returned when a manual adjustment targets a goal
	// whose progress is derived from activities.
	ErrNotManualGoal = errors.New("goal progress is derived and cannot be adjusted manually")
)

// goalStore is the persistence surface GoalService needs.
type goalStore interface {
	CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error)
	GetGoals(ctx context.Context, userID primitive.ObjectID, year int, month *int) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error)
	UpdateCurrent(ctx context.Context, id primitive.ObjectID, current float64) error
	DeleteGoal(ctx context.Context, id primitive.ObjectID) error
}

// progressEngine recomputes a goal's derived progress.
type progressEngine interface {
	Recompute(ctx context.Context, goal *models.Goal) (*models.Goal, error)
}

// GoalService encapsulates the business logic for goals.
type GoalService struct {
	repo      goalStore
	validator *GoalValidator
	progress  progressEngine
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(repo goalStore, validator *GoalValidator, progress progressEngine) *GoalService {
	return &GoalService{
		repo:      repo,
		validator: validator,
		progress:  progress,
	}
}

// GoalUpdate carries the mutable fields of a goal. Nil fields are left
// untouched. Everything else about a goal is fixed at creation time.
type GoalUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Target      *float64 `json:"target"`
}

// CreateGoal validates and stores a new goal definition.
func (s *GoalService) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.Name == "" {
		logger.Log.Warn("Goal name is empty during creation")
		return nil, newValidationError("Invalid goal: name is required")
	}

	if vErr := s.validator.Validate(ctx, goal); vErr != nil {
		logger.Log.WithField("reason", vErr.Message).Warn("Goal validation failed")
		return nil, vErr
	}

	goal.Current = 0
	goal.CurrentUpdated = nil
	goal.Active = true

	createdGoal, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create goal")
		return nil, fmt.Errorf("failed to create goal: %v", err)
	}

	return createdGoal, nil
}

// GetGoal fetches a goal, refreshing its derived progress before returning it.
func (s *GoalService) GetGoal(ctx context.Context, id, userID primitive.ObjectID) (*models.Goal, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}

	return s.progress.Recompute(ctx, goal)
}

// ListGoals fetches a user's goals for a year and optional month, refreshing
// each goal's derived progress before returning the list.
func (s *GoalService) ListGoals(ctx context.Context, userID primitive.ObjectID, year int, month *int) ([]models.Goal, error) {
	goals, err := s.repo.GetGoals(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}

	refreshed := make([]models.Goal, 0, len(goals))
	for i := range goals {
		goal, err := s.progress.Recompute(ctx, &goals[i])
		if err != nil {
			logger.Log.WithError(err).WithField("goal_id", goals[i].ID.Hex()).Error("Failed to refresh goal progress")
			refreshed = append(refreshed, goals[i])
			continue
		}
		refreshed = append(refreshed, *goal)
	}

	return refreshed, nil
}

// UpdateGoal applies the mutable fields of a goal. Constraint, aggregation
// and temporal fields cannot change after creation.
func (s *GoalService) UpdateGoal(ctx context.Context, id, userID primitive.ObjectID, update GoalUpdate) (*models.Goal, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, newValidationError("Invalid goal: name is required")
		}
		goal.Name = *update.Name
	}
	if update.Description != nil {
		goal.Description = *update.Description
	}
	if update.Target != nil {
		if *update.Target <= 0 {
			return nil, newValidationError("Invalid goal: target must be positive")
		}
		goal.Target = *update.Target
	}
	goal.UpdatedAt = time.Now()

	updatedGoal, err := s.repo.UpdateGoal(ctx, id, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to update goal")
		return nil, fmt.Errorf("failed to update goal: %v", err)
	}

	return updatedGoal, nil
}

// AdjustManualGoal shifts a manual goal's current value by delta. The value
// is floored at zero so repeated negative adjustments cannot drive it below
// an empty accumulator.
func (s *GoalService) AdjustManualGoal(ctx context.Context, id, userID primitive.ObjectID, delta float64) (*models.Goal, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}
	if goal.Type != models.GoalTypeManual {
		return nil, ErrNotManualGoal
	}

	goal.Current += delta
	if goal.Current < 0 {
		goal.Current = 0
	}

	if err := s.repo.UpdateCurrent(ctx, id, goal.Current); err != nil {
		return nil, fmt.Errorf("failed to adjust goal: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id": goal.ID.Hex(),
		"delta":   delta,
		"current": goal.Current,
	}).Info("Manual goal adjusted")

	return goal, nil
}

// DeleteGoal removes a goal owned by the given user.
func (s *GoalService) DeleteGoal(ctx context.Context, id, userID primitive.ObjectID) error {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrGoalNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch goal: %v", err)
	}
	if goal.UserID != userID {
		return ErrGoalNotFound
	}

	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete goal: %v", err)
	}

	return nil
}
