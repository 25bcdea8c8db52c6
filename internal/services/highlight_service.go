package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avelkov/stride/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// activityReader fetches single activities for highlight processing.
type activityReader interface {
	GetActivityByID(ctx context.Context, id primitive.ObjectID) (*models.Activity, error)
}

// highlightStore is the persistence surface for leaderboard rows.
type highlightStore interface {
	GetTopN(ctx context.Context, key models.HighlightKey) ([]models.ActivityHighlight, error)
	ReplaceTopN(ctx context.Context, key models.HighlightKey, rows []models.ActivityHighlight) error
	List(ctx context.Context, userID primitive.ObjectID, metric *models.HighlightMetric, scope models.HighlightScope, year *int) ([]models.ActivityHighlight, error)
}

// HighlightService runs the calculator registry against activities and folds
// the results into per-key top-N leaderboards.
type HighlightService struct {
	activities activityReader
	store      highlightStore
	registry   *CalculatorRegistry
	topN       int

	// The read-rank-replace cycle for one leaderboard key is serialized:
	// two concurrent cycles could otherwise both rank against the same
	// stale set and drop each other's rows.
	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

func NewHighlightService(activities activityReader, store highlightStore, registry *CalculatorRegistry, topN int) *HighlightService {
	return &HighlightService{
		activities: activities,
		store:      store,
		registry:   registry,
		topN:       topN,
		keyLocks:   make(map[string]*sync.Mutex),
	}
}

func (s *HighlightService) lockKey(key models.HighlightKey) func() {
	id := fmt.Sprintf("%s|%s|%s|%d", key.UserID.Hex(), key.Metric, key.Scope, key.TypeID)
	if key.Year != nil {
		id = fmt.Sprintf("%s|%d", id, *key.Year)
	}

	s.mu.Lock()
	lock, ok := s.keyLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLocks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ProcessActivityHighlights computes every registered metric for the activity
// and offers each value to the yearly and lifetime leaderboards it belongs
// to. Re-processing the same activity is idempotent.
func (s *HighlightService) ProcessActivityHighlights(ctx context.Context, activityID, userID primitive.ObjectID) error {
	activity, err := s.activities.GetActivityByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("failed to load activity %s: %v", activityID.Hex(), err)
	}
	if activity.UserID != userID {
		logrus.WithFields(logrus.Fields{
			"activity_id": activityID.Hex(),
			"user_id":     userID.Hex(),
		}).Warn("Skipping highlight processing for activity owned by another user")
		return fmt.Errorf("activity %s does not belong to user %s", activityID.Hex(), userID.Hex())
	}

	results := s.registry.RunAll(ctx, activity)
	year := activity.Start.Year()

	for _, metric := range s.registry.Metrics() {
		result := results[metric]
		if result == nil {
			continue
		}

		candidate := models.ActivityHighlight{
			UserID:     activity.UserID,
			ActivityID: activity.ID,
			TypeID:     activity.TypeID,
			Metric:     metric,
			Value:      result.Value,
			TrackID:    result.TrackID,
		}

		keys := []models.HighlightKey{
			{UserID: activity.UserID, Metric: metric, Scope: models.ScopeYearly, Year: &year, TypeID: activity.TypeID},
			{UserID: activity.UserID, Metric: metric, Scope: models.ScopeLifetime, TypeID: activity.TypeID},
		}
		for _, key := range keys {
			if err := s.offerCandidate(ctx, key, candidate); err != nil {
				return err
			}
		}
	}

	logrus.WithField("activity_id", activityID.Hex()).Info("Activity highlights processed")
	return nil
}

// offerCandidate re-ranks one leaderboard with the candidate included. Any
// previous rows of the same activity are dropped first, so a re-run replaces
// rather than duplicates. The stored set is only rewritten when the candidate
// makes the cut.
func (s *HighlightService) offerCandidate(ctx context.Context, key models.HighlightKey, candidate models.ActivityHighlight) error {
	unlock := s.lockKey(key)
	defer unlock()

	existing, err := s.store.GetTopN(ctx, key)
	if err != nil {
		return err
	}

	rows := make([]models.ActivityHighlight, 0, len(existing)+1)
	for _, row := range existing {
		if row.ActivityID == candidate.ActivityID {
			continue
		}
		rows = append(rows, row)
	}
	replaced := len(rows) != len(existing)

	candidate.Scope = key.Scope
	candidate.Year = key.Year
	rows = append(rows, candidate)

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		// Ties resolve on activity id so repeated runs produce the same
		// ordering.
		return rows[i].ActivityID.Hex() > rows[j].ActivityID.Hex()
	})
	if len(rows) > s.topN {
		rows = rows[:s.topN]
	}

	made := false
	for i := range rows {
		rows[i].Rank = i + 1
		if rows[i].ActivityID == candidate.ActivityID {
			made = true
		}
	}
	// A candidate that neither makes the cut nor displaces one of its own
	// earlier rows leaves the stored set as it is.
	if !made && !replaced {
		return nil
	}

	return s.store.ReplaceTopN(ctx, key, rows)
}

// ListHighlights returns stored leaderboard rows for a user. Metric and year
// are optional filters; scope is required.
func (s *HighlightService) ListHighlights(ctx context.Context, userID primitive.ObjectID, metric *models.HighlightMetric, scope models.HighlightScope, year *int) ([]models.ActivityHighlight, error) {
	if scope != models.ScopeYearly && scope != models.ScopeLifetime {
		return nil, newValidationError("Invalid scope: %q", scope)
	}
	return s.store.List(ctx, userID, metric, scope, year)
}
