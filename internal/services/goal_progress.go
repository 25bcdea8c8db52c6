package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/pkg/dateutil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// activityQuerier is the read side of the activity collaborator used by the
// progress engine.
type activityQuerier interface {
	Query(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error)
	FindNearLocation(ctx context.Context, userID primitive.ObjectID, loc *models.Location, radiusMeters float64) ([]primitive.ObjectID, error)
}

// progressStore persists a goal's accumulator and cursor.
type progressStore interface {
	UpdateProgress(ctx context.Context, id primitive.ObjectID, current float64, currentUpdated time.Time) error
}

// aggregationStrategy decides how matching activities fold into the goal's
// accumulator. Incremental strategies only see activities created after the
// cursor; non-incremental ones always see the full matching set.
type aggregationStrategy struct {
	incremental bool
	apply       func(current float64, activities []models.Activity) float64
}

func strategyFor(agg models.GoalAggregation) (aggregationStrategy, error) {
	switch agg {
	case models.AggregationCount:
		return aggregationStrategy{
			incremental: true,
			apply: func(current float64, activities []models.Activity) float64 {
				return current + float64(len(activities))
			},
		}, nil
	case models.AggregationDuration:
		return aggregationStrategy{
			incremental: true,
			apply: func(current float64, activities []models.Activity) float64 {
				for _, a := range activities {
					current += a.DurationSec
				}
				return current
			},
		}, nil
	case models.AggregationTotalDistance:
		return aggregationStrategy{
			incremental: true,
			apply: func(current float64, activities []models.Activity) float64 {
				for _, a := range activities {
					if a.Distance != nil {
						current += *a.Distance
					}
				}
				return current
			},
		}, nil
	case models.AggregationMaxDistance:
		// Max over a union equals max of the two maxima, so folding only the
		// new activities into the running value stays correct.
		return aggregationStrategy{
			incremental: true,
			apply: func(current float64, activities []models.Activity) float64 {
				for _, a := range activities {
					if a.Distance != nil && *a.Distance > current {
						current = *a.Distance
					}
				}
				return current
			},
		}, nil
	case models.AggregationAvgDistance:
		// An average is not a monotonic fold: a new low-distance activity
		// changes the average of the whole population. Always rescan.
		return aggregationStrategy{
			incremental: false,
			apply: func(_ float64, activities []models.Activity) float64 {
				if len(activities) == 0 {
					return 0
				}
				var sum float64
				for _, a := range activities {
					if a.Distance != nil {
						sum += *a.Distance
					}
				}
				return sum / float64(len(activities))
			},
		}, nil
	default:
		return aggregationStrategy{}, fmt.Errorf("aggregation %q not implemented", agg)
	}
}

func isDistanceAggregation(agg models.GoalAggregation) bool {
	switch agg {
	case models.AggregationTotalDistance, models.AggregationAvgDistance, models.AggregationMaxDistance:
		return true
	}
	return false
}

// GoalProgressService recomputes goal accumulators from matching activities.
type GoalProgressService struct {
	activities           activityQuerier
	goals                progressStore
	locations            locationLookup
	locationRadiusMeters float64

	now func() time.Time

	// Recompute for one goal id is serialized: two concurrent calls could
	// otherwise read the same cursor and double-count the delta.
	mu        sync.Mutex
	goalLocks map[string]*sync.Mutex
}

func NewGoalProgressService(activities activityQuerier, goals progressStore, locations locationLookup, locationRadiusMeters float64) *GoalProgressService {
	return &GoalProgressService{
		activities:           activities,
		goals:                goals,
		locations:            locations,
		locationRadiusMeters: locationRadiusMeters,
		now:                  time.Now,
		goalLocks:            make(map[string]*sync.Mutex),
	}
}

func (s *GoalProgressService) lockGoal(id primitive.ObjectID) func() {
	s.mu.Lock()
	lock, ok := s.goalLocks[id.Hex()]
	if !ok {
		lock = &sync.Mutex{}
		s.goalLocks[id.Hex()] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Recompute folds activities not yet covered by the goal's cursor into its
// current value and persists the result. The goal is returned unchanged when
// no new activities match, so the cursor never advances past unseen data.
// Manual goals are a no-op: their current value only changes through explicit
// adjustments.
func (s *GoalProgressService) Recompute(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.Type == models.GoalTypeManual {
		return goal, nil
	}

	unlock := s.lockGoal(goal.ID)
	defer unlock()

	from, to, err := dateutil.BucketRange(goal.TemporalType, goal.Year, goal.Month, goal.Week)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temporal bucket for goal %s: %v", goal.ID.Hex(), err)
	}

	strategy, err := strategyFor(goal.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %v", goal.ID.Hex(), err)
	}

	filter := models.ActivityFilter{
		UserID:       goal.UserID,
		From:         from,
		To:           to,
		TypeID:       goal.Constraints.TypeID,
		SubTypeID:    goal.Constraints.SubTypeID,
		EquipmentIDs: goal.Constraints.EquipmentIDs,
	}
	if strategy.incremental && goal.CurrentUpdated != nil {
		filter.CreatedAfter = goal.CurrentUpdated
	}

	switch goal.Type {
	case models.GoalTypeLocation:
		if goal.Aggregation != models.AggregationCount {
			return nil, fmt.Errorf("aggregation %q not implemented for location goals", goal.Aggregation)
		}
		if goal.Constraints.LocationID == nil {
			return nil, fmt.Errorf("location goal %s has no location constraint", goal.ID.Hex())
		}

		location, err := s.locations.GetLocationByID(ctx, *goal.Constraints.LocationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load location for goal %s: %v", goal.ID.Hex(), err)
		}
		if location == nil {
			return nil, fmt.Errorf("location %s for goal %s not found", goal.Constraints.LocationID.Hex(), goal.ID.Hex())
		}

		candidateIDs, err := s.activities.FindNearLocation(ctx, goal.UserID, location, s.locationRadiusMeters)
		if err != nil {
			return nil, fmt.Errorf("geo lookup failed for goal %s: %v", goal.ID.Hex(), err)
		}
		if len(candidateIDs) == 0 {
			logrus.WithField("goal_id", goal.ID.Hex()).Debug("No activities near goal location")
			return goal, nil
		}

		filter.IDs = candidateIDs
		filter.ExcludeZeroDistance = true
	case models.GoalTypeActivity:
		if isDistanceAggregation(goal.Aggregation) {
			filter.RequireDistance = true
		}
	default:
		return nil, fmt.Errorf("goal type %q not implemented", goal.Type)
	}

	activities, err := s.activities.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities for goal %s: %v", goal.ID.Hex(), err)
	}
	if len(activities) == 0 {
		logrus.WithField("goal_id", goal.ID.Hex()).Debug("No new activities found for goal")
		return goal, nil
	}

	goal.Current = strategy.apply(goal.Current, activities)
	now := s.now()
	goal.CurrentUpdated = &now

	if err := s.goals.UpdateProgress(ctx, goal.ID, goal.Current, now); err != nil {
		return nil, fmt.Errorf("failed to persist progress for goal %s: %v", goal.ID.Hex(), err)
	}

	logrus.WithFields(logrus.Fields{
		"goal_id": goal.ID.Hex(),
		"current": goal.Current,
		"matched": len(activities),
	}).Info("Goal progress updated")

	return goal, nil
}
