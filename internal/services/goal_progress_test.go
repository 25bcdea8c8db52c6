package services

import (
	"context"
	"testing"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeActivityQuerier struct {
	activities []models.Activity
	geoIDs     []primitive.ObjectID
	lastFilter *models.ActivityFilter
}

func (f *fakeActivityQuerier) Query(_ context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	f.lastFilter = &filter

	var out []models.Activity
	for _, a := range f.activities {
		if a.UserID != filter.UserID {
			continue
		}
		if a.Start.Before(filter.From) || !a.Start.Before(filter.To) {
			continue
		}
		if filter.TypeID != nil && a.TypeID != *filter.TypeID {
			continue
		}
		if !containsAllIDs(a.EquipmentIDs, filter.EquipmentIDs) {
			continue
		}
		if filter.CreatedAfter != nil && !a.CreatedAt.After(*filter.CreatedAfter) {
			continue
		}
		if len(filter.IDs) > 0 && !containsID(filter.IDs, a.ID) {
			continue
		}
		if filter.RequireDistance && a.Distance == nil {
			continue
		}
		if filter.ExcludeZeroDistance && (a.Distance == nil || *a.Distance == 0) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeActivityQuerier) FindNearLocation(_ context.Context, _ primitive.ObjectID, _ *models.Location, _ float64) ([]primitive.ObjectID, error) {
	return f.geoIDs, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// containsAllIDs reports whether the activity's equipment links cover every
// required id.
func containsAllIDs(have, required []primitive.ObjectID) bool {
	for _, id := range required {
		if !containsID(have, id) {
			return false
		}
	}
	return true
}

type progressUpdate struct {
	id      primitive.ObjectID
	current float64
}

type fakeProgressStore struct {
	updates []progressUpdate
}

func (f *fakeProgressStore) UpdateProgress(_ context.Context, id primitive.ObjectID, current float64, _ time.Time) error {
	f.updates = append(f.updates, progressUpdate{id: id, current: current})
	return nil
}

func newTestProgressService(querier *fakeActivityQuerier, store *fakeProgressStore, locations locationLookup, now time.Time) *GoalProgressService {
	if locations == nil {
		locations = &fakeLocationLookup{items: map[primitive.ObjectID]*models.Location{}}
	}
	s := NewGoalProgressService(querier, store, locations, 250)
	s.now = func() time.Time { return now }
	return s
}

func yearlyGoal(userID primitive.ObjectID, agg models.GoalAggregation) *models.Goal {
	return &models.Goal{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Name:         "Test goal",
		Target:       100,
		TemporalType: models.TemporalYearly,
		Year:         2024,
		Type:         models.GoalTypeActivity,
		Aggregation:  agg,
	}
}

func rideActivity(userID primitive.ObjectID, start, created time.Time, distance *float64, durationSec float64) models.Activity {
	return models.Activity{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Name:        "Ride",
		Start:       start,
		DurationSec: durationSec,
		Distance:    distance,
		TypeID:      1,
		CreatedAt:   created,
	}
}

func TestRecomputeManualGoalIsNoop(t *testing.T) {
	store := &fakeProgressStore{}
	s := newTestProgressService(&fakeActivityQuerier{}, store, nil, time.Now())

	goal := yearlyGoal(primitive.NewObjectID(), models.AggregationCount)
	goal.Type = models.GoalTypeManual
	goal.Current = 7

	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 7.0, updated.Current)
	assert.Empty(t, store.updates)
}

func TestRecomputeTotalDistance(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	querier := &fakeActivityQuerier{activities: []models.Activity{
		rideActivity(userID, start, start, floatPtr(10), 3600),
		rideActivity(userID, start.Add(time.Hour), start.Add(time.Hour), floatPtr(20), 3600),
	}}
	store := &fakeProgressStore{}
	s := newTestProgressService(querier, store, nil, now)

	goal := yearlyGoal(userID, models.AggregationTotalDistance)
	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)

	assert.Equal(t, 30.0, updated.Current)
	require.NotNil(t, updated.CurrentUpdated)
	assert.Equal(t, now, *updated.CurrentUpdated)
	require.Len(t, store.updates, 1)
	assert.Equal(t, 30.0, store.updates[0].current)

	// Distance aggregations must not see distance-less activities.
	assert.True(t, querier.lastFilter.RequireDistance)
}

func TestRecomputeCursorSkipsAlreadyCountedActivities(t *testing.T) {
	userID := primitive.NewObjectID()
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	firstRun := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	secondRun := firstRun.Add(48 * time.Hour)

	querier := &fakeActivityQuerier{activities: []models.Activity{
		rideActivity(userID, start, start, floatPtr(10), 3600),
		rideActivity(userID, start.Add(time.Hour), start.Add(time.Hour), floatPtr(20), 3600),
	}}
	store := &fakeProgressStore{}
	s := newTestProgressService(querier, store, nil, firstRun)

	goal := yearlyGoal(userID, models.AggregationTotalDistance)
	goal, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	require.Equal(t, 30.0, goal.Current)

	// An activity uploaded after the first run only adds its own delta.
	late := rideActivity(userID, start.Add(2*time.Hour), firstRun.Add(time.Hour), floatPtr(25), 3600)
	querier.activities = append(querier.activities, late)
	s.now = func() time.Time { return secondRun }

	goal, err = s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 55.0, goal.Current)
	require.NotNil(t, querier.lastFilter.CreatedAfter)
	assert.Equal(t, firstRun, *querier.lastFilter.CreatedAfter)
}

func TestRecomputeNoNewActivitiesLeavesCursorUntouched(t *testing.T) {
	userID := primitive.NewObjectID()
	firstRun := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)

	querier := &fakeActivityQuerier{}
	store := &fakeProgressStore{}
	s := newTestProgressService(querier, store, nil, firstRun)

	cursor := firstRun.Add(-24 * time.Hour)
	goal := yearlyGoal(userID, models.AggregationCount)
	goal.Current = 4
	goal.CurrentUpdated = &cursor

	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Current)
	assert.Equal(t, cursor, *updated.CurrentUpdated)
	assert.Empty(t, store.updates)
}

func TestRecomputeCountAndDuration(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	querier := &fakeActivityQuerier{activities: []models.Activity{
		rideActivity(userID, start, start, nil, 1800),
		rideActivity(userID, start.Add(time.Hour), start.Add(time.Hour), nil, 2700),
	}}

	countGoal := yearlyGoal(userID, models.AggregationCount)
	s := newTestProgressService(querier, &fakeProgressStore{}, nil, now)
	countGoal, err := s.Recompute(context.Background(), countGoal)
	require.NoError(t, err)
	assert.Equal(t, 2.0, countGoal.Current)

	durationGoal := yearlyGoal(userID, models.AggregationDuration)
	durationGoal, err = s.Recompute(context.Background(), durationGoal)
	require.NoError(t, err)
	assert.Equal(t, 4500.0, durationGoal.Current)
}

func TestRecomputeMaxDistanceIsMonotonic(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	querier := &fakeActivityQuerier{activities: []models.Activity{
		rideActivity(userID, start, start, floatPtr(30), 3600),
	}}
	s := newTestProgressService(querier, &fakeProgressStore{}, nil, now)

	goal := yearlyGoal(userID, models.AggregationMaxDistance)
	goal.Current = 50

	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.Current)

	querier.activities = append(querier.activities,
		rideActivity(userID, start.Add(time.Hour), now.Add(time.Hour), floatPtr(80), 3600))
	s.now = func() time.Time { return now.Add(2 * time.Hour) }

	updated, err = s.Recompute(context.Background(), updated)
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Current)
}

func TestRecomputeAvgDistanceAlwaysRescans(t *testing.T) {
	userID := primitive.NewObjectID()
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	firstRun := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)

	querier := &fakeActivityQuerier{activities: []models.Activity{
		rideActivity(userID, start, start, floatPtr(10), 3600),
		rideActivity(userID, start.Add(time.Hour), start.Add(time.Hour), floatPtr(20), 3600),
	}}
	s := newTestProgressService(querier, &fakeProgressStore{}, nil, firstRun)

	goal := yearlyGoal(userID, models.AggregationAvgDistance)
	goal, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	require.Equal(t, 15.0, goal.Current)

	// A later upload changes the average of the full population, not just
	// the delta since the cursor.
	querier.activities = append(querier.activities,
		rideActivity(userID, start.Add(2*time.Hour), firstRun.Add(time.Hour), floatPtr(60), 3600))
	s.now = func() time.Time { return firstRun.Add(2 * time.Hour) }

	goal, err = s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 30.0, goal.Current)
	assert.Nil(t, querier.lastFilter.CreatedAfter)
}

func TestRecomputeEquipmentConstraintRequiresEverySelectedID(t *testing.T) {
	userID := primitive.NewObjectID()
	bikeID := primitive.NewObjectID()
	powerMeterID := primitive.NewObjectID()
	lightsID := primitive.NewObjectID()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	// Linked to a superset of the constraint: counts.
	fullSetup := rideActivity(userID, start, start, floatPtr(30), 3600)
	fullSetup.EquipmentIDs = []primitive.ObjectID{bikeID, powerMeterID, lightsID}

	// Linked to only part of the constraint: filtered out.
	bikeOnly := rideActivity(userID, start.Add(time.Hour), start.Add(time.Hour), floatPtr(40), 3600)
	bikeOnly.EquipmentIDs = []primitive.ObjectID{bikeID}

	querier := &fakeActivityQuerier{activities: []models.Activity{fullSetup, bikeOnly}}
	s := newTestProgressService(querier, &fakeProgressStore{}, nil, now)

	goal := yearlyGoal(userID, models.AggregationTotalDistance)
	goal.Constraints.EquipmentIDs = []primitive.ObjectID{bikeID, powerMeterID}

	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Current)
	assert.Equal(t, goal.Constraints.EquipmentIDs, querier.lastFilter.EquipmentIDs)
}

func TestRecomputeLocationGoal(t *testing.T) {
	userID := primitive.NewObjectID()
	locationID := primitive.NewObjectID()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	near := rideActivity(userID, start, start, floatPtr(5), 3600)
	nearButStationary := rideActivity(userID, start.Add(time.Hour), start.Add(time.Hour), floatPtr(0), 3600)
	far := rideActivity(userID, start.Add(2*time.Hour), start.Add(2*time.Hour), floatPtr(12), 3600)

	querier := &fakeActivityQuerier{
		activities: []models.Activity{near, nearButStationary, far},
		geoIDs:     []primitive.ObjectID{near.ID, nearButStationary.ID},
	}
	locations := &fakeLocationLookup{items: map[primitive.ObjectID]*models.Location{
		locationID: {ID: locationID, UserID: userID, Name: "Office", Point: models.NewGeoPoint(13.4, 52.5)},
	}}
	s := newTestProgressService(querier, &fakeProgressStore{}, locations, now)

	goal := yearlyGoal(userID, models.AggregationCount)
	goal.Type = models.GoalTypeLocation
	goal.Constraints.LocationID = &locationID

	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)

	// Only the geo-matched activity that actually moved counts.
	assert.Equal(t, 1.0, updated.Current)
}

func TestRecomputeLocationGoalNoCandidates(t *testing.T) {
	userID := primitive.NewObjectID()
	locationID := primitive.NewObjectID()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	querier := &fakeActivityQuerier{geoIDs: nil}
	locations := &fakeLocationLookup{items: map[primitive.ObjectID]*models.Location{
		locationID: {ID: locationID, UserID: userID, Name: "Office"},
	}}
	store := &fakeProgressStore{}
	s := newTestProgressService(querier, store, locations, now)

	goal := yearlyGoal(userID, models.AggregationCount)
	goal.Type = models.GoalTypeLocation
	goal.Constraints.LocationID = &locationID
	goal.Current = 3

	updated, err := s.Recompute(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Current)
	assert.Empty(t, store.updates)
}

func TestRecomputeLocationGoalMissingConstraintFails(t *testing.T) {
	userID := primitive.NewObjectID()
	s := newTestProgressService(&fakeActivityQuerier{}, &fakeProgressStore{}, nil, time.Now())

	goal := yearlyGoal(userID, models.AggregationCount)
	goal.Type = models.GoalTypeLocation

	_, err := s.Recompute(context.Background(), goal)
	assert.Error(t, err)
}
