package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeActivityReader struct {
	activities map[primitive.ObjectID]*models.Activity
}

func (f *fakeActivityReader) GetActivityByID(_ context.Context, id primitive.ObjectID) (*models.Activity, error) {
	activity, ok := f.activities[id]
	if !ok {
		return nil, fmt.Errorf("failed to find activity")
	}
	return activity, nil
}

type fakeHighlightStore struct {
	sets         map[string][]models.ActivityHighlight
	replaceCalls int
}

func newFakeHighlightStore() *fakeHighlightStore {
	return &fakeHighlightStore{sets: make(map[string][]models.ActivityHighlight)}
}

func storeKey(key models.HighlightKey) string {
	id := fmt.Sprintf("%s|%s|%s|%d", key.UserID.Hex(), key.Metric, key.Scope, key.TypeID)
	if key.Year != nil {
		id = fmt.Sprintf("%s|%d", id, *key.Year)
	}
	return id
}

func (f *fakeHighlightStore) GetTopN(_ context.Context, key models.HighlightKey) ([]models.ActivityHighlight, error) {
	return append([]models.ActivityHighlight{}, f.sets[storeKey(key)]...), nil
}

func (f *fakeHighlightStore) ReplaceTopN(_ context.Context, key models.HighlightKey, rows []models.ActivityHighlight) error {
	f.replaceCalls++
	f.sets[storeKey(key)] = append([]models.ActivityHighlight{}, rows...)
	return nil
}

func (f *fakeHighlightStore) List(_ context.Context, userID primitive.ObjectID, metric *models.HighlightMetric, scope models.HighlightScope, year *int) ([]models.ActivityHighlight, error) {
	var out []models.ActivityHighlight
	for _, rows := range f.sets {
		for _, row := range rows {
			if row.UserID != userID || row.Scope != scope {
				continue
			}
			if metric != nil && row.Metric != *metric {
				continue
			}
			if year != nil && (row.Year == nil || *row.Year != *year) {
				continue
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func distanceOnlyRegistry(t *testing.T) *CalculatorRegistry {
	t.Helper()
	registry := NewCalculatorRegistry()
	require.NoError(t, registry.Register(&scalarCalculator{
		metric:  models.MetricDistance,
		extract: func(a *models.Activity) *float64 { return a.Distance },
	}))
	return registry
}

func newHighlightFixture(t *testing.T) (*HighlightService, *fakeActivityReader, *fakeHighlightStore) {
	t.Helper()
	reader := &fakeActivityReader{activities: make(map[primitive.ObjectID]*models.Activity)}
	store := newFakeHighlightStore()
	service := NewHighlightService(reader, store, distanceOnlyRegistry(t), 3)
	return service, reader, store
}

func addRide(reader *fakeActivityReader, userID primitive.ObjectID, year int, distance float64) *models.Activity {
	activity := &models.Activity{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		Name:     "Ride",
		Start:    time.Date(year, time.May, 1, 8, 0, 0, 0, time.UTC),
		TypeID:   1,
		Distance: &distance,
	}
	reader.activities[activity.ID] = activity
	return activity
}

func yearlyDistances(t *testing.T, service *HighlightService, userID primitive.ObjectID, year int) []float64 {
	t.Helper()
	metric := models.MetricDistance
	rows, err := service.ListHighlights(context.Background(), userID, &metric, models.ScopeYearly, &year)
	require.NoError(t, err)

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Value)
	}
	return values
}

func TestProcessActivityHighlightsKeepsTopThree(t *testing.T) {
	service, reader, _ := newHighlightFixture(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	for _, distance := range []float64{50, 200, 20, 100} {
		activity := addRide(reader, userID, 2024, distance)
		require.NoError(t, service.ProcessActivityHighlights(ctx, activity.ID, userID))
	}

	assert.Equal(t, []float64{200, 100, 50}, yearlyDistances(t, service, userID, 2024))
}

func TestProcessActivityHighlightsRanksAreContiguous(t *testing.T) {
	service, reader, _ := newHighlightFixture(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	for _, distance := range []float64{30, 10, 20} {
		activity := addRide(reader, userID, 2024, distance)
		require.NoError(t, service.ProcessActivityHighlights(ctx, activity.ID, userID))
	}

	metric := models.MetricDistance
	year := 2024
	rows, err := service.ListHighlights(ctx, userID, &metric, models.ScopeYearly, &year)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byRank := make(map[int]float64, 3)
	for _, row := range rows {
		byRank[row.Rank] = row.Value
	}
	assert.Equal(t, map[int]float64{1: 30, 2: 20, 3: 10}, byRank)
}

func TestProcessActivityHighlightsIsIdempotent(t *testing.T) {
	service, reader, _ := newHighlightFixture(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	activity := addRide(reader, userID, 2024, 80)
	require.NoError(t, service.ProcessActivityHighlights(ctx, activity.ID, userID))
	require.NoError(t, service.ProcessActivityHighlights(ctx, activity.ID, userID))

	assert.Equal(t, []float64{80}, yearlyDistances(t, service, userID, 2024))
}

func TestProcessActivityHighlightsScopesAreIsolated(t *testing.T) {
	service, reader, _ := newHighlightFixture(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	older := addRide(reader, userID, 2023, 150)
	newer := addRide(reader, userID, 2024, 90)
	require.NoError(t, service.ProcessActivityHighlights(ctx, older.ID, userID))
	require.NoError(t, service.ProcessActivityHighlights(ctx, newer.ID, userID))

	assert.Equal(t, []float64{150}, yearlyDistances(t, service, userID, 2023))
	assert.Equal(t, []float64{90}, yearlyDistances(t, service, userID, 2024))

	metric := models.MetricDistance
	lifetime, err := service.ListHighlights(ctx, userID, &metric, models.ScopeLifetime, nil)
	require.NoError(t, err)
	assert.Len(t, lifetime, 2)
}

func TestProcessActivityHighlightsBelowCutLeavesStoreAlone(t *testing.T) {
	service, reader, store := newHighlightFixture(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	for _, distance := range []float64{100, 90, 80} {
		activity := addRide(reader, userID, 2024, distance)
		require.NoError(t, service.ProcessActivityHighlights(ctx, activity.ID, userID))
	}
	callsBefore := store.replaceCalls

	loser := addRide(reader, userID, 2024, 5)
	require.NoError(t, service.ProcessActivityHighlights(ctx, loser.ID, userID))

	assert.Equal(t, callsBefore, store.replaceCalls)
	assert.Equal(t, []float64{100, 90, 80}, yearlyDistances(t, service, userID, 2024))
}

func TestProcessActivityHighlightsTieBreakIsDeterministic(t *testing.T) {
	service, reader, _ := newHighlightFixture(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	first := addRide(reader, userID, 2024, 60)
	second := addRide(reader, userID, 2024, 60)
	require.NoError(t, service.ProcessActivityHighlights(ctx, first.ID, userID))
	require.NoError(t, service.ProcessActivityHighlights(ctx, second.ID, userID))

	metric := models.MetricDistance
	year := 2024
	before, err := service.ListHighlights(ctx, userID, &metric, models.ScopeYearly, &year)
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Re-running either activity must not shuffle the tied rows.
	require.NoError(t, service.ProcessActivityHighlights(ctx, first.ID, userID))
	after, err := service.ListHighlights(ctx, userID, &metric, models.ScopeYearly, &year)
	require.NoError(t, err)

	rankOf := func(rows []models.ActivityHighlight, id primitive.ObjectID) int {
		for _, row := range rows {
			if row.ActivityID == id {
				return row.Rank
			}
		}
		return -1
	}
	assert.Equal(t, rankOf(before, first.ID), rankOf(after, first.ID))
	assert.Equal(t, rankOf(before, second.ID), rankOf(after, second.ID))
}

func TestProcessActivityHighlightsRejectsForeignActivity(t *testing.T) {
	service, reader, _ := newHighlightFixture(t)
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()

	activity := addRide(reader, owner, 2024, 40)
	err := service.ProcessActivityHighlights(context.Background(), activity.ID, intruder)
	assert.Error(t, err)
}

func TestListHighlightsRejectsUnknownScope(t *testing.T) {
	service, _, _ := newHighlightFixture(t)
	_, err := service.ListHighlights(context.Background(), primitive.NewObjectID(), nil, models.HighlightScope("weekly"), nil)
	assert.Error(t, err)
}
