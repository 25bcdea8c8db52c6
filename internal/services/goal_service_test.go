package services

import (
	"context"
	"testing"

	"github.com/avelkov/stride/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeGoalStore struct {
	goals map[primitive.ObjectID]*models.Goal
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: make(map[primitive.ObjectID]*models.Goal)}
}

func (f *fakeGoalStore) CreateGoal(_ context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.ID = primitive.NewObjectID()
	stored := *goal
	f.goals[goal.ID] = &stored
	return goal, nil
}

func (f *fakeGoalStore) GetGoalByID(_ context.Context, id primitive.ObjectID) (*models.Goal, error) {
	goal, ok := f.goals[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *goal
	return &copied, nil
}

func (f *fakeGoalStore) GetGoals(_ context.Context, userID primitive.ObjectID, year int, month *int) ([]models.Goal, error) {
	var out []models.Goal
	for _, goal := range f.goals {
		if goal.UserID != userID || goal.Year != year {
			continue
		}
		if month != nil && (goal.Month == nil || *goal.Month != *month) {
			continue
		}
		out = append(out, *goal)
	}
	return out, nil
}

func (f *fakeGoalStore) UpdateGoal(_ context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	stored := *goal
	f.goals[id] = &stored
	return goal, nil
}

func (f *fakeGoalStore) UpdateCurrent(_ context.Context, id primitive.ObjectID, current float64) error {
	if goal, ok := f.goals[id]; ok {
		goal.Current = current
	}
	return nil
}

func (f *fakeGoalStore) DeleteGoal(_ context.Context, id primitive.ObjectID) error {
	delete(f.goals, id)
	return nil
}

type fakeProgressEngine struct {
	calls int
}

func (f *fakeProgressEngine) Recompute(_ context.Context, goal *models.Goal) (*models.Goal, error) {
	f.calls++
	return goal, nil
}

func newGoalServiceFixture(userID primitive.ObjectID) (*GoalService, *fakeGoalStore, *fakeProgressEngine) {
	store := newFakeGoalStore()
	progress := &fakeProgressEngine{}
	validator := newTestValidator(userID, primitive.NewObjectID(), primitive.NewObjectID())
	return NewGoalService(store, validator, progress), store, progress
}

func manualGoal(userID primitive.ObjectID) *models.Goal {
	return &models.Goal{
		UserID:       userID,
		Name:         "Stretch every day",
		Target:       30,
		TemporalType: models.TemporalMonthly,
		Year:         2024,
		Month:        intPtr(5),
		Type:         models.GoalTypeManual,
		Aggregation:  models.AggregationCount,
	}
}

func TestCreateGoalResetsProgressFields(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(userID)

	goal := validActivityGoal(userID)
	goal.Current = 99
	goal.Active = false

	created, err := service.CreateGoal(context.Background(), goal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.Current)
	assert.Nil(t, created.CurrentUpdated)
	assert.True(t, created.Active)
}

func TestCreateGoalRejectsInvalidDefinition(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(userID)

	goal := validActivityGoal(userID)
	goal.Aggregation = models.GoalAggregation("median")

	_, err := service.CreateGoal(context.Background(), goal)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ErrorKindValidation, vErr.Kind)
}

func TestGetGoalRefreshesProgress(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, progress := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), validActivityGoal(userID))
	require.NoError(t, err)

	_, err = service.GetGoal(context.Background(), created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.calls)
}

func TestGetGoalHidesForeignGoals(t *testing.T) {
	owner := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(owner)

	created, err := service.CreateGoal(context.Background(), validActivityGoal(owner))
	require.NoError(t, err)

	_, err = service.GetGoal(context.Background(), created.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestUpdateGoalOnlyTouchesMutableFields(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), validActivityGoal(userID))
	require.NoError(t, err)

	newName := "Ride even farther"
	newTarget := 2000.0
	updated, err := service.UpdateGoal(context.Background(), created.ID, userID, GoalUpdate{
		Name:   &newName,
		Target: &newTarget,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, newTarget, updated.Target)
	assert.Equal(t, created.Aggregation, updated.Aggregation)
	assert.Equal(t, created.TemporalType, updated.TemporalType)
}

func TestUpdateGoalRejectsNonPositiveTarget(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), validActivityGoal(userID))
	require.NoError(t, err)

	badTarget := -5.0
	_, err = service.UpdateGoal(context.Background(), created.ID, userID, GoalUpdate{Target: &badTarget})
	assert.Error(t, err)
}

func TestAdjustManualGoal(t *testing.T) {
	userID := primitive.NewObjectID()
	service, store, _ := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), manualGoal(userID))
	require.NoError(t, err)

	adjusted, err := service.AdjustManualGoal(context.Background(), created.ID, userID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, adjusted.Current)

	adjusted, err = service.AdjustManualGoal(context.Background(), created.ID, userID, -2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, adjusted.Current)
	assert.Equal(t, 3.0, store.goals[created.ID].Current)
}

func TestAdjustManualGoalFloorsAtZero(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), manualGoal(userID))
	require.NoError(t, err)

	adjusted, err := service.AdjustManualGoal(context.Background(), created.ID, userID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, adjusted.Current)
}

func TestAdjustRejectsDerivedGoals(t *testing.T) {
	userID := primitive.NewObjectID()
	service, _, _ := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), validActivityGoal(userID))
	require.NoError(t, err)

	_, err = service.AdjustManualGoal(context.Background(), created.ID, userID, 1)
	assert.ErrorIs(t, err, ErrNotManualGoal)
}

func TestDeleteGoal(t *testing.T) {
	userID := primitive.NewObjectID()
	service, store, _ := newGoalServiceFixture(userID)

	created, err := service.CreateGoal(context.Background(), validActivityGoal(userID))
	require.NoError(t, err)

	require.NoError(t, service.DeleteGoal(context.Background(), created.ID, userID))
	assert.Empty(t, store.goals)

	err = service.DeleteGoal(context.Background(), created.ID, userID)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}
