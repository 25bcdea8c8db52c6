package cron

import (
	"context"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ActiveGoalSource fetches the goals eligible for the nightly refresh.
type ActiveGoalSource interface {
	GetActiveGoals(ctx context.Context) ([]models.Goal, error)
}

// StartGoalRefreshCron recomputes every active derived goal nightly so
// progress stays fresh even for users who never open their goal list.
func StartGoalRefreshCron(goals ActiveGoalSource, progress *services.GoalProgressService) *cron.Cron {
	c := cron.New()

	c.AddFunc("0 2 * * *", func() {
		ctx := context.Background()

		active, err := goals.GetActiveGoals(ctx)
		if err != nil {
			logrus.WithError(err).Error("Nightly goal refresh failed to list goals")
			return
		}

		refreshed := 0
		for i := range active {
			if _, err := progress.Recompute(ctx, &active[i]); err != nil {
				logrus.WithError(err).WithField("goal_id", active[i].ID.Hex()).Error("Nightly goal refresh failed for goal")
				continue
			}
			refreshed++
		}

		logrus.WithField("refreshed", refreshed).Info("Nightly goal refresh completed")
	})

	c.Start()
	return c
}
