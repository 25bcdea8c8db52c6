package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/avelkov/stride/internal/services"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HighlightJob asks the worker to recompute leaderboards for one activity.
type HighlightJob struct {
	ActivityID primitive.ObjectID
	UserID     primitive.ObjectID
}

// HighlightWorker processes highlight jobs off a buffered queue so activity
// uploads return without waiting for the full calculator run.
type HighlightWorker struct {
	highlightService *services.HighlightService
	queue            chan HighlightJob
	wg               sync.WaitGroup
}

// NewHighlightWorker creates a worker with the given queue capacity.
func NewHighlightWorker(highlightService *services.HighlightService, queueSize int) *HighlightWorker {
	return &HighlightWorker{
		highlightService: highlightService,
		queue:            make(chan HighlightJob, queueSize),
	}
}

// Start launches the processing loop. It drains until Stop is called or the
// context is cancelled.
func (w *HighlightWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case job, ok := <-w.queue:
				if !ok {
					return
				}
				w.process(ctx, job)
			case <-ctx.Done():
				return
			}
		}
	}()
	logrus.Info("Highlight worker started")
}

// Enqueue schedules a job. It fails instead of blocking when the queue is
// full so request handlers never stall on a slow worker.
func (w *HighlightWorker) Enqueue(job HighlightJob) error {
	select {
	case w.queue <- job:
		return nil
	default:
		return fmt.Errorf("highlight queue is full")
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (w *HighlightWorker) Stop() {
	close(w.queue)
	w.wg.Wait()
	logrus.Info("Highlight worker stopped")
}

func (w *HighlightWorker) process(ctx context.Context, job HighlightJob) {
	err := w.highlightService.ProcessActivityHighlights(ctx, job.ActivityID, job.UserID)
	if err != nil {
		logrus.WithError(err).WithField("activity_id", job.ActivityID.Hex()).Error("Highlight job failed")
	}
}
