package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/pkg/tasks"
)

// TaskHandler serves the asynq tasks enqueued by the control surface and the scheduler.
type TaskHandler struct {
	dispatcher *Dispatcher
	stuckAfter time.Duration
}

func NewTaskHandler(d *Dispatcher, stuckAfter time.Duration) *TaskHandler {
	return &TaskHandler{dispatcher: d, stuckAfter: stuckAfter}
}

func (h *TaskHandler) HandleRunPostTask(ctx context.Context, t *asynq.Task) error {
	p, err := tasks.ParseRunPostTask(t)
	if err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	logger.GetLogger().WithField("job_id", p.JobID).Info("Running scheduled post on demand")

	res, err := h.dispatcher.RunNow(ctx, p.JobID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("scheduled post %d: %v: %w", p.JobID, err, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("failed to run scheduled post %d: %w", p.JobID, err)
	}
	// Delivery failures are recorded on the job; retrying here would re-deliver.
	if !res.Success {
		logger.GetLogger().WithField("job_id", p.JobID).WithField("error", res.Error).Warn("On-demand post failed")
	}
	return nil
}

func (h *TaskHandler) HandleReconcileTask(ctx context.Context, t *asynq.Task) error {
	n, err := h.dispatcher.ReconcileStuck(ctx, h.stuckAfter)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("count", n).Info("Finished reconciling stuck posts.")
	return nil
}

// Register wires the handlers into mux.
func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeRunPost, h.HandleRunPostTask)
	mux.HandleFunc(tasks.TypeReconcilePosts, h.HandleReconcileTask)
}
