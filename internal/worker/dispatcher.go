// Package worker executes scheduled posts: it drains due jobs, re-reads the video record from the
// durable store, hands the rendered content to the platform adapter and records the outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/models"
	"yt-summary-publisher/internal/publisher"
	"yt-summary-publisher/internal/schedule"
)

const (
	msgPostingStarted = "Posting started"
	msgManualUpdate   = "Manually updated by admin"
)

var (
	// ErrUnsupportedPlatform is returned when no adapter is registered for a platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrInvalidStatus is returned by SetJobStatus for an unknown lifecycle state.
	ErrInvalidStatus = errors.New("invalid status")
)

// JobStore is the durable table of scheduled posts.
type JobStore interface {
	Insert(ctx context.Context, videoID, platform string, at time.Time) (int64, error)
	Due(ctx context.Context, now time.Time, limit int) ([]models.DueJob, error)
	Get(ctx context.Context, id int64) (*models.ScheduledPost, error)
	UpdateStatus(ctx context.Context, id int64, status string, lastResult *string, attemptCount *int) error
	FailStalePosting(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

// VideoStore is the durable video record store. Get returns db.ErrNotFound for unknown ids.
type VideoStore interface {
	Get(ctx context.Context, videoID string) (*models.VideoRecord, error)
}

// Dispatcher owns the job state machine: scheduled -> posting -> posted|failed.
type Dispatcher struct {
	jobs              JobStore
	videos            VideoStore
	registry          *publisher.Registry
	normalizer        *schedule.Normalizer
	copyPasteFallback bool
	now               func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCopyPasteFallback makes PostNow return a copy/paste rendering for adapters that are not
// configured instead of failing.
func WithCopyPasteFallback(enabled bool) DispatcherOption {
	return func(d *Dispatcher) { d.copyPasteFallback = enabled }
}

// NewDispatcher wires the job and video stores to the adapter registry.
func NewDispatcher(jobs JobStore, videos VideoStore, registry *publisher.Registry, normalizer *schedule.Normalizer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		jobs:       jobs,
		videos:     videos,
		registry:   registry,
		normalizer: normalizer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Normalizer is the time zone conversion used for scheduling and display.
func (d *Dispatcher) Normalizer() *schedule.Normalizer { return d.normalizer }

func (d *Dispatcher) Registry() *publisher.Registry { return d.registry }

// ScheduleJob stores a new job for the local wall-clock time local. Nothing is written when the
// platform is unknown or local does not parse.
func (d *Dispatcher) ScheduleJob(ctx context.Context, videoID, platform, local string) (int64, error) {
	if _, ok := d.registry.Get(platform); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
	at, err := d.normalizer.ToUTC(local)
	if err != nil {
		return 0, err
	}
	id, err := d.jobs.Insert(ctx, videoID, platform, at)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scheduled post: %w", err)
	}
	logger.GetLogger().WithFields(log.Fields{
		"job_id":   id,
		"video_id": videoID,
		"platform": platform,
		"at_utc":   at.Format(time.RFC3339),
	}).Info("Scheduled post created")
	return id, nil
}

// DueJobs lists jobs that are due now without claiming them.
func (d *Dispatcher) DueJobs(ctx context.Context, limit int) ([]models.DueJob, error) {
	return d.jobs.Due(ctx, d.now().UTC(), limit)
}

// PostNow delivers a video immediately, bypassing the job store.
func (d *Dispatcher) PostNow(ctx context.Context, videoID, platform string) (publisher.Result, error) {
	adapter, ok := d.registry.Get(platform)
	if !ok {
		return publisher.Result{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
	rec, err := d.videos.Get(ctx, videoID)
	if err != nil {
		return publisher.Result{}, err
	}
	content := publisher.Render(adapter.Platform(), rec)

	if d.copyPasteFallback {
		if c, ok := adapter.(publisher.Configurable); ok && !c.Configured() {
			if cp, ok := adapter.(publisher.CopyPaster); ok {
				return cp.CopyPaste(content), nil
			}
		}
	}
	return adapter.Post(ctx, content), nil
}

// RunNow re-executes job id immediately, ignoring its schedule time and current status.
func (d *Dispatcher) RunNow(ctx context.Context, id int64) (publisher.Result, error) {
	post, err := d.jobs.Get(ctx, id)
	if err != nil {
		return publisher.Result{}, err
	}
	return d.Execute(ctx, models.DueJob{ID: post.ID, VideoID: post.VideoID, Platform: post.Platform}), nil
}

// SetJobStatus is the manual override used by operators.
func (d *Dispatcher) SetJobStatus(ctx context.Context, id int64, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	msg := msgManualUpdate
	return d.jobs.UpdateStatus(ctx, id, status, &msg, nil)
}

// ReconcileStuck fails jobs left in posting for longer than olderThan.
func (d *Dispatcher) ReconcileStuck(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := d.now().UTC().Add(-olderThan)
	reason := fmt.Sprintf("Posting did not complete within %s; marked failed by reconciliation", olderThan)
	n, err := d.jobs.FailStalePosting(ctx, cutoff, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile stuck posts: %w", err)
	}
	if n > 0 {
		logger.GetLogger().WithField("count", n).Warn("Marked stuck posting jobs as failed")
	}
	return n, nil
}

// Execute runs one job through the state machine and returns the recorded result. It never
// panics and never returns an error: every outcome ends up in the job row. Cancelling ctx does
// not abort a job once started; outbound calls are bounded by their own timeouts.
func (d *Dispatcher) Execute(ctx context.Context, job models.DueJob) (res publisher.Result) {
	ctx = context.WithoutCancel(ctx)
	lg := logger.GetLogger().WithFields(log.Fields{
		"job_id":   job.ID,
		"video_id": job.VideoID,
		"platform": job.Platform,
	})

	defer func() {
		if r := recover(); r != nil {
			res = publisher.Result{Error: fmt.Sprintf("Error processing scheduled post: %v", r)}
			lg.WithField("panic", r).Error("Scheduled post panicked")
			d.finish(ctx, lg, job, res)
		}
	}()

	started := msgPostingStarted
	if err := d.jobs.UpdateStatus(ctx, job.ID, models.StatusPosting, &started, nil); err != nil {
		lg.WithError(err).Error("Failed to mark job as posting")
		return publisher.Fail(fmt.Errorf("failed to mark job as posting: %w", err))
	}
	lg.Info("Posting scheduled post")

	rec, err := d.videos.Get(ctx, job.VideoID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		res = publisher.Result{Error: fmt.Sprintf("video data for %s not found", job.VideoID)}
	case err != nil:
		res = publisher.Result{Error: fmt.Sprintf("Error processing scheduled post: %v", err)}
	default:
		adapter, ok := d.registry.Get(job.Platform)
		if !ok {
			res = publisher.Fail(fmt.Errorf("%w: %s", ErrUnsupportedPlatform, job.Platform))
		} else {
			res = adapter.Post(ctx, publisher.Render(adapter.Platform(), rec))
		}
	}

	d.finish(ctx, lg, job, res)
	return res
}

func (d *Dispatcher) finish(ctx context.Context, lg *log.Entry, job models.DueJob, res publisher.Result) {
	status := models.StatusFailed
	if res.Success {
		status = models.StatusPosted
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		encoded = []byte(res.Error)
	}
	lastResult := string(encoded)
	attempts := 1

	if err := d.jobs.UpdateStatus(ctx, job.ID, status, &lastResult, &attempts); err != nil {
		lg.WithError(err).WithField("status", status).Error("Failed to record job outcome")
		return
	}
	if res.Success {
		lg.Info("Scheduled post delivered")
	} else {
		lg.WithField("error", res.Error).Warn("Scheduled post failed")
	}
}
