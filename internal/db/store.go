package db

import (
	"context"
	"time"

	"yt-summary-publisher/internal/models"
)

// Jobs exposes the scheduled_posts queries as a value that can be injected.
type Jobs struct{}

// Insert creates a scheduled job and returns its id.
func (Jobs) Insert(ctx context.Context, videoID, platform string, at time.Time) (int64, error) {
	return InsertScheduledPost(ctx, videoID, platform, at)
}

// Due lists scheduled jobs whose time has come, oldest first.
func (Jobs) Due(ctx context.Context, now time.Time, limit int) ([]models.DueJob, error) {
	return GetDueScheduledPosts(ctx, now, limit)
}

// Get loads one job; unknown ids wrap ErrNotFound.
func (Jobs) Get(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return GetScheduledPost(ctx, id)
}

// UpdateStatus moves a job to status and records lastResult.
func (Jobs) UpdateStatus(ctx context.Context, id int64, status string, lastResult *string, attemptCount *int) error {
	return UpdateScheduledPostStatus(ctx, id, status, lastResult, attemptCount)
}

// FailStalePosting fails jobs stuck in posting since before cutoff.
func (Jobs) FailStalePosting(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	return FailStalePostingPosts(ctx, cutoff, reason)
}

// Videos exposes the video_records queries as a value that can be injected.
type Videos struct{}

// Get reads a record; unknown ids wrap ErrNotFound.
func (Videos) Get(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	return GetVideoRecord(ctx, videoID)
}

// Save upserts a record.
func (Videos) Save(ctx context.Context, rec *models.VideoRecord) error {
	return SaveVideoRecord(ctx, rec)
}

// Delete removes a record and reports whether it existed.
func (Videos) Delete(ctx context.Context, videoID string) (bool, error) {
	return DeleteVideoRecord(ctx, videoID)
}
