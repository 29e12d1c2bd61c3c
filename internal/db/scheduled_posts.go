package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/models"
)

const postColumns = `id, video_id, platform, schedule_time_utc, status, attempt_count, last_result, created_at, updated_at`

// InsertScheduledPost stores a new job in the scheduled state and returns its id.
func InsertScheduledPost(ctx context.Context, videoID, platform string, scheduleUTC time.Time) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := DB.GetContext(ctx, &id, `
		INSERT INTO scheduled_posts (video_id, platform, schedule_time_utc, status, attempt_count, created_at, updated_at)
		VALUES ($1, $2, $3, 'scheduled', 0, $4, $4)
		RETURNING id`,
		videoID, platform, scheduleUTC.UTC(), now)
	if err != nil {
		return 0, errors.Wrapf(err, "insert scheduled post for video %s", videoID)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"post_id":  id,
		"video_id": videoID,
		"platform": platform,
		"at":       scheduleUTC.UTC().Format(time.RFC3339),
	}).Info("Scheduled post")
	return id, nil
}

// GetDueScheduledPosts returns scheduled jobs whose time is at or before now, oldest first.
func GetDueScheduledPosts(ctx context.Context, now time.Time, limit int) ([]models.DueJob, error) {
	var jobs []models.DueJob
	err := DB.SelectContext(ctx, &jobs, `
		SELECT id, video_id, platform
		FROM scheduled_posts
		WHERE status = 'scheduled' AND schedule_time_utc <= $1
		ORDER BY schedule_time_utc ASC
		LIMIT $2`,
		now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due scheduled posts")
	}
	return jobs, nil
}

// GetScheduledPost loads a single job.
func GetScheduledPost(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	post := &models.ScheduledPost{}
	err := DB.GetContext(ctx, post, `SELECT `+postColumns+` FROM scheduled_posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "scheduled post %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get scheduled post %d", id)
	}
	return post, nil
}

// UpdateScheduledPostStatus writes a new status and result. attemptCount is left untouched when nil.
func UpdateScheduledPostStatus(ctx context.Context, id int64, status string, lastResult *string, attemptCount *int) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $1, last_result = $2, attempt_count = COALESCE($3, attempt_count), updated_at = $4
		WHERE id = $5`,
		status, lastResult, attemptCount, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrapf(err, "update scheduled post %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "update scheduled post %d", id)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "scheduled post %d", id)
	}

	logger.GetLogger().WithField("post_id", id).WithField("status", status).Info("Updated post status")
	return nil
}

// DeleteScheduledPost removes a job and reports whether it existed.
func DeleteScheduledPost(ctx context.Context, id int64) (bool, error) {
	res, err := DB.ExecContext(ctx, `DELETE FROM scheduled_posts WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrapf(err, "delete scheduled post %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, "delete scheduled post %d", id)
	}
	return n > 0, nil
}

// ListScheduledPosts returns every job, latest schedule time first.
func ListScheduledPosts(ctx context.Context) ([]models.ScheduledPost, error) {
	posts := []models.ScheduledPost{}
	err := DB.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM scheduled_posts ORDER BY schedule_time_utc DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list scheduled posts")
	}
	return posts, nil
}

// ListRecentScheduledPosts is ListScheduledPosts capped at limit rows.
func ListRecentScheduledPosts(ctx context.Context, limit int) ([]models.ScheduledPost, error) {
	posts := []models.ScheduledPost{}
	err := DB.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM scheduled_posts ORDER BY schedule_time_utc DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list recent scheduled posts")
	}
	return posts, nil
}

// ListPostedScheduledPosts returns delivered jobs, most recently updated first.
func ListPostedScheduledPosts(ctx context.Context, limit int) ([]models.ScheduledPost, error) {
	posts := []models.ScheduledPost{}
	err := DB.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM scheduled_posts WHERE status = 'posted' ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list posted scheduled posts")
	}
	return posts, nil
}

// CountScheduledPostsByStatus groups the job table by status.
func CountScheduledPostsByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := DB.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM scheduled_posts GROUP BY status`); err != nil {
		return nil, errors.Wrap(err, "count scheduled posts")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// FailStalePostingPosts moves jobs stuck in posting since before cutoff to failed.
func FailStalePostingPosts(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res, err := DB.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = 'failed', last_result = $1, updated_at = $2
		WHERE status = 'posting' AND updated_at < $3`,
		reason, time.Now().UTC(), cutoff.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "fail stale posting posts")
	}
	return res.RowsAffected()
}
