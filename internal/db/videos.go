package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"yt-summary-publisher/internal/models"
)

const videoColumns = `video_id, transcript, summarized_transcript, details, summaries, created_at, updated_at`

// GetVideoRecord reads a record straight from the database.
func GetVideoRecord(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	rec := &models.VideoRecord{}
	err := DB.GetContext(ctx, rec, `SELECT `+videoColumns+` FROM video_records WHERE video_id = $1`, videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "video %s", videoID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get video %s", videoID)
	}
	return rec, nil
}

// SaveVideoRecord inserts a record or overwrites the existing one for the same video.
func SaveVideoRecord(ctx context.Context, rec *models.VideoRecord) error {
	now := time.Now().UTC()
	_, err := DB.ExecContext(ctx, `
		INSERT INTO video_records (video_id, transcript, summarized_transcript, details, summaries, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (video_id) DO UPDATE SET
			transcript = EXCLUDED.transcript,
			summarized_transcript = EXCLUDED.summarized_transcript,
			details = EXCLUDED.details,
			summaries = EXCLUDED.summaries,
			updated_at = EXCLUDED.updated_at`,
		rec.VideoID, rec.Transcript, rec.SummarizedTranscript, rec.Details, rec.Summaries, now)
	if err != nil {
		return errors.Wrapf(err, "save video %s", rec.VideoID)
	}
	return nil
}

// ListVideoRecords returns all records, most recently updated first.
func ListVideoRecords(ctx context.Context) ([]models.VideoRecord, error) {
	recs := []models.VideoRecord{}
	if err := DB.SelectContext(ctx, &recs, `SELECT `+videoColumns+` FROM video_records ORDER BY updated_at DESC`); err != nil {
		return nil, errors.Wrap(err, "list videos")
	}
	return recs, nil
}

// CountVideoRecords returns the number of stored videos.
func CountVideoRecords(ctx context.Context) (int, error) {
	var n int
	if err := DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM video_records`); err != nil {
		return 0, errors.Wrap(err, "count videos")
	}
	return n, nil
}

// DeleteVideoRecord removes a record and reports whether it existed.
func DeleteVideoRecord(ctx context.Context, videoID string) (bool, error) {
	res, err := DB.ExecContext(ctx, `DELETE FROM video_records WHERE video_id = $1`, videoID)
	if err != nil {
		return false, errors.Wrapf(err, "delete video %s", videoID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, "delete video %s", videoID)
	}
	return n > 0, nil
}
