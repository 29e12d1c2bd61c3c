package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
	"github.com/pkg/errors"

	"yt-summary-publisher/internal/logger"
)

// DB is the global database connection.
var DB *sqlx.DB

// ErrNotFound is returned when a job or video record does not exist.
var ErrNotFound = errors.New("not found")

// InitDB opens and verifies the database connection.
func InitDB(dbURL string) error {
	if dbURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	conn, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	if err := conn.Ping(); err != nil {
		return errors.Wrap(err, "ping database")
	}

	DB = conn
	logger.GetLogger().Info("Database connection established")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS scheduled_posts (
		id BIGSERIAL PRIMARY KEY,
		video_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		schedule_time_utc TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_result TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_posts_due ON scheduled_posts (status, schedule_time_utc)`,
	`CREATE TABLE IF NOT EXISTS video_records (
		video_id TEXT PRIMARY KEY,
		transcript TEXT NOT NULL DEFAULT '',
		summarized_transcript TEXT NOT NULL DEFAULT '',
		details JSONB NOT NULL DEFAULT '{}'::jsonb,
		summaries JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "ensure schema (sql=%s)", stmt)
		}
	}
	return nil
}
