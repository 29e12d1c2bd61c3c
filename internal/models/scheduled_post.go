package models

import "time"

const (
	StatusScheduled = "scheduled"
	StatusPosting   = "posting"
	StatusPosted    = "posted"
	StatusFailed    = "failed"
)

// ValidStatus reports whether s is one of the job lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusPosting, StatusPosted, StatusFailed:
		return true
	}
	return false
}

// ScheduledPost is one publication intent for a video on a single platform.
type ScheduledPost struct {
	ID              int64     `db:"id" json:"id"`
	VideoID         string    `db:"video_id" json:"video_id"`
	Platform        string    `db:"platform" json:"platform"`
	ScheduleTimeUTC time.Time `db:"schedule_time_utc" json:"schedule_time_utc"`
	Status          string    `db:"status" json:"status"`
	AttemptCount    int       `db:"attempt_count" json:"attempt_count"`
	LastResult      *string   `db:"last_result" json:"last_result"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DueJob is the slice of a ScheduledPost the worker needs to dispatch it.
type DueJob struct {
	ID       int64  `db:"id" json:"id"`
	VideoID  string `db:"video_id" json:"video_id"`
	Platform string `db:"platform" json:"platform"`
}
