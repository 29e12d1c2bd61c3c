package test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/models"
)

// PostColumns is the scheduled_posts column order selected by the job queries.
var PostColumns = []string{"id", "video_id", "platform", "schedule_time_utc", "status", "attempt_count", "last_result", "created_at", "updated_at"}

// VideoColumns is the video_records column order selected by the record queries.
var VideoColumns = []string{"video_id", "transcript", "summarized_transcript", "details", "summaries", "created_at", "updated_at"}

// ScheduledPostRows builds a result set of jobs in PostColumns order.
func ScheduledPostRows(posts ...models.ScheduledPost) *sqlmock.Rows {
	rows := sqlmock.NewRows(PostColumns)
	for _, p := range posts {
		var lastResult interface{}
		if p.LastResult != nil {
			lastResult = *p.LastResult
		}
		rows.AddRow(p.ID, p.VideoID, p.Platform, p.ScheduleTimeUTC, p.Status, p.AttemptCount, lastResult, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

// DueJobRows builds the result set of the due-jobs query.
func DueJobRows(jobs ...models.DueJob) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "video_id", "platform"})
	for _, j := range jobs {
		rows.AddRow(j.ID, j.VideoID, j.Platform)
	}
	return rows
}

// VideoRecordRows builds a result set of records in VideoColumns order with JSON-encoded columns.
func VideoRecordRows(t *testing.T, recs ...models.VideoRecord) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows(VideoColumns)
	for _, r := range recs {
		details, err := r.Details.Value()
		if err != nil {
			t.Fatalf("encode details for %s: %v", r.VideoID, err)
		}
		summaries, err := r.Summaries.Value()
		if err != nil {
			t.Fatalf("encode summaries for %s: %v", r.VideoID, err)
		}
		rows.AddRow(r.VideoID, r.Transcript, r.SummarizedTranscript, details, summaries, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

// MockTaskEnqueuer records enqueued post:run and posts:reconcile tasks instead of sending them to
// Redis. A non-nil Err fails every Enqueue.
type MockTaskEnqueuer struct {
	EnqueuedTasks []*asynq.Task
	Err           error
}

func (m *MockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.EnqueuedTasks = append(m.EnqueuedTasks, task)
	return &asynq.TaskInfo{ID: "test-task-id", Queue: "default"}, nil
}

// NewMockDB swaps db.DB for a sqlmock-backed connection for the duration of the test.
func NewMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	sqlxDB := sqlx.NewDb(mockDb, "sqlmock")

	originalDB := db.DB
	db.DB = sqlxDB
	t.Cleanup(func() {
		db.DB = originalDB
		mockDb.Close()
	})

	return sqlxDB, mock
}
