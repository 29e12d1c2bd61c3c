package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/models"
	"yt-summary-publisher/internal/publisher"
	"yt-summary-publisher/internal/schedule"
	"yt-summary-publisher/internal/test"
)

// cancelingAdapter cancels the caller's context while the post is in flight, the way a
// shutdown signal would arrive mid-delivery.
type cancelingAdapter struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelingAdapter) Platform() string { return "discord" }

func (c *cancelingAdapter) Post(_ context.Context, _ publisher.Content) publisher.Result {
	c.calls++
	c.cancel()
	return publisher.Result{Success: true, Message: "Posted to Discord"}
}

func newSQLDispatcher(adapter publisher.Adapter) *Dispatcher {
	videos := &memVideos{recs: map[string]*models.VideoRecord{"v1": sampleVideo()}}
	return NewDispatcher(db.Jobs{}, videos, publisher.NewRegistry(adapter), schedule.NewNormalizer(time.UTC, true))
}

func TestExecuteRecordsOutcomeWhenCancelledDuringPost(t *testing.T) {
	_, mock := test.NewMockDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	adapter := &cancelingAdapter{cancel: cancel}
	d := newSQLDispatcher(adapter)

	mock.ExpectExec(`UPDATE scheduled_posts`).
		WithArgs(models.StatusPosting, "Posting started", nil, sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE scheduled_posts`).
		WithArgs(models.StatusPosted, sqlmock.AnyArg(), 1, sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := d.Execute(ctx, models.DueJob{ID: 3, VideoID: "v1", Platform: "discord"})

	assert.True(t, res.Success)
	assert.Error(t, ctx.Err())
	assert.Equal(t, 1, adapter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOnceStopsBetweenJobsAfterCancel(t *testing.T) {
	_, mock := test.NewMockDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	adapter := &cancelingAdapter{cancel: cancel}
	d := newSQLDispatcher(adapter)

	mock.ExpectQuery(`SELECT id, video_id, platform\s+FROM scheduled_posts`).
		WithArgs(sqlmock.AnyArg(), 20).
		WillReturnRows(test.DueJobRows(
			models.DueJob{ID: 1, VideoID: "v1", Platform: "discord"},
			models.DueJob{ID: 2, VideoID: "v1", Platform: "discord"},
		))
	mock.ExpectExec(`UPDATE scheduled_posts`).
		WithArgs(models.StatusPosting, "Posting started", nil, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE scheduled_posts`).
		WithArgs(models.StatusPosted, sqlmock.AnyArg(), 1, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewPoller(d, time.Second, 20).RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, adapter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSurvivesFailedOutcomeWrite(t *testing.T) {
	_, mock := test.NewMockDB(t)
	stub := &stubAdapter{platform: "discord", result: publisher.Result{Success: true, Message: "ok"}}
	d := newSQLDispatcher(stub)

	mock.ExpectExec(`UPDATE scheduled_posts`).
		WithArgs(models.StatusPosting, "Posting started", nil, sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE scheduled_posts`).
		WithArgs(models.StatusPosted, sqlmock.AnyArg(), 1, sqlmock.AnyArg(), int64(4)).
		WillReturnError(errors.New("connection reset"))

	var res publisher.Result
	require.NotPanics(t, func() {
		res = d.Execute(context.Background(), models.DueJob{ID: 4, VideoID: "v1", Platform: "discord"})
	})

	assert.True(t, res.Success)
	require.Len(t, stub.got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
