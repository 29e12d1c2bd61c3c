package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/models"
	"yt-summary-publisher/internal/publisher"
	"yt-summary-publisher/internal/schedule"
)

func sampleVideo() *models.VideoRecord {
	return &models.VideoRecord{
		VideoID:   "v1",
		Details:   models.VideoDetails{Title: "Go Concurrency", Duration: 754, Uploader: "GopherCon", ViewCount: 1234},
		Summaries: models.Summaries{"discord": "Discord summary.", "telegram": "Telegram summary."},
	}
}

func newTestDispatcher(adapters ...publisher.Adapter) (*Dispatcher, *memJobs, *memVideos) {
	jobs := newMemJobs()
	videos := &memVideos{recs: map[string]*models.VideoRecord{"v1": sampleVideo()}}
	n := schedule.NewNormalizer(time.UTC, true)
	return NewDispatcher(jobs, videos, publisher.NewRegistry(adapters...), n), jobs, videos
}

func insertPast(t *testing.T, jobs *memJobs, videoID, platform string) int64 {
	id, err := jobs.Insert(context.Background(), videoID, platform, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)
	return id
}

func TestPollerPostsDueJob(t *testing.T) {
	stub := &stubAdapter{platform: "discord", result: publisher.Result{Success: true, Message: "ok"}}
	d, jobs, _ := newTestDispatcher(stub)
	id := insertPast(t, jobs, "v1", "discord")

	n, err := NewPoller(d, time.Second, 20).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	post, err := jobs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPosted, post.Status)
	assert.Equal(t, 1, post.AttemptCount)
	assert.Equal(t, []string{models.StatusPosting, models.StatusPosted}, jobs.trail[id])
	require.Len(t, stub.got, 1)
	assert.Equal(t, "Discord summary.", stub.got[0].Summary)
}

func TestPollerRecordsAdapterFailure(t *testing.T) {
	stub := &stubAdapter{platform: "discord", result: publisher.Result{Success: false, Error: "boom"}}
	d, jobs, _ := newTestDispatcher(stub)
	id := insertPast(t, jobs, "v1", "discord")

	_, err := NewPoller(d, time.Second, 20).RunOnce(context.Background())
	require.NoError(t, err)

	post, _ := jobs.Get(context.Background(), id)
	assert.Equal(t, models.StatusFailed, post.Status)
	assert.Equal(t, 1, post.AttemptCount)
	require.NotNil(t, post.LastResult)
	assert.Contains(t, *post.LastResult, "boom")
}

func TestPollerSkipsFutureJobs(t *testing.T) {
	stub := &stubAdapter{platform: "discord", result: publisher.Result{Success: true}}
	d, jobs, _ := newTestDispatcher(stub)
	id, _ := jobs.Insert(context.Background(), "v1", "discord", time.Now().Add(time.Hour))

	n, err := NewPoller(d, time.Second, 20).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	post, _ := jobs.Get(context.Background(), id)
	assert.Equal(t, models.StatusScheduled, post.Status)
}

func TestPanickingJobDoesNotStopBatch(t *testing.T) {
	bad := &stubAdapter{platform: "telegram", panicMsg: "nil map"}
	good := &stubAdapter{platform: "discord", result: publisher.Result{Success: true}}
	d, jobs, _ := newTestDispatcher(bad, good)

	badID, _ := jobs.Insert(context.Background(), "v1", "telegram", time.Now().Add(-2*time.Minute))
	goodID, _ := jobs.Insert(context.Background(), "v1", "discord", time.Now().Add(-time.Minute))

	n, err := NewPoller(d, time.Second, 20).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	badPost, _ := jobs.Get(context.Background(), badID)
	assert.Equal(t, models.StatusFailed, badPost.Status)
	assert.Contains(t, *badPost.LastResult, "Error processing scheduled post: nil map")

	goodPost, _ := jobs.Get(context.Background(), goodID)
	assert.Equal(t, models.StatusPosted, goodPost.Status)
}

func TestRunNowWithDeletedVideo(t *testing.T) {
	stub := &stubAdapter{platform: "discord", result: publisher.Result{Success: true}}
	d, jobs, videos := newTestDispatcher(stub)
	id, _ := jobs.Insert(context.Background(), "v1", "discord", time.Now().Add(time.Hour))
	delete(videos.recs, "v1")

	res, err := d.RunNow(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not found")
	assert.Empty(t, stub.got)

	post, _ := jobs.Get(context.Background(), id)
	assert.Equal(t, models.StatusFailed, post.Status)
}

func TestRunNowIgnoresScheduleTime(t *testing.T) {
	stub := &stubAdapter{platform: "discord", result: publisher.Result{Success: true}}
	d, jobs, _ := newTestDispatcher(stub)
	id, _ := jobs.Insert(context.Background(), "v1", "discord", time.Now().Add(24*time.Hour))

	res, err := d.RunNow(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.Success)
	post, _ := jobs.Get(context.Background(), id)
	assert.Equal(t, models.StatusPosted, post.Status)
}

func TestRunNowUnknownJob(t *testing.T) {
	d, _, _ := newTestDispatcher()
	_, err := d.RunNow(context.Background(), 404)
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestScheduleJobInvalidFormat(t *testing.T) {
	d, jobs, _ := newTestDispatcher(&stubAdapter{platform: "discord"})

	_, err := d.ScheduleJob(context.Background(), "v1", "discord", "2024/01/15 2pm")
	assert.True(t, errors.Is(err, schedule.ErrInvalidScheduleFormat))
	assert.Equal(t, 0, jobs.count())
}

func TestScheduleJobStoresUTC(t *testing.T) {
	jobs := newMemJobs()
	loc := time.FixedZone("UTC+2", 2*3600)
	d := NewDispatcher(jobs, &memVideos{}, publisher.NewRegistry(&stubAdapter{platform: "telegram"}), schedule.NewNormalizer(loc, true))

	id, err := d.ScheduleJob(context.Background(), "v1", "telegram", "2024-01-15T14:30")
	require.NoError(t, err)
	post, _ := jobs.Get(context.Background(), id)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC), post.ScheduleTimeUTC)
	assert.Equal(t, models.StatusScheduled, post.Status)
	assert.Equal(t, 0, post.AttemptCount)
}

func TestScheduleJobUnknownPlatform(t *testing.T) {
	d, jobs, _ := newTestDispatcher()
	_, err := d.ScheduleJob(context.Background(), "v1", "myspace", "2024-01-15T14:30")
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
	assert.Equal(t, 0, jobs.count())
}

func TestPostNowFallsBackToCopyPaste(t *testing.T) {
	discord := publisher.NewDiscord(publisher.DiscordConfig{})
	jobs := newMemJobs()
	videos := &memVideos{recs: map[string]*models.VideoRecord{"v1": sampleVideo()}}
	d := NewDispatcher(jobs, videos, publisher.NewRegistry(discord), schedule.NewNormalizer(time.UTC, true), WithCopyPasteFallback(true))

	res, err := d.PostNow(context.Background(), "v1", "discord")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.DiscordMessage, "Discord summary.")
	assert.Equal(t, 0, jobs.count())
}

func TestPostNowWithoutFallbackReportsNotConfigured(t *testing.T) {
	d, _, _ := newTestDispatcher(publisher.NewDiscord(publisher.DiscordConfig{}))
	res, err := d.PostNow(context.Background(), "v1", "discord")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not configured")
}

func TestPostNowMissingVideo(t *testing.T) {
	d, _, _ := newTestDispatcher(&stubAdapter{platform: "discord"})
	_, err := d.PostNow(context.Background(), "nope", "discord")
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestSetJobStatus(t *testing.T) {
	d, jobs, _ := newTestDispatcher()
	id := insertPast(t, jobs, "v1", "discord")

	require.NoError(t, d.SetJobStatus(context.Background(), id, models.StatusFailed))
	post, _ := jobs.Get(context.Background(), id)
	assert.Equal(t, models.StatusFailed, post.Status)
	assert.Equal(t, "Manually updated by admin", *post.LastResult)

	assert.True(t, errors.Is(d.SetJobStatus(context.Background(), id, "archived"), ErrInvalidStatus))
}

func TestReconcileStuck(t *testing.T) {
	d, jobs, _ := newTestDispatcher()
	id := insertPast(t, jobs, "v1", "discord")
	jobs.rows[id].Status = models.StatusPosting
	jobs.rows[id].UpdatedAt = time.Now().UTC().Add(-time.Hour)

	n, err := d.ReconcileStuck(context.Background(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, models.StatusFailed, jobs.rows[id].Status)
}

func TestPollerLiveness(t *testing.T) {
	d, _, _ := newTestDispatcher()
	p := NewPoller(d, time.Second, 5)
	assert.False(t, p.Alive(time.Now()))

	_, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Alive(time.Now()))
	assert.False(t, p.Alive(time.Now().Add(time.Minute)))
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	d, _, _ := newTestDispatcher()
	p := NewPoller(d, 10*time.Millisecond, 5)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	assert.False(t, p.LastPoll().IsZero())
}
