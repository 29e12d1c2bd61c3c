package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/models"
	"yt-summary-publisher/internal/publisher"
)

type memJobs struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.ScheduledPost
	trail  map[int64][]string
}

func newMemJobs() *memJobs {
	return &memJobs{rows: map[int64]*models.ScheduledPost{}, trail: map[int64][]string{}}
}

func (m *memJobs) Insert(_ context.Context, videoID, platform string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	m.rows[m.nextID] = &models.ScheduledPost{
		ID: m.nextID, VideoID: videoID, Platform: platform, ScheduleTimeUTC: at.UTC(),
		Status: models.StatusScheduled, CreatedAt: now, UpdatedAt: now,
	}
	return m.nextID, nil
}

func (m *memJobs) Due(_ context.Context, now time.Time, limit int) ([]models.DueJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*models.ScheduledPost
	for _, r := range m.rows {
		if r.Status == models.StatusScheduled && !r.ScheduleTimeUTC.After(now) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduleTimeUTC.Before(due[j].ScheduleTimeUTC) })
	out := []models.DueJob{}
	for i, r := range due {
		if i >= limit {
			break
		}
		out = append(out, models.DueJob{ID: r.ID, VideoID: r.VideoID, Platform: r.Platform})
	}
	return out, nil
}

func (m *memJobs) Get(_ context.Context, id int64) (*models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memJobs) UpdateStatus(_ context.Context, id int64, status string, lastResult *string, attemptCount *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return db.ErrNotFound
	}
	r.Status = status
	r.LastResult = lastResult
	if attemptCount != nil {
		r.AttemptCount = *attemptCount
	}
	r.UpdatedAt = time.Now().UTC()
	m.trail[id] = append(m.trail[id], status)
	return nil
}

func (m *memJobs) FailStalePosting(_ context.Context, cutoff time.Time, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.Status == models.StatusPosting && r.UpdatedAt.Before(cutoff) {
			r.Status = models.StatusFailed
			msg := reason
			r.LastResult = &msg
			n++
		}
	}
	return n, nil
}

func (m *memJobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memVideos struct {
	recs map[string]*models.VideoRecord
}

func (m *memVideos) Get(_ context.Context, videoID string) (*models.VideoRecord, error) {
	r, ok := m.recs[videoID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return r, nil
}

// stubAdapter returns a canned result, or panics when panicMsg is set.
type stubAdapter struct {
	platform string
	result   publisher.Result
	panicMsg string
	got      []publisher.Content
}

func (s *stubAdapter) Platform() string { return s.platform }

func (s *stubAdapter) Post(_ context.Context, c publisher.Content) publisher.Result {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.got = append(s.got, c)
	return s.result
}
