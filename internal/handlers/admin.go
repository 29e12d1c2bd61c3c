package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/models"
	"yt-summary-publisher/pkg/tasks"
)

const debugScheduleLimit = 10

type scheduledPostView struct {
	models.ScheduledPost
	ScheduleTimeLocal string `json:"schedule_time_local"`
}

func (h *Handlers) views(posts []models.ScheduledPost) []scheduledPostView {
	out := make([]scheduledPostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, scheduledPostView{ScheduledPost: p, ScheduleTimeLocal: h.dispatcher.Normalizer().FromUTC(p.ScheduleTimeUTC)})
	}
	return out
}

func (h *Handlers) ListScheduledPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := db.ListScheduledPosts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.views(posts))
}

func (h *Handlers) ListDuePosts(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	due, err := h.dispatcher.DueJobs(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

func (h *Handlers) DebugSchedules(w http.ResponseWriter, r *http.Request) {
	posts, err := db.ListRecentScheduledPosts(r.Context(), debugScheduleLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	now := h.now()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_utc":   now.UTC().Format(time.RFC3339),
		"current_local": h.dispatcher.Normalizer().FromUTC(now),
		"schedules":     h.views(posts),
	})
}

type videoSummaryView struct {
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	Uploader  string    `json:"uploader"`
	Duration  int       `json:"duration"`
	Platforms []string  `json:"platforms"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handlers) ListVideoData(w http.ResponseWriter, r *http.Request) {
	recs, err := db.ListVideoRecords(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]videoSummaryView, 0, len(recs))
	for _, rec := range recs {
		platforms := make([]string, 0, len(rec.Summaries))
		for p := range rec.Summaries {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)
		out = append(out, videoSummaryView{
			VideoID:   rec.VideoID,
			Title:     rec.Details.Title,
			Uploader:  rec.Details.Uploader,
			Duration:  rec.Details.Duration,
			Platforms: platforms,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) SystemStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := db.CountScheduledPostsByStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	videos, err := db.CountVideoRecords(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	for _, s := range []string{models.StatusScheduled, models.StatusPosting, models.StatusPosted, models.StatusFailed} {
		if _, ok := counts[s]; !ok {
			counts[s] = 0
		}
	}

	now := h.now().UTC()
	var lastPoll *string
	if lp := h.liveness.LastPoll(); !lp.IsZero() {
		s := lp.Format(time.RFC3339)
		lastPoll = &s
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scheduled_posts": counts,
		"video_count":     videos,
		"scheduler_alive": h.liveness.Alive(now),
		"last_poll":       lastPoll,
		"platforms":       h.dispatcher.Registry().Platforms(),
		"async_enabled":   h.asynqClient != nil,
		"current_utc":     now.Format(time.RFC3339),
	})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", errBadRequest)
	}
	return id, nil
}

func (h *Handlers) DeleteScheduledPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := db.DeleteScheduledPost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("scheduled post %d: %w", id, db.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Scheduled post deleted"})
}

type updateStatusRequest struct {
	PostID int64  `json:"post_id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=scheduled posting posted failed"`
}

func (h *Handlers) UpdatePostStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.dispatcher.SetJobStatus(r.Context(), req.PostID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": fmt.Sprintf("Status updated to %s", req.Status)})
}

func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["id"]
	ok, err := h.videos.Delete(r.Context(), videoID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("video %s: %w", videoID, db.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Video data deleted"})
}

// RunPostNow re-executes a job synchronously and returns the adapter result.
func (h *Handlers) RunPostNow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.dispatcher.RunNow(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RunPostNowAsync hands the job to the asynq worker.
func (h *Handlers) RunPostNowAsync(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.asynqClient == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "async execution requires REDIS_ADDR"})
		return
	}
	if _, err := db.GetScheduledPost(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	task, err := tasks.NewRunPostTask(id)
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		writeError(w, fmt.Errorf("failed to enqueue run-now task: %w", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"success": true, "task_id": info.ID, "queue": info.Queue})
}
