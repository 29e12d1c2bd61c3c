// Package handlers is the HTTP control surface: job creation, immediate posts and the
// administrative views over the job and video stores.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/models"
	"yt-summary-publisher/internal/schedule"
	"yt-summary-publisher/internal/worker"
	"yt-summary-publisher/pkg/tasks"
)

// VideoStore is the cached video record accessor used for web reads and writes.
type VideoStore interface {
	Get(ctx context.Context, videoID string) (*models.VideoRecord, error)
	Save(ctx context.Context, rec *models.VideoRecord) error
	Delete(ctx context.Context, videoID string) (bool, error)
}

// Liveness reports on the background scheduler loop.
type Liveness interface {
	Alive(now time.Time) bool
	LastPoll() time.Time
}

// Handlers serves the HTTP routes and the Telegram bot commands.
type Handlers struct {
	dispatcher  *worker.Dispatcher
	videos      VideoStore
	liveness    Liveness
	asynqClient tasks.TaskEnqueuer
	baseURL     string
	validate    *validator.Validate
	now         func() time.Time
}

// New builds the handlers. asynqClient may be nil when Redis is not configured.
func New(dispatcher *worker.Dispatcher, videos VideoStore, liveness Liveness, asynqClient tasks.TaskEnqueuer, baseURL string) *Handlers {
	return &Handlers{
		dispatcher:  dispatcher,
		videos:      videos,
		liveness:    liveness,
		asynqClient: asynqClient,
		baseURL:     baseURL,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// Router registers every route on a new gorilla/mux router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/feed.xml", h.GetRSSFeed).Methods(http.MethodGet)
	r.HandleFunc("/debug_schedules", h.DebugSchedules).Methods(http.MethodGet)

	r.HandleFunc("/schedule_post", h.SchedulePost).Methods(http.MethodPost)
	r.HandleFunc("/post_to_social", h.PostToSocial).Methods(http.MethodPost)
	r.HandleFunc("/custom_tweet", h.CustomTweet).Methods(http.MethodPost)

	r.HandleFunc("/api/videos", h.PutVideoByURL).Methods(http.MethodPut)
	r.HandleFunc("/api/videos/{id}", h.GetVideo).Methods(http.MethodGet)
	r.HandleFunc("/api/videos/{id}", h.PutVideo).Methods(http.MethodPut)

	admin := r.PathPrefix("/admin/api").Subrouter()
	admin.HandleFunc("/scheduled_posts", h.ListScheduledPosts).Methods(http.MethodGet)
	admin.HandleFunc("/due_posts", h.ListDuePosts).Methods(http.MethodGet)
	admin.HandleFunc("/video_data", h.ListVideoData).Methods(http.MethodGet)
	admin.HandleFunc("/system_status", h.SystemStatus).Methods(http.MethodGet)
	admin.HandleFunc("/delete_scheduled_post/{id:[0-9]+}", h.DeleteScheduledPost).Methods(http.MethodDelete, http.MethodPost)
	admin.HandleFunc("/update_post_status", h.UpdatePostStatus).Methods(http.MethodPost)
	admin.HandleFunc("/delete_video/{id}", h.DeleteVideo).Methods(http.MethodDelete, http.MethodPost)
	admin.HandleFunc("/run_post_now/{id:[0-9]+}", h.RunPostNow).Methods(http.MethodPost)
	admin.HandleFunc("/run_post_now/{id:[0-9]+}/async", h.RunPostNowAsync).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to encode response")
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, schedule.ErrInvalidScheduleFormat),
		errors.Is(err, worker.ErrUnsupportedPlatform),
		errors.Is(err, worker.ErrInvalidStatus),
		errors.Is(err, errBadRequest),
		errors.As(err, &verrs):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.GetLogger().WithError(err).Error("Request failed")
	}
	writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

// decode reads a JSON body into dst and validates it.
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return h.validate.Struct(dst)
}

// Health reports process and scheduler liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"scheduler_alive": h.liveness.Alive(now),
		"timestamp":       now.Format(time.RFC3339),
	})
}
