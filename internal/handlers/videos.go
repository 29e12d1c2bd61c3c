package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"yt-summary-publisher/internal/models"
)

// GetVideo serves a video record through the cache.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	rec, err := h.videos.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PutVideo stores the record produced by the transcription pipeline. Re-processing a URL
// overwrites the previous record.
func (h *Handlers) PutVideo(w http.ResponseWriter, r *http.Request) {
	h.saveVideo(w, r, mux.Vars(r)["id"])
}

// PutVideoByURL stores a record keyed by the source URL given in the url query parameter.
func (h *Handlers) PutVideoByURL(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("url")
	if err := h.validate.Var(source, "required,url"); err != nil {
		writeError(w, errors.Join(errBadRequest, fmt.Errorf("url: %w", err)))
		return
	}
	h.saveVideo(w, r, models.VideoIDFromURL(source))
}

func (h *Handlers) saveVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	var rec models.VideoRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}
	rec.VideoID = videoID
	if rec.Summaries == nil {
		rec.Summaries = models.Summaries{}
	}
	if err := h.videos.Save(r.Context(), &rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "video_id": rec.VideoID})
}
