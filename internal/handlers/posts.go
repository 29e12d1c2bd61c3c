package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"yt-summary-publisher/internal/publisher"
)

type schedulePostRequest struct {
	VideoID      string `json:"video_id" validate:"required"`
	Platform     string `json:"platform" validate:"required"`
	ScheduleTime string `json:"schedule_time"`
	PostNow      bool   `json:"post_now"`
}

type scheduleResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	JobID             int64  `json:"job_id"`
	ScheduleTimeUTC   string `json:"schedule_time_utc"`
	ScheduleTimeLocal string `json:"schedule_time_local"`
}

// SchedulePost stores a job, or posts immediately when post_now is set or no time is given.
func (h *Handlers) SchedulePost(w http.ResponseWriter, r *http.Request) {
	var req schedulePostRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	platform := strings.ToLower(req.Platform)

	if req.PostNow || strings.TrimSpace(req.ScheduleTime) == "" {
		h.postNow(w, r, req.VideoID, platform)
		return
	}

	id, err := h.dispatcher.ScheduleJob(r.Context(), req.VideoID, platform, req.ScheduleTime)
	if err != nil {
		writeError(w, err)
		return
	}
	at, _ := h.dispatcher.Normalizer().ToUTC(req.ScheduleTime)
	writeJSON(w, http.StatusOK, scheduleResponse{
		Success:           true,
		Message:           fmt.Sprintf("Post scheduled for %s", req.ScheduleTime),
		JobID:             id,
		ScheduleTimeUTC:   at.Format(time.RFC3339),
		ScheduleTimeLocal: h.dispatcher.Normalizer().FromUTC(at),
	})
}

type postToSocialRequest struct {
	VideoID  string `json:"video_id" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

func (h *Handlers) PostToSocial(w http.ResponseWriter, r *http.Request) {
	var req postToSocialRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.postNow(w, r, req.VideoID, strings.ToLower(req.Platform))
}

func (h *Handlers) postNow(w http.ResponseWriter, r *http.Request, videoID, platform string) {
	res, err := h.dispatcher.PostNow(r.Context(), videoID, platform)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type customTweetRequest struct {
	Text     string   `json:"text" validate:"required,max=280"`
	URL      string   `json:"url" validate:"omitempty,url"`
	Hashtags []string `json:"hashtags" validate:"max=10,dive,max=50"`
}

// CustomTweet builds a share link for arbitrary text.
func (h *Handlers) CustomTweet(w http.ResponseWriter, r *http.Request) {
	var req customTweetRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	link, err := publisher.ShareURL(req.Text, req.URL, req.Hashtags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publisher.Result{
		Success:        true,
		Message:        "Twitter share URL generated successfully!",
		TwitterURL:     link,
		TwitterMessage: req.Text,
	})
}
