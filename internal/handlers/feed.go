package handlers

import (
	"errors"
	"net/http"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/feed"
	"yt-summary-publisher/internal/logger"
)

const feedItemLimit = 50

func (h *Handlers) GetRSSFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := db.ListPostedScheduledPosts(r.Context(), feedItemLimit)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Error getting posted schedules")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	entries := make([]feed.Entry, 0, len(posts))
	for _, p := range posts {
		rec, err := h.videos.Get(r.Context(), p.VideoID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			logger.GetLogger().WithError(err).WithField("video_id", p.VideoID).Warn("Error loading video for feed")
		}
		entries = append(entries, feed.Entry{Post: p, Video: rec})
	}

	rss, err := feed.GenerateRSS(feed.BaseURL(r, h.baseURL), entries)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Error generating RSS")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
