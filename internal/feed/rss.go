package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"yt-summary-publisher/internal/models"
)

// Entry is a delivered post together with the video it published.
type Entry struct {
	Post  models.ScheduledPost
	Video *models.VideoRecord
}

// BaseURL returns configured when set, else derives it from the request.
func BaseURL(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateRSS renders delivered posts as an RSS channel, newest first as given.
func GenerateRSS(baseURL string, entries []Entry) (string, error) {
	p := podcast.New(
		"YouTube Summaries",
		baseURL+"/feed.xml",
		"Video summaries published to messaging platforms.",
		&time.Time{}, &time.Time{},
	)

	for _, e := range entries {
		if e.Video == nil {
			continue
		}
		title := e.Video.Details.Title
		if title == "" {
			title = e.Post.VideoID
		}
		description := e.Video.Summaries[e.Post.Platform]
		if description == "" {
			description = e.Video.SummarizedTranscript
		}
		if description == "" {
			description = title
		}
		link := e.Video.Details.WatchURL()
		if link == "" {
			link = fmt.Sprintf("%s/api/videos/%s", baseURL, e.Video.VideoID)
		}
		pub := e.Post.UpdatedAt

		item := podcast.Item{
			Title:       fmt.Sprintf("[%s] %s", e.Post.Platform, title),
			Description: description,
			Link:        link,
			GUID:        fmt.Sprintf("%s/posts/%d", baseURL, e.Post.ID),
			PubDate:     &pub,
		}
		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}
