// Package publisher delivers rendered video summaries to messaging platforms.
//
// Adapters never return errors to their caller: every failure, including missing credentials,
// is reported through Result so the worker can persist it verbatim.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"yt-summary-publisher/internal/models"
)

const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
	PlatformTwitter  = "twitter"
)

// ErrNotConfigured marks a platform whose credentials are absent.
var ErrNotConfigured = errors.New("not configured")

// DeliveryError is a platform API failure: a transport error or a non-2xx response.
type DeliveryError struct {
	Platform   string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s posting failed: %v", e.Platform, e.Err)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Platform, e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Content is a video rendered for one platform.
type Content struct {
	VideoID  string
	Platform string
	Title    string
	Summary  string
	Details  models.VideoDetails
}

// Render selects the platform-tuned summary from rec. A missing summary renders as an empty body.
func Render(platform string, rec *models.VideoRecord) Content {
	return Content{
		VideoID:  rec.VideoID,
		Platform: platform,
		Title:    rec.Details.Title,
		Summary:  rec.Summaries[platform],
		Details:  rec.Details,
	}
}

// Result is the uniform outcome of a delivery attempt.
type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	TwitterURL     string `json:"twitter_url,omitempty"`
	TwitterMessage string `json:"twitter_message,omitempty"`
	DiscordMessage string `json:"discord_message,omitempty"`
}

// Fail wraps err into an unsuccessful Result.
func Fail(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Adapter posts content to a single platform.
type Adapter interface {
	Platform() string
	Post(ctx context.Context, c Content) Result
}

// Configurable is implemented by adapters that need credentials.
type Configurable interface {
	Configured() bool
}

// CopyPaster is implemented by adapters that can produce a manual copy/paste rendering.
type CopyPaster interface {
	CopyPaste(c Content) Result
}

// Registry maps platform names to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry registers each adapter under its platform name.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Platform().
func (r *Registry) Register(a Adapter) {
	r.adapters[strings.ToLower(a.Platform())] = a
}

// Get looks up the adapter for platform, ignoring case.
func (r *Registry) Get(platform string) (Adapter, bool) {
	a, ok := r.adapters[strings.ToLower(platform)]
	return a, ok
}

// Platforms lists the registered platform names in sorted order.
func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
