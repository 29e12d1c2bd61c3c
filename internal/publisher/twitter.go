package publisher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	TweetLimit        = 280
	tweetSummaryLimit = 200
	tweetHashtags     = "#YouTube #Summary"
)

// IntentURL is the web-intent endpoint share links are built on.
var IntentURL = "https://twitter.com/intent/tweet"

// Twitter never calls the network; it renders a tweet and a pre-filled share link.
type Twitter struct{}

func NewTwitter() *Twitter { return &Twitter{} }

func (t *Twitter) Platform() string { return PlatformTwitter }

// TweetBody renders title and summary into a tweet of at most TweetLimit runes.
func TweetBody(title, summary string) string {
	if title == "" {
		title = defaultTitle
	}
	body := fmt.Sprintf("🎥 %s\n\n%s", title, ellipsize(summary, tweetSummaryLimit))
	body = ellipsize(body, TweetLimit)
	if TweetLimit-runeLen(body) > runeLen(tweetHashtags)+2 {
		body += "\n\n" + tweetHashtags
	}
	return body
}

// ShareURL builds a web-intent link with text, an optional target link and optional hashtags.
func ShareURL(text, link string, hashtags []string) (string, error) {
	u, err := url.Parse(IntentURL)
	if err != nil {
		return "", fmt.Errorf("parse intent url: %w", err)
	}
	q := url.Values{}
	q.Set("text", text)
	if link != "" {
		q.Set("url", link)
	}
	var tags []string
	for _, h := range hashtags {
		h = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(h), "#"), " ", "")
		if h != "" {
			tags = append(tags, h)
		}
	}
	if len(tags) > 0 {
		q.Set("hashtags", strings.Join(tags, ","))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t *Twitter) Post(_ context.Context, c Content) Result {
	body := TweetBody(c.Title, c.Summary)
	link, err := ShareURL(body, c.Details.WatchURL(), nil)
	if err != nil {
		return Fail(err)
	}
	return Result{
		Success:        true,
		Message:        "Twitter share URL generated successfully!",
		TwitterURL:     link,
		TwitterMessage: body,
	}
}
