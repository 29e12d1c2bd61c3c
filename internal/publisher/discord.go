package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"yt-summary-publisher/internal/logger"
)

const (
	discordColor  = 5814783
	discordFooter = "Generated by YouTube Summarizer"
)

type DiscordConfig struct {
	Token     string
	ChannelID string
	BaseURL   string
	Timeout   time.Duration
}

// Discord posts a single rich embed to a channel through the REST API.
type Discord struct {
	cfg    DiscordConfig
	client *resty.Client
	now    func() time.Time
}

func NewDiscord(cfg DiscordConfig) *Discord {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://discord.com/api/v10"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Discord{
		cfg:    cfg,
		client: resty.New().SetTimeout(cfg.Timeout),
		now:    time.Now,
	}
}

func (d *Discord) Platform() string { return PlatformDiscord }

func (d *Discord) Configured() bool {
	return d.cfg.Token != "" && d.cfg.ChannelID != ""
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordFooterBlock struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url,omitempty"`
	Color       int                `json:"color"`
	Fields      []discordField     `json:"fields"`
	Thumbnail   *discordImage      `json:"thumbnail,omitempty"`
	Footer      discordFooterBlock `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

type discordMessage struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

func (d *Discord) buildMessage(c Content) discordMessage {
	title := c.Title
	if title == "" {
		title = defaultTitle
	}
	uploader := c.Details.Uploader
	if uploader == "" {
		uploader = "Unknown"
	}
	embed := discordEmbed{
		Title:       "🎥 " + title,
		Description: c.Summary,
		URL:         c.Details.WatchURL(),
		Color:       discordColor,
		Fields: []discordField{
			{Name: "Channel", Value: uploader, Inline: true},
			{Name: "Duration", Value: FormatDuration(c.Details.Duration), Inline: true},
			{Name: "Views", Value: FormatThousands(c.Details.ViewCount), Inline: true},
		},
		Footer:    discordFooterBlock{Text: discordFooter},
		Timestamp: d.now().UTC().Format(time.RFC3339),
	}
	if c.Details.ThumbnailURL != "" {
		embed.Thumbnail = &discordImage{URL: c.Details.ThumbnailURL}
	}
	return discordMessage{
		Content: "📺 **New YouTube Video Summary**",
		Embeds:  []discordEmbed{embed},
	}
}

func (d *Discord) Post(ctx context.Context, c Content) Result {
	if !d.Configured() {
		return Fail(fmt.Errorf("discord %w", ErrNotConfigured))
	}

	payload, err := json.Marshal(d.buildMessage(c))
	if err != nil {
		return Fail(err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", strings.TrimRight(d.cfg.BaseURL, "/"), d.cfg.ChannelID)
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bot "+d.cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("video_id", c.VideoID).Warn("Discord request failed")
		return Fail(&DeliveryError{Platform: PlatformDiscord, Err: err})
	}
	if !resp.IsSuccess() {
		return Fail(&DeliveryError{Platform: PlatformDiscord, StatusCode: resp.StatusCode(), Body: resp.String()})
	}

	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(resp.Body(), &created)
	return Result{Success: true, Message: "Posted to Discord successfully!", MessageID: created.ID}
}

// CopyPaste renders the post as markdown text for manual pasting.
func (d *Discord) CopyPaste(c Content) Result {
	title := c.Title
	if title == "" {
		title = defaultTitle
	}
	uploader := c.Details.Uploader
	if uploader == "" {
		uploader = "Unknown"
	}
	text := fmt.Sprintf("**🎥 %s**\n\n%s\n\n**Channel:** %s\n**Duration:** %s\n**Views:** %s\n\n*%s*",
		title, c.Summary, uploader,
		FormatDuration(c.Details.Duration), FormatThousands(c.Details.ViewCount), discordFooter)
	return Result{Success: true, Message: "Discord message ready - copy/paste", DiscordMessage: text}
}
