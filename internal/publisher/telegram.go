package publisher

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"

	"yt-summary-publisher/internal/logger"
)

const (
	// CaptionLimit is Telegram's hard limit for photo captions.
	CaptionLimit = 1024
	// MessageLimit is Telegram's hard limit for text messages.
	MessageLimit = 4096
	// DefaultMaxCaption leaves headroom under CaptionLimit.
	DefaultMaxCaption = 900

	captionOverhead   = 50
	followUpThreshold = 200
	telegramHashtags  = "#YouTube #Summary"
	defaultTitle      = "YouTube Video"
)

// TelegramConfig holds the bot credentials and caption budget.
type TelegramConfig struct {
	Token            string
	ChatID           string
	BaseURL          string
	MaxCaptionLength int
	Timeout          time.Duration
}

// Telegram posts through the Bot API: sendPhoto when a thumbnail exists, sendMessage otherwise.
type Telegram struct {
	cfg    TelegramConfig
	client *resty.Client
}

// NewTelegram applies defaults and clamps MaxCaptionLength to CaptionLimit.
func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.MaxCaptionLength <= 0 {
		cfg.MaxCaptionLength = DefaultMaxCaption
	}
	if cfg.MaxCaptionLength > CaptionLimit {
		cfg.MaxCaptionLength = CaptionLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Telegram{
		cfg:    cfg,
		client: resty.New().SetTimeout(cfg.Timeout),
	}
}

func (t *Telegram) Platform() string { return PlatformTelegram }

// Configured reports whether both the token and the chat id are set.
func (t *Telegram) Configured() bool {
	return t.cfg.Token != "" && t.cfg.ChatID != ""
}

// frame is everything a post adds around the escaped title and summary.
var frame = fmt.Sprintf(postLayout, "", "", telegramHashtags)

const (
	postLayout     = "🎥 <b>%s</b>\n\n%s\n\n%s"
	followUpPrefix = "📝 Full Summary:\n\n"
)

// FullMessage renders the HTML post for a raw title and summary in at most limit runes. The title
// may take up to half of the room left by the frame; the summary is shortened to fit the rest.
func FullMessage(title, summary string, limit int) string {
	room := limit - runeLen(frame)
	if room <= 0 {
		return escapeWithin(title, limit)
	}
	escTitle := escapeWithin(title, room/2)
	body := escapeWithin(summary, room-runeLen(escTitle))
	return fmt.Sprintf(postLayout, escTitle, body, telegramHashtags)
}

// SafeCaption builds a photo caption of at most maxLen runes from a raw title and whole leading
// sentences of summary. At most two sentences are kept; the summary is cut short when not even
// the first sentence fits. Cuts only happen between characters, so entities stay intact.
func SafeCaption(title, summary string, maxLen int) string {
	if maxLen <= 0 || maxLen > CaptionLimit {
		maxLen = CaptionLimit
	}
	if maxLen < runeLen(frame)+captionOverhead {
		return escapeWithin(title, maxLen)
	}
	escTitle := escapeWithin(title, (maxLen-runeLen(frame))/2)
	budget := maxLen - runeLen(escTitle) - captionOverhead

	var short strings.Builder
	kept := 0
	for _, sentence := range strings.Split(summary, ". ") {
		sentence = strings.TrimSuffix(strings.TrimSpace(sentence), ".")
		if sentence == "" {
			continue
		}
		sentence = escapeHTML(sentence)
		if runeLen(short.String())+runeLen(sentence)+2 > budget {
			break
		}
		short.WriteString(sentence)
		short.WriteString(". ")
		kept++
		if kept >= 2 {
			break
		}
	}

	body := strings.TrimSpace(short.String())
	if body == "" && strings.TrimSpace(summary) != "" {
		body = escapeWithin(strings.TrimSpace(summary), budget)
	}
	return fmt.Sprintf(postLayout, escTitle, body, telegramHashtags)
}

// escapeWithin HTML-escapes s and, when the result is longer than limit runes, cuts it between
// characters and appends "..." so the output still fits. An entity is never split.
func escapeWithin(s string, limit int) string {
	escaped := escapeHTML(s)
	if runeLen(escaped) <= limit {
		return escaped
	}
	if limit <= len(ellipsis) {
		return ellipsis[:max(limit, 0)]
	}
	budget := limit - len(ellipsis)
	var b strings.Builder
	used := 0
	for _, r := range s {
		piece := escapeHTML(string(r))
		if used+runeLen(piece) > budget {
			break
		}
		b.WriteString(piece)
		used += runeLen(piece)
	}
	return b.String() + ellipsis
}

// Post delivers c as a photo with caption when a thumbnail exists, else as a text message.
func (t *Telegram) Post(ctx context.Context, c Content) Result {
	if !t.Configured() {
		return Fail(fmt.Errorf("telegram credentials %w", ErrNotConfigured))
	}

	title := c.Title
	if title == "" {
		title = defaultTitle
	}
	message := FullMessage(title, c.Summary, MessageLimit)
	lg := logger.GetLogger().WithField("video_id", c.VideoID).WithField("platform", PlatformTelegram)

	if c.Details.ThumbnailURL == "" {
		id, err := t.send(ctx, "sendMessage", map[string]string{
			"chat_id":    t.cfg.ChatID,
			"text":       message,
			"parse_mode": "HTML",
		})
		if err != nil {
			lg.WithError(err).Warn("Telegram sendMessage failed")
			return Fail(err)
		}
		return Result{Success: true, Message: "Posted to Telegram successfully!", MessageID: id}
	}

	caption := SafeCaption(title, c.Summary, t.cfg.MaxCaptionLength)
	id, err := t.send(ctx, "sendPhoto", map[string]string{
		"chat_id":    t.cfg.ChatID,
		"photo":      c.Details.ThumbnailURL,
		"caption":    caption,
		"parse_mode": "HTML",
	})
	if err != nil {
		lg.WithError(err).Warn("Telegram sendPhoto failed")
		return Fail(err)
	}

	if runeLen(message) <= runeLen(caption)+followUpThreshold {
		return Result{Success: true, Message: "Posted to Telegram successfully!", MessageID: id}
	}

	_, err = t.send(ctx, "sendMessage", map[string]string{
		"chat_id":    t.cfg.ChatID,
		"text":       followUpPrefix + escapeWithin(c.Summary, MessageLimit-runeLen(followUpPrefix)),
		"parse_mode": "HTML",
	})
	if err != nil {
		lg.WithError(err).Warn("Telegram follow-up message failed")
		return Result{Success: true, Message: "Photo posted, but additional content failed", MessageID: id}
	}
	return Result{Success: true, Message: "Posted to Telegram successfully! (photo + additional content)", MessageID: id}
}

type telegramResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (t *Telegram) send(ctx context.Context, method string, form map[string]string) (string, error) {
	url := fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(t.cfg.BaseURL, "/"), t.cfg.Token, method)
	resp, err := t.client.R().SetContext(ctx).SetFormData(form).Post(url)
	if err != nil {
		return "", &DeliveryError{Platform: PlatformTelegram, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &DeliveryError{Platform: PlatformTelegram, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var body telegramResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Result.MessageID == 0 {
		return "", nil
	}
	return strconv.FormatInt(body.Result.MessageID, 10), nil
}

func escapeHTML(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
