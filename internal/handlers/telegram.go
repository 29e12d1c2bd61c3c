package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/publisher"
)

const botHelp = "Commands:\n" +
	"/jobs - latest scheduled posts\n" +
	"/schedule <video_id> <platform> <YYYY-MM-DDTHH:MM>\n" +
	"/postnow <video_id> <platform>\n" +
	"/runnow <job_id>"

// ErrBotChatID is returned when no usable chat id restricts the command bot.
var ErrBotChatID = errors.New("telegram bot requires a numeric chat id")

// BotChatID parses the chat the command bot answers to. Empty and non-numeric values are refused
// so the bot is never left open to every chat.
func BotChatID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: TELEGRAM_CHAT_ID is empty", ErrBotChatID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBotChatID, raw)
	}
	return id, nil
}

// StartTelegramBot answers operator commands from allowedChatID until ctx is cancelled. Messages
// from other chats are ignored.
func (h *Handlers) StartTelegramBot(ctx context.Context, token string, allowedChatID int64) error {
	if allowedChatID == 0 {
		return ErrBotChatID
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("failed to start telegram bot: %w", err)
	}

	logger.GetLogger().WithField("account", bot.Self.UserName).Info("Telegram bot authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if update.Message.Chat.ID != allowedChatID {
				continue
			}

			reply := h.HandleBotCommand(ctx, update.Message.Command(), update.Message.CommandArguments())
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			msg.ParseMode = "HTML"
			if _, err := bot.Send(msg); err != nil {
				logger.GetLogger().WithError(err).Warn("Failed to send bot reply")
			}
		}
	}
}

// HandleBotCommand executes one bot command and returns the HTML reply.
func (h *Handlers) HandleBotCommand(ctx context.Context, command, args string) string {
	fields := strings.Fields(args)

	switch command {
	case "start", "help":
		return escapeHTML(botHelp)

	case "jobs":
		posts, err := db.ListRecentScheduledPosts(ctx, debugScheduleLimit)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Error listing scheduled posts")
			return "Internal server error"
		}
		if len(posts) == 0 {
			return "No scheduled posts."
		}
		var b strings.Builder
		for _, p := range posts {
			fmt.Fprintf(&b, "<b>#%d</b> %s %s at %s: %s\n",
				p.ID, escapeHTML(p.Platform), escapeHTML(p.VideoID),
				h.dispatcher.Normalizer().FromUTC(p.ScheduleTimeUTC), p.Status)
		}
		return b.String()

	case "schedule":
		if len(fields) < 3 {
			return "Usage: /schedule &lt;video_id&gt; &lt;platform&gt; &lt;YYYY-MM-DDTHH:MM&gt;"
		}
		local := strings.Join(fields[2:], " ")
		id, err := h.dispatcher.ScheduleJob(ctx, fields[0], strings.ToLower(fields[1]), local)
		if err != nil {
			return "Could not schedule: " + escapeHTML(err.Error())
		}
		return fmt.Sprintf("Scheduled post <b>#%d</b> for %s", id, escapeHTML(local))

	case "postnow":
		if len(fields) != 2 {
			return "Usage: /postnow &lt;video_id&gt; &lt;platform&gt;"
		}
		res, err := h.dispatcher.PostNow(ctx, fields[0], strings.ToLower(fields[1]))
		if err != nil {
			return botError(err)
		}
		return botResult(res)

	case "runnow":
		if len(fields) != 1 {
			return "Usage: /runnow &lt;job_id&gt;"
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return "Invalid job id"
		}
		res, err := h.dispatcher.RunNow(ctx, id)
		if err != nil {
			return botError(err)
		}
		return botResult(res)
	}

	return "I don't know that command"
}

func botError(err error) string {
	if errors.Is(err, db.ErrNotFound) {
		return "Not found: " + escapeHTML(err.Error())
	}
	return "Error: " + escapeHTML(err.Error())
}

func botResult(res publisher.Result) string {
	if !res.Success {
		return "Failed: " + escapeHTML(res.Error)
	}
	out := escapeHTML(res.Message)
	if res.TwitterURL != "" {
		out += "\n" + escapeHTML(res.TwitterURL)
	}
	return out
}

func escapeHTML(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
