// Package app wires configuration into the components shared by the server and worker binaries.
package app

import (
	"yt-summary-publisher/internal/config"
	"yt-summary-publisher/internal/db"
	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/publisher"
	"yt-summary-publisher/internal/schedule"
	"yt-summary-publisher/internal/worker"
)

// NewRegistry registers every platform adapter. Unconfigured adapters are still registered and
// report "not configured" when used.
func NewRegistry(cfg *config.Config) *publisher.Registry {
	tg := publisher.NewTelegram(publisher.TelegramConfig{
		Token:            cfg.TelegramBotToken,
		ChatID:           cfg.TelegramChatID,
		MaxCaptionLength: cfg.TelegramMaxCaption,
		Timeout:          cfg.HTTPTimeout,
	})
	dc := publisher.NewDiscord(publisher.DiscordConfig{
		Token:     cfg.DiscordBotToken,
		ChannelID: cfg.DiscordChannelID,
		Timeout:   cfg.HTTPTimeout,
	})

	lg := logger.GetLogger()
	lg.WithField("configured", tg.Configured()).Info("Telegram adapter ready")
	lg.WithField("configured", dc.Configured()).Info("Discord adapter ready")

	return publisher.NewRegistry(tg, dc, publisher.NewTwitter())
}

// NewDispatcher builds a dispatcher over the durable stores. It never reads through a cache.
func NewDispatcher(cfg *config.Config) (*worker.Dispatcher, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return worker.NewDispatcher(
		db.Jobs{},
		db.Videos{},
		NewRegistry(cfg),
		schedule.NewNormalizer(loc, cfg.ScheduleUseCurrentOffset),
		worker.WithCopyPasteFallback(cfg.DiscordCopyPasteFallback),
	), nil
}
