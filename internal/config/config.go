// Package config loads process settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"yt-summary-publisher/internal/logger"
)

type Config struct {
	DatabaseURL string
	Port        string
	BaseURL     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	PollInterval        time.Duration
	DueBatchSize        int
	HTTPTimeout         time.Duration
	StuckPostingTimeout time.Duration

	TelegramBotToken    string
	TelegramChatID      string
	TelegramMaxCaption  int
	TelegramBotCommands bool

	DiscordBotToken          string
	DiscordChannelID         string
	DiscordCopyPasteFallback bool

	ScheduleTimezone         string
	ScheduleUseCurrentOffset bool

	VideoCacheTTL  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("DUE_BATCH_SIZE", 20)
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("STUCK_POSTING_TIMEOUT", "15m")
	v.SetDefault("TELEGRAM_MAX_CAPTION", 900)
	v.SetDefault("TELEGRAM_BOT_COMMANDS", false)
	v.SetDefault("DISCORD_COPY_PASTE_FALLBACK", true)
	v.SetDefault("SCHEDULE_TIMEZONE", "Local")
	v.SetDefault("SCHEDULE_USE_CURRENT_OFFSET", true)
	v.SetDefault("VIDEO_CACHE_TTL", "10m")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	// Keys without a default are only visible to AutomaticEnv once bound.
	for _, key := range []string{
		"DATABASE_URL", "BASE_URL", "REDIS_ADDR", "REDIS_PASSWORD",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.GetLogger().Debug("No .env file loaded")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:              v.GetString("DATABASE_URL"),
		Port:                     v.GetString("PORT"),
		BaseURL:                  v.GetString("BASE_URL"),
		RedisAddr:                v.GetString("REDIS_ADDR"),
		RedisPassword:            v.GetString("REDIS_PASSWORD"),
		RedisDB:                  v.GetInt("REDIS_DB"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogFormat:                v.GetString("LOG_FORMAT"),
		PollInterval:             v.GetDuration("POLL_INTERVAL"),
		DueBatchSize:             v.GetInt("DUE_BATCH_SIZE"),
		HTTPTimeout:              v.GetDuration("HTTP_TIMEOUT"),
		StuckPostingTimeout:      v.GetDuration("STUCK_POSTING_TIMEOUT"),
		TelegramBotToken:         v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:           v.GetString("TELEGRAM_CHAT_ID"),
		TelegramMaxCaption:       v.GetInt("TELEGRAM_MAX_CAPTION"),
		TelegramBotCommands:      v.GetBool("TELEGRAM_BOT_COMMANDS"),
		DiscordBotToken:          v.GetString("DISCORD_BOT_TOKEN"),
		DiscordChannelID:         v.GetString("DISCORD_CHANNEL_ID"),
		DiscordCopyPasteFallback: v.GetBool("DISCORD_COPY_PASTE_FALLBACK"),
		ScheduleTimezone:         v.GetString("SCHEDULE_TIMEZONE"),
		ScheduleUseCurrentOffset: v.GetBool("SCHEDULE_USE_CURRENT_OFFSET"),
		VideoCacheTTL:            v.GetDuration("VIDEO_CACHE_TTL"),
		RateLimitRPS:             v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:           v.GetInt("RATE_LIMIT_BURST"),
	}
	if cfg.TelegramMaxCaption > 1024 {
		cfg.TelegramMaxCaption = 1024
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	if c.DueBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("DUE_BATCH_SIZE must be positive, got %d", c.DueBatchSize))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	if c.StuckPostingTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STUCK_POSTING_TIMEOUT must be positive, got %s", c.StuckPostingTimeout))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves SCHEDULE_TIMEZONE; "Local" and "" mean the process time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.ScheduleTimezone == "" || c.ScheduleTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return nil, fmt.Errorf("SCHEDULE_TIMEZONE: %w", err)
	}
	return loc, nil
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }
