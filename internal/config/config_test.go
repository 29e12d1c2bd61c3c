package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 20, cfg.DueBatchSize)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.StuckPostingTimeout)
	assert.Equal(t, 900, cfg.TelegramMaxCaption)
	assert.True(t, cfg.DiscordCopyPasteFallback)
	assert.True(t, cfg.ScheduleUseCurrentOffset)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("POLL_INTERVAL", "5s")
	t.Setenv("TELEGRAM_MAX_CAPTION", "4000")
	t.Setenv("SCHEDULE_USE_CURRENT_OFFSET", "false")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("DISCORD_BOT_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 1024, cfg.TelegramMaxCaption)
	assert.False(t, cfg.ScheduleUseCurrentOffset)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "tok", cfg.DiscordBotToken)
}

func TestValidate(t *testing.T) {
	cfg := &Config{PollInterval: time.Second, DueBatchSize: 1, HTTPTimeout: time.Second, StuckPostingTimeout: time.Minute}
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg.DatabaseURL = "postgres://x"
	cfg.DueBatchSize = 0
	assert.ErrorContains(t, cfg.Validate(), "DUE_BATCH_SIZE")

	cfg.DueBatchSize = 5
	cfg.ScheduleTimezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "SCHEDULE_TIMEZONE")

	cfg.ScheduleTimezone = "America/New_York"
	assert.NoError(t, cfg.Validate())
}
