package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-summary-publisher/internal/config"
	"yt-summary-publisher/internal/publisher"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(&config.Config{DiscordBotToken: "tok", DiscordChannelID: "1", HTTPTimeout: time.Second})
	assert.Equal(t, []string{"discord", "telegram", "twitter"}, r.Platforms())

	dc, ok := r.Get("discord")
	require.True(t, ok)
	assert.True(t, dc.(publisher.Configurable).Configured())

	tg, ok := r.Get("telegram")
	require.True(t, ok)
	assert.False(t, tg.(publisher.Configurable).Configured())
}

func TestNewDispatcherRejectsBadTimezone(t *testing.T) {
	_, err := NewDispatcher(&config.Config{ScheduleTimezone: "Nowhere/Land"})
	assert.Error(t, err)

	d, err := NewDispatcher(&config.Config{ScheduleTimezone: "UTC", ScheduleUseCurrentOffset: true})
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), d.Normalizer().Location.String())
}
