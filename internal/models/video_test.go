package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoIDFromURL(t *testing.T) {
	id := VideoIDFromURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, "75170fc230cd88f32e475ff4087f81d9", id)
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, VideoIDFromURL("https://www.youtube.com/watch?v=other"))
}

func TestSummariesRoundTripThroughColumn(t *testing.T) {
	in := Summaries{"telegram": "Telegram & more", "discord": "Discord"}
	v, err := in.Value()
	require.NoError(t, err)

	var out Summaries
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	var fromString Summaries
	require.NoError(t, fromString.Scan(`{"x":"y"}`))
	assert.Equal(t, "y", fromString["x"])

	assert.Error(t, out.Scan(42))
}
