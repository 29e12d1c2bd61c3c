package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(offsetHours int) *Normalizer {
	return NewNormalizer(time.FixedZone("test", offsetHours*3600), true)
}

func TestToUTC(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		input  string
		want   time.Time
	}{
		{"canonical ahead of utc", 2, "2024-01-15T14:30", time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)},
		{"canonical behind utc", -5, "2024-01-15T22:00", time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC)},
		{"space separated fallback", 0, "2024-01-15 09:05", time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC)},
		{"surrounding whitespace", 1, " 2024-03-01T00:00 ", time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fixed(tt.offset).ToUTC(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestToUTCInvalid(t *testing.T) {
	for _, in := range []string{"2024/01/15 2pm", "", "2024-01-15", "2024-13-01T10:00", "15-01-2024T10:00"} {
		_, err := fixed(0).ToUTC(in)
		assert.True(t, errors.Is(err, ErrInvalidScheduleFormat), "input %q", in)
	}
}

func TestRoundTripWithFixedOffset(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{-11, -5, 0, 3, 9, 14} {
		n := fixed(offset)
		for i := 0; i < 500; i++ {
			local := start.Add(time.Duration(i) * 17 * time.Hour).Add(time.Duration(i%60) * time.Minute).Format(LayoutCanonical)
			utc, err := n.ToUTC(local)
			require.NoError(t, err)
			assert.Equal(t, local, n.FromUTC(utc))
		}
	}
}

func TestCurrentOffsetAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	winter := func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, ny) }

	legacy := &Normalizer{Location: ny, UseCurrentOffset: true, Now: winter}
	got, err := legacy.ToUTC("2024-07-04T12:00")
	require.NoError(t, err)
	// EST (-5) applied to a July time.
	assert.Equal(t, time.Date(2024, 7, 4, 17, 0, 0, 0, time.UTC), got)

	exact := &Normalizer{Location: ny, UseCurrentOffset: false, Now: winter}
	got, err = exact.ToUTC("2024-07-04T12:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 4, 16, 0, 0, 0, time.UTC), got)
}
