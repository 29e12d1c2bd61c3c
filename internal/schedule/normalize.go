// Package schedule converts operator-entered wall-clock times into the canonical UTC instant
// stored on scheduled posts.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutCanonical is the HTML datetime-local form.
	LayoutCanonical = "2006-01-02T15:04"
	// LayoutSpaced is accepted as a fallback.
	LayoutSpaced = "2006-01-02 15:04"
)

// ErrInvalidScheduleFormat is returned when neither accepted layout parses.
var ErrInvalidScheduleFormat = errors.New("invalid schedule format")

// Normalizer turns a timezone-naive local datetime string into UTC.
//
// With UseCurrentOffset set, the offset in effect right now in Location is applied to every
// input, so a time on the other side of a daylight-saving transition comes out one hour off.
// That matches how previously stored schedules were computed. With it unset, the offset valid
// at the scheduled instant is used instead.
type Normalizer struct {
	Location         *time.Location
	UseCurrentOffset bool
	Now              func() time.Time
}

// NewNormalizer returns a Normalizer for loc (time.Local when nil).
func NewNormalizer(loc *time.Location, useCurrentOffset bool) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{Location: loc, UseCurrentOffset: useCurrentOffset, Now: time.Now}
}

// ToUTC parses s and returns the instant it denotes, in UTC.
func (n *Normalizer) ToUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := n.zone()

	t, err := time.ParseInLocation(LayoutCanonical, s, loc)
	if err != nil {
		var fallbackErr error
		t, fallbackErr = time.ParseInLocation(LayoutSpaced, s, loc)
		if fallbackErr != nil {
			return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DDTHH:MM", ErrInvalidScheduleFormat, s)
		}
	}
	return t.UTC(), nil
}

// FromUTC renders a stored instant back in the local wall-clock form using the same offset rule.
func (n *Normalizer) FromUTC(t time.Time) string {
	return t.In(n.zone()).Format(LayoutCanonical)
}

func (n *Normalizer) zone() *time.Location {
	loc := n.Location
	if loc == nil {
		loc = time.Local
	}
	if !n.UseCurrentOffset {
		return loc
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	name, offset := now().In(loc).Zone()
	return time.FixedZone(name, offset)
}
