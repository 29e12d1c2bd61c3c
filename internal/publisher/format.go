package publisher

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

const ellipsis = "..."

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runeLen(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ellipsize shortens s to at most limit runes, ending in "..." when cut.
func ellipsize(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return truncateRunes(s, limit)
	}
	return truncateRunes(s, limit-len(ellipsis)) + ellipsis
}

// FormatDuration renders seconds as M:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatThousands renders n with comma separators, e.g. 1234567 -> 1,234,567.
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
