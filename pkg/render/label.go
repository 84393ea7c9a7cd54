package render

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks a truncated label
const Ellipsis = "…"

// Truncate limits s to max runes, replacing the tail with an ellipsis.
// Surrounding whitespace is trimmed first.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}
	// Decode at most max+1 runes; cut ends after rune max-1
	cut := 0
	for i, n := 0, 0; i < len(s); n++ {
		if n == max {
			if max == 1 {
				return Ellipsis
			}
			return strings.TrimRight(s[:cut], " ") + Ellipsis
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if n == max-2 {
			cut = i
		}
	}
	return s
}
