// Package slug turns arbitrary URL text into a board slug.
package slug

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var escapeRun = regexp.MustCompile(`(%[0-9A-Fa-f]{2})+`)

// Normalize percent-decodes raw, lowercases it, and reduces it to
// [a-z0-9] runs joined by single dashes. It returns "" when nothing is left.
func Normalize(raw string) string {
	decoded := decode(raw)
	lower := strings.ToLower(decoded)

	var b strings.Builder
	b.Grow(len(lower))
	dash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Valid reports whether s is already normalized.
func Valid(s string) bool {
	return s != "" && Normalize(s) == s
}

// decode unescapes the whole string, or failing that each escape run that
// forms valid UTF-8 on its own.
func decode(raw string) string {
	if s, ok := unescape(raw); ok {
		return s
	}
	return escapeRun.ReplaceAllStringFunc(raw, func(run string) string {
		if s, ok := unescape(run); ok {
			return s
		}
		return run
	})
}

func unescape(s string) (string, bool) {
	out, err := url.PathUnescape(s)
	if err != nil || !utf8.ValidString(out) {
		return "", false
	}
	return out, true
}
