// Package tags provides tag parsing and alias normalization for posts.
package tags

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Marker is the character a string must start with to count as a tag.
const Marker = '#'

// ParseExtra splits a raw comma-separated tag string into the tags it
// contains. Entries are trimmed; anything that does not start with the
// tag marker is dropped rather than rejected, so sloppy client input
// degrades gracefully.
//
// "foo, #Bar, , #Baz" -> ["#Bar", "#Baz"].
func ParseExtra(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < 2 || p[0] != Marker {
			continue
		}
		tags = append(tags, p)
	}

	if len(tags) == 0 {
		return nil
	}
	return tags
}

// NormalizeAlias cleans a display alias: unicode is decomposed so
// accented lookalikes compare equal, control characters are stripped,
// and interior whitespace is collapsed. Empty input falls back to the
// given default.
func NormalizeAlias(alias, fallback string) string {
	alias = norm.NFKD.String(alias)

	alias = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, alias)

	alias = strings.Join(strings.Fields(alias), " ")
	if alias == "" {
		return fallback
	}
	return alias
}
