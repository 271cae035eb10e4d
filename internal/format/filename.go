package format

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// StripDiacritics decomposes s and drops the combining marks: "Núñez" → "Nunez"
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FilenamePart reduces s to ASCII letters and digits joined by single
// underscores, so it never carries a path separator or a dot. fallback is
// returned when nothing usable remains.
func FilenamePart(s, fallback string) string {
	part := strings.Trim(unsafeRun.ReplaceAllString(StripDiacritics(s), "_"), "_")
	if part == "" {
		return fallback
	}
	return part
}
