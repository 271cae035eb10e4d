package drafts

import (
	"regexp"
	"strings"
	"time"

	"github.com/a3tai/posesion-efectiva/internal/format"
)

// TimestampLayout is the sortable, filesystem-safe UTC timestamp of a draft
// name
const TimestampLayout = "2006-01-02T15-04-05"

// maxLabelLength bounds the label part of a draft name, in characters
const maxLabelLength = 50

var (
	labelDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespace      = regexp.MustCompile(`\s+`)
	nonAlnum        = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// sanitizeLabel turns a user label into a filename stem. It may return an
// empty string.
func sanitizeLabel(label string) string {
	s := format.StripDiacritics(strings.TrimSpace(label))
	s = labelDisallowed.ReplaceAllString(s, "")
	if len(s) > maxLabelLength {
		s = s[:maxLabelLength]
	}
	return whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
}

// sanitizeNamePart keeps ASCII letters and digits, replacing everything else
// with an underscore
func sanitizeNamePart(s string) string {
	return nonAlnum.ReplaceAllString(format.StripDiacritics(strings.TrimSpace(s)), "_")
}

// Filename builds the name a draft is stored under. A label that survives
// sanitizing wins; otherwise the name is synthesized from the decedent's
// first surname and first names.
func Filename(label, surname, names string, now time.Time) string {
	ts := now.UTC().Format(TimestampLayout)
	if stem := sanitizeLabel(label); stem != "" {
		return stem + "_" + ts + ".json"
	}

	surname = sanitizeNamePart(surname)
	names = sanitizeNamePart(names)
	base := "sin_nombre"
	if surname != "" || names != "" {
		base = surname + "_" + names
	}
	return "borrador_" + base + "_" + ts + ".json"
}
