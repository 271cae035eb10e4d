// Package format renders values the way the printed form expects them:
// grouped amounts, day/month/year dates, RUT body and check character, and the
// long labels of the heir relationship codes.
package format

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/a3tai/posesion-efectiva/internal/model"
)

// The form groups thousands with a period and prints no decimals, which is the
// German convention.
var amountPrinter = message.NewPrinter(language.German)

// Amount renders n with period group separators, e.g. 1234567 -> "1.234.567".
func Amount(n int64) string {
	return amountPrinter.Sprintf("%d", n)
}

// Money renders a raw form value as a grouped amount. Empty input yields "",
// and input with no leading integer is returned unchanged.
func Money(v string) string {
	if v == "" {
		return ""
	}
	n, ok := model.ParseLeadingInt(v)
	if !ok {
		return v
	}
	return Amount(n)
}

// Date reorders an ISO-like "yyyy-mm-dd" into "dd/mm/yyyy". Anything that
// does not split into exactly three hyphen-separated parts is returned as is.
func Date(iso string) string {
	if iso == "" {
		return ""
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// DateParts splits "yyyy-mm-dd" into day, month and year. Missing parts are
// returned empty.
func DateParts(iso string) (day, month, year string) {
	if iso == "" {
		return "", "", ""
	}
	parts := strings.Split(iso, "-")
	at := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	return at(2), at(1), at(0)
}

// NationalID splits a RUT/RUN into its body and check character. Everything
// except digits and K is dropped first; fewer than two remaining characters
// yield two empty strings. The check character is not verified.
func NationalID(raw string) (body, check string) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == 'k' || r == 'K' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) < 2 {
		return "", ""
	}
	return clean[:len(clean)-1], strings.ToUpper(clean[len(clean)-1:])
}

// NationalIDDisplay renders a RUT as "body-check"
func NationalIDDisplay(raw string) string {
	body, check := NationalID(raw)
	return body + "-" + check
}
