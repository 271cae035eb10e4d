package model

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Text is a form value that the front-end may send as a JSON string, number,
// boolean or null. It always decodes to its string form; null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		// Structured values have no place in a form field.
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

// String returns the raw value
func (t Text) String() string {
	return string(t)
}

// Or returns the value, or fallback when the value is empty
func (t Text) Or(fallback string) string {
	if t == "" {
		return fallback
	}
	return string(t)
}

// Int parses the leading integer of the value the way a lenient form does:
// surrounding spaces are ignored, an optional sign is accepted and parsing
// stops at the first non-digit. ok is false when no digit was found.
func (t Text) Int() (n int64, ok bool) {
	return ParseLeadingInt(string(t))
}

// Amount returns the integer valuation, 0 when missing or not numeric
func (t Text) Amount() int64 {
	n, _ := t.Int()
	return n
}

// ParseLeadingInt parses the longest base-10 integer prefix of s.
func ParseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Flag is a yes/no switch sent either as the JSON literal true or as "1".
type Flag bool

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", `"1"`, "1":
		*f = true
	default:
		*f = false
	}
	return nil
}
