package feed

import (
	"strings"
	"time"
)

// instantLayouts are the accepted timestamp forms, tried in priority order.
// Devices in the field send a mix of these; first match wins.
var instantLayouts = []string{
	"2006-01-02T15:04:05.000000",
	"2006-01-02 15:04:05.000000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02", // date only, midnight implied
}

// ParseInstant converts a textual timestamp into a UTC instant.
//
// A trailing "Z" is stripped before matching and the result is always
// anchored to UTC; zone-less inputs are UTC by convention. When none of the
// known layouts match, RFC3339 is tried as a last resort (an explicit offset
// is honored and the result converted to UTC). Returns false for empty input
// or when nothing matches; parsing never fails any other way.
func ParseInstant(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.TrimSuffix(s, "Z")

	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}

	return time.Time{}, false
}
