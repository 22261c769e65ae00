// Package dates formats release timestamps for display.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// timestampLayouts are tried in order; all carry an offset or a UTC marker.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FormatReleaseDate converts an absolute timestamp such as "2025-01-15T10:30:00Z" into
// "Jan 15, 2025". Calendar fields are taken in UTC. Empty or unparseable input yields "".
func FormatReleaseDate(timestamp string) string {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return ""
	}
	t = t.UTC()
	return fmt.Sprintf("%s %d, %d", monthNames[t.Month()-1], t.Day(), t.Year())
}

func parseTimestamp(timestamp string) (time.Time, bool) {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToISODate converts a displayed release date to YYYY-MM-DD.
// ISO dates pass through; "Jan 15, 2025" and full timestamps are converted; anything
// else is returned unchanged.
func ToISODate(date string) string {
	if isoDatePattern.MatchString(date) {
		return date
	}
	if t, err := time.Parse("Jan 2, 2006", date); err == nil {
		return t.Format("2006-01-02")
	}
	if t, ok := parseTimestamp(date); ok {
		return t.UTC().Format("2006-01-02")
	}
	return date
}

// IsISODate reports whether date is exactly YYYY-MM-DD.
func IsISODate(date string) bool {
	return isoDatePattern.MatchString(date)
}
