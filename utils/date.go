package utils

import (
	"fmt"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

// ParseClock parses an "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// ClockMinutes parses an "HH:MM" string, returning -1 when it does not parse.
// Detector rules treat an unparseable time as "field absent".
func ClockMinutes(s string) int {
	m, err := ParseClock(s)
	if err != nil {
		return -1
	}
	return m
}

// DurationMinutes returns the minutes from start to end, wrapping at midnight
// when the end time falls on the next day.
func DurationMinutes(start, end int) int {
	d := end - start
	if d < 0 {
		d += MinutesPerDay
	}
	return d
}

// ISODate formats a time as yyyy-MM-dd, the date format the sheet service uses.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// MustParseDate parses a yyyy-MM-dd string, returning the zero time on failure.
func MustParseDate(dateStr string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	return t
}

// FormatDisplayDate converts yyyy-MM-dd to dd.MM.yyyy for report output.
// Anything that does not look like an ISO date is returned unchanged.
func FormatDisplayDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}
