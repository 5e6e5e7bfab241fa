package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// TruncateToFrequency rounds a timestamp down to the bar boundary for the
// frequency. Unknown frequencies fall back to one minute.
func TruncateToFrequency(t time.Time, freq string) time.Time {
	switch freq {
	case "1min":
		return t.Truncate(time.Minute)
	case "5min":
		return t.Truncate(5 * time.Minute)
	case "15min":
		return t.Truncate(15 * time.Minute)
	case "1hour":
		return t.Truncate(time.Hour)
	case "1day":
		return t.UTC().Truncate(24 * time.Hour)
	default:
		return t.Truncate(time.Minute)
	}
}
