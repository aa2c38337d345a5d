package util

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("enter a valid date/time")

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDateTime reads the date/time formats browsers and API clients send.
// Values without a zone are taken as UTC. Empty input returns nil.
func ParseDateTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, l := range dateTimeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, ErrInvalidDate
}

// ParseDate reads a YYYY-MM-DD value. Empty input returns nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, ErrInvalidDate
	}

	return &t, nil
}

// SafeNext returns next when it is a local path, fallback otherwise
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}

	return next
}
