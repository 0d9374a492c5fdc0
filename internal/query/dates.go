// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package query

import (
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

var (
	// MinInstant is the lower bound used when no from-date is given.
	MinInstant = time.Unix(0, 0).UTC()
	// MaxInstant is the upper bound used when no to-date is given.
	MaxInstant = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// ParseDate parses a calendar date in loc. Both YYYY-MM-DD and RFC 3339 are
// accepted; the result is midnight of that day in loc. ok is false for blank
// or unparseable text.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(models.DateLayout, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return StartOfDay(t, loc), true
	}
	return time.Time{}, false
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DateRange resolves free-text bounds into an inclusive instant range.
// Absent or unparseable bounds widen the range to MinInstant/MaxInstant and
// the upper bound is moved to the end of its day.
func DateRange(from, to string, loc *time.Location) (time.Time, time.Time) {
	lower := MinInstant
	if t, ok := ParseDate(from, loc); ok {
		lower = t
	}
	upper := MaxInstant
	if t, ok := ParseDate(to, loc); ok {
		upper = EndOfDay(t, loc)
	}
	return lower, upper
}
