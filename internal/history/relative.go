package history

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var (
	relativeCount   = regexp.MustCompile(`(\d+)\s*(minute|hour|day|week|month|year)s?\s*ago`)
	relativeArticle = regexp.MustCompile(`(a|an)\s*(minute|hour|day|week|month|year)\s*ago`)

	absoluteLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
	}
)

var unitDurations = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    day,
	"week":   7 * day,
	"month":  30 * day,
	"year":   365 * day,
}

// ParseRelative converts phrases like "3 days ago", "an hour ago" or
// "yesterday" to an offset into the past.
func ParseRelative(value string) (time.Duration, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "":
		return 0, false
	case "today", "just now":
		return 0, true
	case "yesterday":
		return day, true
	}
	if m := relativeCount.FindStringSubmatch(normalized); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return time.Duration(amount) * unitDurations[m[2]], true
	}
	if m := relativeArticle.FindStringSubmatch(normalized); m != nil {
		return unitDurations[m[2]], true
	}
	return 0, false
}

// ParseAbsolute parses a calendar date in one of the common layouts.
func ParseAbsolute(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ApproxDate estimates when a rating was given: an absolute timeRated wins,
// a relative one is subtracted from the commit time, anything else falls back
// to the commit time.
func ApproxDate(commitTime time.Time, timeRated string) time.Time {
	if t, ok := ParseAbsolute(timeRated); ok {
		return t
	}
	if offset, ok := ParseRelative(timeRated); ok {
		return commitTime.Add(-offset).UTC()
	}
	return commitTime.UTC()
}
