package rss

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	isoNoZoneRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
	dateOnlyRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizeDate converts any date-like string into an RFC 3339 UTC instant.
// It never fails: an empty or unparseable value yields the current instant,
// so every stored entry carries a sortable publication date.
func NormalizeDate(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}

	switch {
	case isoNoZoneRe.MatchString(value):
		// Bare ISO timestamps are treated as UTC.
		value += "Z"
	case dateOnlyRe.MatchString(value):
		value += "T00:00:00Z"
	}

	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return parsed.UTC().Format(time.RFC3339)
}
