package rss

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripHTML removes all markup from a description-like fragment, leaving
// plain text suitable for truncation and storage.
func StripHTML(fragment string) string {
	stripped := strictPolicy.Sanitize(fragment)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
