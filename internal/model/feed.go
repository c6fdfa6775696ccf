package model

import "time"

// Feed is an external RSS/Atom source identified by its URL.
// LastFetched is epoch milliseconds so staleness math does not depend on
// the store's timestamp formatting.
type Feed struct {
	ID          int64
	URL         string
	Title       string
	LastFetched int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fresh reports whether the feed was refreshed within the given window.
func (f Feed) Fresh(now time.Time, window time.Duration) bool {
	return now.UnixMilli()-f.LastFetched < window.Milliseconds()
}
