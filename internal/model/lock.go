package model

import "time"

// RefreshLock is a store-backed mutual-exclusion token keyed by a digest of
// the feed URL. A row whose expiry has passed is treated as vacant.
type RefreshLock struct {
	Key       string
	ExpiresAt int64
	CreatedAt time.Time
}

// Expired reports whether the lock may be reclaimed.
func (l RefreshLock) Expired(now time.Time) bool {
	return l.ExpiresAt < now.UnixMilli()
}
