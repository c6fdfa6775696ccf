package model

import "time"

// Entry is one item/article/episode belonging to a Feed. (FeedID, GUID) is
// unique; entries are append-only and never overwritten by a refresh.
type Entry struct {
	ID          int64
	FeedID      int64
	GUID        string
	Title       string
	Link        *string
	Description *string
	PubDate     string
	Image       *string
	CreatedAt   time.Time
}
