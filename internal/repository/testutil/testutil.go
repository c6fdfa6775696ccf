package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ripple/backend/internal/db"
	"ripple/backend/internal/model"
	"ripple/backend/internal/snowflake"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// NewTestDB opens a migrated sqlite database in a per-test temp dir. The
// handle is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	require.NoError(t, snowflake.Init(1))

	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SeedFeed inserts a feed row directly and returns its id. Zero-value
// fields get usable defaults.
func SeedFeed(t *testing.T, conn *sql.DB, feed model.Feed) int64 {
	t.Helper()
	if feed.ID == 0 {
		feed.ID = snowflake.NextID()
	}
	if feed.Title == "" {
		feed.Title = feed.URL
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err := conn.Exec(
		`INSERT INTO rss_feeds (id, feed_url, title, last_fetched, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		feed.ID, feed.URL, feed.Title, feed.LastFetched, now, now,
	)
	require.NoError(t, err)
	return feed.ID
}

// SeedEntry inserts an entry row directly and returns its id.
func SeedEntry(t *testing.T, conn *sql.DB, entry model.Entry) int64 {
	t.Helper()
	if entry.ID == 0 {
		entry.ID = snowflake.NextID()
	}
	if entry.PubDate == "" {
		entry.PubDate = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := conn.Exec(
		`INSERT INTO rss_entries (id, feed_id, guid, title, link, description, pub_date, image, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.FeedID, entry.GUID, entry.Title,
		nullable(entry.Link), nullable(entry.Description), entry.PubDate, nullable(entry.Image),
		time.Now().UTC().Format(timeLayout),
	)
	require.NoError(t, err)
	return entry.ID
}

// SeedLock inserts a lock row with the given key and expiry.
func SeedLock(t *testing.T, conn *sql.DB, key string, expiresAt int64) {
	t.Helper()
	_, err := conn.Exec(
		`INSERT INTO rss_locks (lock_key, expires_at, created_at) VALUES (?, ?, ?)`,
		key, expiresAt, time.Now().UTC().Format(timeLayout),
	)
	require.NoError(t, err)
}

func nullable(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
