package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT).
const baseSchema = `
CREATE TABLE IF NOT EXISTS rss_feeds (
  id INTEGER PRIMARY KEY,
  feed_url TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  last_fetched INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rss_entries (
  id INTEGER PRIMARY KEY,
  feed_id INTEGER NOT NULL,
  guid TEXT NOT NULL,
  title TEXT NOT NULL,
  link TEXT,
  description TEXT,
  pub_date TEXT NOT NULL,
  image TEXT,
  created_at TEXT NOT NULL,
  UNIQUE (feed_id, guid),
  FOREIGN KEY (feed_id) REFERENCES rss_feeds(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rss_entries_feed_pub ON rss_entries(feed_id, pub_date DESC);

CREATE TABLE IF NOT EXISTS rss_locks (
  lock_key TEXT PRIMARY KEY,
  expires_at INTEGER NOT NULL,
  created_at TEXT NOT NULL
);
`

// Migrate applies the schema. Every statement is idempotent, so running it
// on an already-migrated database is a no-op.
func Migrate(conn *sql.DB) error {
	if _, err := conn.Exec(baseSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
