package db_test

import (
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"

	"ripple/backend/internal/db"
)

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "test.db")

	conn, err := db.Open(dbPath)
	require.NoError(t, err)
	require.NotNil(t, conn)
	defer conn.Close()

	for _, table := range []string{"rss_feeds", "rss_entries", "rss_locks"} {
		var name string
		err = conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err)
		require.Equal(t, table, name)
	}
}

// Pragmas must live in the DSN: applied via Exec they only reach the one
// connection that ran them, and concurrent refreshes on the other pool
// connections would hit "database is locked".
func TestBuildDSN_AllPragmasEmbedded(t *testing.T) {
	dsn := db.BuildDSN("mydb.sqlite")
	require.Contains(t, dsn, "file:mydb.sqlite")

	decoded, err := url.QueryUnescape(dsn)
	require.NoError(t, err)

	for _, pragma := range []string{
		"journal_mode(WAL)",
		"foreign_keys(ON)",
		"busy_timeout(30000)",
		"synchronous(NORMAL)",
	} {
		require.Contains(t, decoded, pragma)
	}
}

func TestMigrate_ClosedDB(t *testing.T) {
	conn, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Error(t, db.Migrate(conn))
}
