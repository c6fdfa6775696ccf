package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ripple/backend/internal/model"
	"ripple/backend/internal/snowflake"
)

// insertChunkSize bounds the size of a single INSERT statement during a
// batch upsert.
const insertChunkSize = 100

type EntryRepository interface {
	ListByFeed(ctx context.Context, feedID int64) ([]model.Entry, error)
	ExistingGUIDs(ctx context.Context, feedID int64, guids []string) (map[string]bool, error)
	// InsertBatch inserts the given entries in chunks and bumps the owning
	// feed's last_fetched/updated_at, all inside one transaction. Entries
	// must already be filtered against existing guids.
	InsertBatch(ctx context.Context, feedID int64, entries []model.Entry, fetchedAt int64) error
}

// entryRepository holds *sql.DB rather than dbtx because InsertBatch opens
// its own transaction.
type entryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) ListByFeed(ctx context.Context, feedID int64) ([]model.Entry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, feed_id, guid, title, link, description, pub_date, image, created_at
		 FROM rss_entries WHERE feed_id = ? ORDER BY pub_date DESC, id DESC`,
		feedID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func (r *entryRepository) ExistingGUIDs(ctx context.Context, feedID int64, guids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(guids))
	for start := 0; start < len(guids); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(guids) {
			end = len(guids)
		}
		chunk := guids[start:end]

		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, feedID)
		for _, guid := range chunk {
			args = append(args, guid)
		}
		rows, err := r.db.QueryContext(
			ctx,
			`SELECT guid FROM rss_entries WHERE feed_id = ? AND guid IN (`+placeholders(len(chunk))+`)`,
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("query existing guids: %w", err)
		}
		for rows.Next() {
			var guid string
			if err := rows.Scan(&guid); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan guid: %w", err)
			}
			existing[guid] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate guids: %w", err)
		}
		rows.Close()
	}
	return existing, nil
}

func (r *entryRepository) InsertBatch(ctx context.Context, feedID int64, entries []model.Entry, fetchedAt int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for start := 0; start < len(entries); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := insertChunk(ctx, tx, feedID, entries[start:end], now); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE rss_feeds SET last_fetched = ?, updated_at = ? WHERE id = ?`,
		fetchedAt,
		formatTime(now),
		feedID,
	); err != nil {
		return fmt.Errorf("bump feed timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

func insertChunk(ctx context.Context, tx *sql.Tx, feedID int64, chunk []model.Entry, now time.Time) error {
	query := `INSERT INTO rss_entries (id, feed_id, guid, title, link, description, pub_date, image, created_at) VALUES `
	args := make([]interface{}, 0, len(chunk)*9)
	for i, entry := range chunk {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			snowflake.NextID(),
			feedID,
			entry.GUID,
			entry.Title,
			nullableString(entry.Link),
			nullableString(entry.Description),
			entry.PubDate,
			nullableString(entry.Image),
			formatTime(now),
		)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entry chunk: %w", err)
	}
	return nil
}

func scanEntry(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Entry, error) {
	var entry model.Entry
	var link sql.NullString
	var description sql.NullString
	var image sql.NullString
	var createdAt string
	if err := scanner.Scan(
		&entry.ID,
		&entry.FeedID,
		&entry.GUID,
		&entry.Title,
		&link,
		&description,
		&entry.PubDate,
		&image,
		&createdAt,
	); err != nil {
		return model.Entry{}, err
	}
	if link.Valid {
		entry.Link = &link.String
	}
	if description.Valid {
		entry.Description = &description.String
	}
	if image.Valid {
		entry.Image = &image.String
	}
	var err error
	entry.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parse entry created_at: %w", err)
	}
	return entry, nil
}
