package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"ripple/backend/internal/logger"
	"ripple/backend/internal/model"
)

// LockRepository is the cross-process refresh lock. At most one logical
// holder exists per key; a row whose expiry has passed is vacant and may be
// reclaimed atomically.
type LockRepository interface {
	// Acquire attempts to take the lock for feedURL with the given TTL.
	// Any store error is treated as not-acquired: on an ambiguous failure
	// no process may assume ownership.
	Acquire(ctx context.Context, feedURL string, ttl time.Duration) bool
	// Release drops the lock. Best effort: it runs in cleanup paths and
	// never fails the caller. An unreleased lock expires on its own.
	Release(ctx context.Context, feedURL string)
	// Get returns the current lock row for feedURL, or nil when no row
	// exists. Expired rows are returned as-is; vacancy is the caller's
	// call via RefreshLock.Expired.
	Get(ctx context.Context, feedURL string) (*model.RefreshLock, error)
}

type lockRepository struct {
	db dbtx
}

func NewLockRepository(db dbtx) LockRepository {
	return &lockRepository{db: db}
}

// LockKey derives the deterministic lock row key for a feed URL.
func LockKey(feedURL string) string {
	sum := sha256.Sum256([]byte(feedURL))
	return "refresh:" + hex.EncodeToString(sum[:16])
}

func (r *lockRepository) Acquire(ctx context.Context, feedURL string, ttl time.Duration) bool {
	now := time.Now()
	key := LockKey(feedURL)

	// Single atomic statement: insert, or steal the row only when the
	// current holder's expiry has passed. Zero affected rows means a live
	// holder exists.
	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO rss_locks (lock_key, expires_at, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (lock_key) DO UPDATE SET expires_at = excluded.expires_at, created_at = excluded.created_at
		 WHERE rss_locks.expires_at < ?`,
		key,
		now.Add(ttl).UnixMilli(),
		formatTime(now),
		now.UnixMilli(),
	)
	if err != nil {
		logger.Warn("lock acquire failed", "module", "repository", "action", "acquire", "resource", "lock", "result", "failed", "lock_key", key, "error", err)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		logger.Warn("lock acquire rows", "module", "repository", "action", "acquire", "resource", "lock", "result", "failed", "lock_key", key, "error", err)
		return false
	}
	return affected > 0
}

func (r *lockRepository) Get(ctx context.Context, feedURL string) (*model.RefreshLock, error) {
	row := r.db.QueryRowContext(ctx, `SELECT lock_key, expires_at, created_at FROM rss_locks WHERE lock_key = ?`, LockKey(feedURL))

	var lock model.RefreshLock
	var createdAt string
	if err := row.Scan(&lock.Key, &lock.ExpiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lock: %w", err)
	}
	var err error
	lock.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse lock created_at: %w", err)
	}
	return &lock, nil
}

func (r *lockRepository) Release(ctx context.Context, feedURL string) {
	key := LockKey(feedURL)
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rss_locks WHERE lock_key = ?`, key); err != nil {
		logger.Warn("lock release failed", "module", "repository", "action", "release", "resource", "lock", "result", "failed", "lock_key", key, "error", err)
	}
}
