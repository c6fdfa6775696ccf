package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ripple/backend/internal/model"
	"ripple/backend/internal/snowflake"
)

type FeedRepository interface {
	Create(ctx context.Context, url, title string, lastFetched int64) (model.Feed, error)
	GetByID(ctx context.Context, id int64) (model.Feed, error)
	FindByURL(ctx context.Context, url string) (*model.Feed, error)
	List(ctx context.Context) ([]model.Feed, error)
	ListFetchedBefore(ctx context.Context, cutoff int64) ([]model.Feed, error)
}

type feedRepository struct {
	db dbtx
}

func NewFeedRepository(db dbtx) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) Create(ctx context.Context, url, title string, lastFetched int64) (model.Feed, error) {
	id := snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO rss_feeds (id, feed_url, title, last_fetched, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		url,
		title,
		lastFetched,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Feed{}, fmt.Errorf("create feed: %w", err)
	}
	return model.Feed{
		ID:          id,
		URL:         url,
		Title:       title,
		LastFetched: lastFetched,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *feedRepository) GetByID(ctx context.Context, id int64) (model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, feed_url, title, last_fetched, created_at, updated_at FROM rss_feeds WHERE id = ?`, id)
	return scanFeed(row)
}

func (r *feedRepository) FindByURL(ctx context.Context, url string) (*model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, feed_url, title, last_fetched, created_at, updated_at FROM rss_feeds WHERE feed_url = ?`, url)
	feed, err := scanFeed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find feed: %w", err)
	}
	return &feed, nil
}

func (r *feedRepository) List(ctx context.Context) ([]model.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, feed_url, title, last_fetched, created_at, updated_at FROM rss_feeds ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

func (r *feedRepository) ListFetchedBefore(ctx context.Context, cutoff int64) ([]model.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, feed_url, title, last_fetched, created_at, updated_at FROM rss_feeds WHERE last_fetched < ? ORDER BY last_fetched`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

func collectFeeds(rows *sql.Rows) ([]model.Feed, error) {
	var feeds []model.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}
	return feeds, nil
}

func scanFeed(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Feed, error) {
	var feed model.Feed
	var createdAt string
	var updatedAt string
	if err := scanner.Scan(
		&feed.ID,
		&feed.URL,
		&feed.Title,
		&feed.LastFetched,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Feed{}, err
	}
	var err error
	feed.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed created_at: %w", err)
	}
	feed.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed updated_at: %w", err)
	}
	return feed, nil
}
