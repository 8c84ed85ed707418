package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const feedColumns = `name, feed_url, venue, COALESCE(title, ''), last_fetched_at, next_fetch_at, created_at, updated_at`

type FeedStore struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedStore {
	return &FeedStore{db: db}
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	var lastFetched, nextFetch sql.NullTime
	err := row.Scan(&feed.Name, &feed.FeedURL, &feed.Venue, &feed.Title,
		&lastFetched, &nextFetch, &feed.CreatedAt, &feed.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastFetched.Valid {
		t := lastFetched.Time
		feed.LastFetchedAt = &t
	}
	if nextFetch.Valid {
		t := nextFetch.Time
		feed.NextFetchAt = &t
	}
	return &feed, nil
}

func (r *FeedStore) GetFeed(ctx context.Context, feedName string) (*Feed, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+feedColumns+" FROM feeds WHERE name = ?", feedName)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

func (r *FeedStore) GetFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+feedColumns+" FROM feeds ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *FeedStore) GetFeedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// UpsertFeed registers a feed configuration, keeping fetch state when the
// feed already exists.
func (r *FeedStore) UpsertFeed(ctx context.Context, feedName, feedURL, venue string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feeds (name, feed_url, venue, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = excluded.feed_url,
			venue = excluded.venue,
			updated_at = excluded.updated_at
	`, feedName, feedURL, venue, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

func (r *FeedStore) UpdateFeedFetchState(ctx context.Context, feedName, title string, nextFetch time.Time) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET title = ?, last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, nullIfEmpty(title), now, nextFetch.UTC(), now, feedName)
	if err != nil {
		return fmt.Errorf("failed to update feed fetch state: %w", err)
	}
	return requireAffected(result)
}
