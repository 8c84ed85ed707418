package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const eventColumns = `id, title, COALESCE(link, ''), COALESCE(content, ''), COALESCE(venue, ''),
	COALESCE(event_date, ''), COALESCE(fee, ''), COALESCE(ticket, ''), COALESCE(time, ''),
	COALESCE(image_url, ''), created_at, COALESCE(guid, ''), pub_date, COALESCE(feed_name, '')`

type EventStore struct {
	db *DB
}

func NewEventRepository(db *DB) *EventStore {
	return &EventStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var event Event
	var pubDate sql.NullTime
	err := row.Scan(
		&event.ID, &event.Title, &event.Link, &event.Content, &event.Venue,
		&event.Date, &event.Fee, &event.Ticket, &event.Time,
		&event.ImageURL, &event.CreatedAt, &event.GUID, &pubDate, &event.FeedName,
	)
	if err != nil {
		return nil, err
	}
	if pubDate.Valid {
		t := pubDate.Time
		event.PubDate = &t
	}
	return &event, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func (r *EventStore) ListEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	var conditions []string
	var args []any

	if query.DateFrom != "" {
		conditions = append(conditions, "event_date >= ?")
		args = append(args, query.DateFrom)
	}
	if query.DateTo != "" {
		conditions = append(conditions, "event_date <= ?")
		args = append(args, query.DateTo)
	}
	if len(query.Venues) > 0 {
		placeholders := make([]string, len(query.Venues))
		for i, v := range query.Venues {
			placeholders[i] = "?"
			args = append(args, v)
		}
		conditions = append(conditions, fmt.Sprintf("venue COLLATE NOCASE IN (%s)", strings.Join(placeholders, ", ")))
	}

	sqlQuery := "SELECT " + eventColumns + " FROM live_schedule"
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlQuery += " ORDER BY " + orderClause(query.SortField, query.Ascending)
	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return scanEvents(rows)
}

// orderClause keeps rows without a sort value at the end in both directions.
func orderClause(field SortField, ascending bool) string {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	switch field {
	case SortByVenue:
		return fmt.Sprintf("venue IS NULL, venue COLLATE NOCASE %s, event_date ASC, id ASC", direction)
	default:
		return fmt.Sprintf("event_date IS NULL, event_date %s, time ASC, id ASC", direction)
	}
}

func (r *EventStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM live_schedule WHERE id = ?", id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *EventStore) CreateEvent(ctx context.Context, fields EventFields) (*Event, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO live_schedule (
			title, link, content, venue, event_date, fee, ticket, time, image_url, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, fields.Title, nullIfEmpty(fields.Link), nullIfEmpty(fields.Content), nullIfEmpty(fields.Venue),
		nullIfEmpty(fields.Date), nullIfEmpty(fields.Fee), nullIfEmpty(fields.Ticket),
		nullIfEmpty(fields.Time), nullIfEmpty(fields.ImageURL), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get created event id: %w", err)
	}

	return r.GetEvent(ctx, id)
}

// UpdateEvent replaces every editable column of the record.
func (r *EventStore) UpdateEvent(ctx context.Context, id int64, fields EventFields) (*Event, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE live_schedule
		SET title = ?, link = ?, content = ?, venue = ?, event_date = ?,
		    fee = ?, ticket = ?, time = ?, image_url = ?
		WHERE id = ?
	`, fields.Title, nullIfEmpty(fields.Link), nullIfEmpty(fields.Content), nullIfEmpty(fields.Venue),
		nullIfEmpty(fields.Date), nullIfEmpty(fields.Fee), nullIfEmpty(fields.Ticket),
		nullIfEmpty(fields.Time), nullIfEmpty(fields.ImageURL), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return r.GetEvent(ctx, id)
}

func (r *EventStore) DeleteEvent(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM live_schedule WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDateRange returns the earliest and latest event dates, or empty
// strings when no event carries a date.
func (r *EventStore) GetDateRange(ctx context.Context) (string, string, error) {
	var minDate, maxDate string
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MIN(event_date), ''), COALESCE(MAX(event_date), '')
		FROM live_schedule
		WHERE event_date IS NOT NULL AND event_date != ''
	`).Scan(&minDate, &maxDate)
	if err != nil {
		return "", "", fmt.Errorf("failed to get date range: %w", err)
	}
	return minDate, maxDate, nil
}

// GetHistory returns events newest-recorded first.
func (r *EventStore) GetHistory(ctx context.Context, limit int) ([]Event, error) {
	sqlQuery := "SELECT " + eventColumns + " FROM live_schedule ORDER BY created_at DESC, id DESC"
	var args []any
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return scanEvents(rows)
}

func (r *EventStore) GetEventCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM live_schedule").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

// UpsertFeedEvent inserts an ingested event or refreshes it when the feed
// republished the item with a different publication date.
func (r *EventStore) UpsertFeedEvent(ctx context.Context, event FeedEvent) (UpsertResult, error) {
	if event.GUID == "" {
		return UpsertUnchanged, fmt.Errorf("feed event has no guid")
	}

	var id int64
	var pubDate sql.NullTime
	err := r.db.QueryRowContext(ctx, "SELECT id, pub_date FROM live_schedule WHERE guid = ?", event.GUID).Scan(&id, &pubDate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return UpsertUnchanged, fmt.Errorf("failed to check existing feed event: %w", err)
	}

	fields := event.Fields
	var newPubDate sql.NullTime
	if event.PubDate != nil {
		newPubDate = sql.NullTime{Time: event.PubDate.UTC(), Valid: true}
	}

	if errors.Is(err, sql.ErrNoRows) {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO live_schedule (
				title, link, content, venue, event_date, fee, ticket, time, image_url,
				created_at, guid, pub_date, feed_name
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, fields.Title, nullIfEmpty(fields.Link), nullIfEmpty(fields.Content), nullIfEmpty(fields.Venue),
			nullIfEmpty(fields.Date), nullIfEmpty(fields.Fee), nullIfEmpty(fields.Ticket),
			nullIfEmpty(fields.Time), nullIfEmpty(fields.ImageURL), time.Now().UTC(),
			event.GUID, newPubDate, nullIfEmpty(event.FeedName))
		if err != nil {
			return UpsertUnchanged, fmt.Errorf("failed to insert feed event: %w", err)
		}
		return UpsertCreated, nil
	}

	if samePubDate(pubDate, newPubDate) {
		return UpsertUnchanged, nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE live_schedule
		SET title = ?, link = ?, content = ?, venue = ?, event_date = ?,
		    fee = ?, ticket = ?, time = ?, image_url = ?, pub_date = ?, feed_name = ?
		WHERE id = ?
	`, fields.Title, nullIfEmpty(fields.Link), nullIfEmpty(fields.Content), nullIfEmpty(fields.Venue),
		nullIfEmpty(fields.Date), nullIfEmpty(fields.Fee), nullIfEmpty(fields.Ticket),
		nullIfEmpty(fields.Time), nullIfEmpty(fields.ImageURL), newPubDate, nullIfEmpty(event.FeedName), id)
	if err != nil {
		return UpsertUnchanged, fmt.Errorf("failed to update feed event: %w", err)
	}

	return UpsertUpdated, nil
}

func samePubDate(a, b sql.NullTime) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Time.Equal(b.Time)
}

// GetEventsMissingContent returns ingested events of a feed that have a link
// but no content and have not exhausted their extraction attempts.
func (r *EventStore) GetEventsMissingContent(ctx context.Context, feedName string, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+eventColumns+` FROM live_schedule
		WHERE feed_name = ?
		  AND (content IS NULL OR content = '')
		  AND link IS NOT NULL AND link != ''
		  AND extraction_attempts < ?
		ORDER BY created_at DESC
		LIMIT ?
	`, feedName, MaxExtractionAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events missing content: %w", err)
	}

	return scanEvents(rows)
}

const MaxExtractionAttempts = 3

func (r *EventStore) UpdateEventContent(ctx context.Context, id int64, content string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE live_schedule
		SET content = ?, extraction_attempts = extraction_attempts + 1
		WHERE id = ?
	`, nullIfEmpty(content), id)
	if err != nil {
		return fmt.Errorf("failed to update event content: %w", err)
	}
	return requireAffected(result)
}

func (r *EventStore) IncrementExtractionAttempts(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE live_schedule SET extraction_attempts = extraction_attempts + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to update extraction attempts: %w", err)
	}
	return nil
}
