package database

import (
	"context"
	"time"
)

type EventRepository interface {
	ListEvents(ctx context.Context, query EventQuery) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	CreateEvent(ctx context.Context, fields EventFields) (*Event, error)
	UpdateEvent(ctx context.Context, id int64, fields EventFields) (*Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	GetDateRange(ctx context.Context) (string, string, error)
	GetHistory(ctx context.Context, limit int) ([]Event, error)
	GetEventCount(ctx context.Context) (int, error)

	UpsertFeedEvent(ctx context.Context, event FeedEvent) (UpsertResult, error)
	GetEventsMissingContent(ctx context.Context, feedName string, limit int) ([]Event, error)
	UpdateEventContent(ctx context.Context, id int64, content string) error
	IncrementExtractionAttempts(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetUserByName(ctx context.Context, name string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, name, passwordHash string) (*User, error)
	GetUserCount(ctx context.Context) (int, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string, now time.Time) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type FeedRepository interface {
	GetFeed(ctx context.Context, feedName string) (*Feed, error)
	GetFeeds(ctx context.Context) ([]Feed, error)
	GetFeedCount(ctx context.Context) (int, error)

	UpsertFeed(ctx context.Context, feedName, feedURL, venue string) error
	UpdateFeedFetchState(ctx context.Context, feedName, title string, nextFetch time.Time) error
}

var (
	_ EventRepository   = (*EventStore)(nil)
	_ UserRepository    = (*UserStore)(nil)
	_ SessionRepository = (*SessionStore)(nil)
	_ FeedRepository    = (*FeedStore)(nil)
)
