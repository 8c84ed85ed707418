package database

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// EventFields are the user-editable columns of an event record.
// Empty strings are stored as NULL.
type EventFields struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Content  string `json:"content"`
	Venue    string `json:"venue"`
	Date     string `json:"date"` // YYYY-MM-DD
	Fee      string `json:"fee"`
	Ticket   string `json:"ticket"`
	Time     string `json:"time"`
	ImageURL string `json:"image_url"`
}

type Event struct {
	ID int64 `json:"id"`
	EventFields
	CreatedAt time.Time  `json:"created_at"`
	GUID      string     `json:"guid,omitempty"`
	PubDate   *time.Time `json:"pub_date,omitempty"`
	FeedName  string     `json:"feed_name,omitempty"`
}

// FeedEvent is an event produced by feed ingestion, identified by GUID.
type FeedEvent struct {
	GUID     string
	PubDate  *time.Time
	FeedName string
	Fields   EventFields
}

type UpsertResult int

const (
	UpsertUnchanged UpsertResult = iota
	UpsertCreated
	UpsertUpdated
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertCreated:
		return "created"
	case UpsertUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

type SortField string

const (
	SortByDate  SortField = "date"
	SortByVenue SortField = "venue"
)

// EventQuery selects events for the table view. Date bounds are inclusive
// YYYY-MM-DD strings; empty bounds and an empty venue list are unbounded.
type EventQuery struct {
	DateFrom  string
	DateTo    string
	Venues    []string
	SortField SortField
	Ascending bool
	Limit     int
}

type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Feed struct {
	Name          string // Configuration feed identifier derived from filename
	FeedURL       string
	Venue         string
	Title         string // Channel title reported by the feed
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
