package api

import (
	"context"
	"time"

	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/cache"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/export"
	"github.com/ehime-live/live-schedule/app/feed"
	"github.com/ehime-live/live-schedule/app/metrics"
	"github.com/ehime-live/live-schedule/app/tasks"
)

type AuthService interface {
	auth.Authenticator
	Login(ctx context.Context, name, password string) (*database.Session, *database.User, error)
	Logout(ctx context.Context, token string) error
}

var _ AuthService = (*auth.Service)(nil)

type Handler struct {
	eventRepo   database.EventRepository
	feedRepo    database.FeedRepository
	auth        AuthService
	configCache *feed.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	cache       cache.Cache
	metrics     *metrics.Metrics
	calendar    *export.CalendarGenerator
	rss         *export.RSSGenerator
	cacheTTL    time.Duration
	sessionTTL  time.Duration
	now         func() time.Time
}

type loginRequest struct {
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}

type userResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type eventListResponse struct {
	Events []database.Event `json:"events"`
	Total  int              `json:"total"`
}

type feedResponse struct {
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	Venue           string     `json:"venue"`
	Title           string     `json:"title"`
	Enabled         bool       `json:"enabled"`
	ExtractContent  bool       `json:"extract_content"`
	RefreshInterval string     `json:"refresh_interval"`
	MaxItems        int        `json:"max_items"`
	Filters         int        `json:"filters"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty"`
	NextFetchAt     *time.Time `json:"next_fetch_at,omitempty"`
}
