package api

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/cache"
	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
	"github.com/ehime-live/live-schedule/app/export"
	"github.com/ehime-live/live-schedule/app/feed"
	"github.com/ehime-live/live-schedule/app/metrics"
	"github.com/ehime-live/live-schedule/app/tasks"
)

const rssItemLimit = 50

func NewHandler(eventRepo database.EventRepository, feedRepo database.FeedRepository, authService AuthService,
	configCache *feed.ConfigCache, scheduler tasks.TaskSchedulerInterface, responseCache cache.Cache,
	m *metrics.Metrics) *Handler {
	c := cfg.Get()

	return &Handler{
		eventRepo:   eventRepo,
		feedRepo:    feedRepo,
		auth:        authService,
		configCache: configCache,
		scheduler:   scheduler,
		cache:       responseCache,
		metrics:     m,
		calendar:    export.NewCalendarGenerator(),
		rss:         export.NewRSSGenerator(),
		cacheTTL:    c.CacheLifetime(),
		sessionTTL:  c.SessionLifetime(),
		now:         time.Now,
	}
}

// listEvents runs the filter against storage. Filters that cannot match
// anything return an empty list without a query.
func (h *Handler) listEvents(ctx context.Context, f event.Filter) ([]database.Event, error) {
	query, ok := f.Query()
	if !ok {
		return []database.Event{}, nil
	}

	events, err := h.eventRepo.ListEvents(ctx, query)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []database.Event{}
	}
	return events, nil
}

// filterOptions derives the filter choices, served from the response cache
// when possible. Options depend only on the stored date range and the
// selected year and area.
func (h *Handler) filterOptions(ctx context.Context, f event.Filter) (event.Options, error) {
	keyFilter := event.Filter{Year: f.Year, Area: f.Area, Ascending: true}
	key := cache.GenerateOptionsKey(keyFilter.Values().Encode())

	var opts event.Options
	if ok, err := cache.GetJSON(ctx, h.cache, key, &opts); err != nil {
		slog.Warn("Failed to read options from cache", "key", key, "error", err)
	} else if ok {
		return opts, nil
	}

	minDate, maxDate, err := h.eventRepo.GetDateRange(ctx)
	if err != nil {
		return event.Options{}, err
	}
	opts = event.DeriveOptions(minDate, maxDate, f)

	if err := h.cache.Set(ctx, key, opts, h.cacheTTL); err != nil {
		slog.Warn("Failed to cache options", "key", key, "error", err)
	}
	return opts, nil
}

// eventsChanged drops cached event responses and refreshes the stored
// events gauge after a mutation.
func (h *Handler) eventsChanged(ctx context.Context) {
	if _, err := h.cache.DeleteByPrefix(ctx, cache.EventsPrefix); err != nil {
		slog.Warn("Failed to invalidate event cache", "error", err)
	}

	if h.metrics == nil {
		return
	}
	count, err := h.eventRepo.GetEventCount(ctx)
	if err != nil {
		slog.Warn("Failed to count events", "error", err)
		return
	}
	h.metrics.SetStoredEvents(count)
}

// loadEvent is GetEvent with a missing record reported as ErrNotFound.
func (h *Handler) loadEvent(ctx context.Context, id int64) (*database.Event, error) {
	e, err := h.eventRepo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, database.ErrNotFound
	}
	return e, nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK

	health := map[string]interface{}{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
	}

	if eventCount, err := h.eventRepo.GetEventCount(ctx); err == nil {
		health["events"] = eventCount
	} else {
		slog.Error("Database error", "operation", "get_event_count", "error", err)
		health["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	if feedCount, err := h.feedRepo.GetFeedCount(ctx); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()
	health["cache"] = h.cache.Health(ctx)

	c.JSON(status, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	ctx := c.Request.Context()
	configs := h.configCache.GetConfigs()

	feeds := make([]feedResponse, 0, len(configs))
	for _, name := range h.configCache.GetConfigNames() {
		feedConfig := configs[name]
		if feedConfig == nil {
			continue
		}

		info := feedResponse{
			Name:            feedConfig.Name,
			URL:             feedConfig.URL,
			Venue:           feedConfig.Venue,
			Enabled:         feedConfig.Settings.Enabled,
			ExtractContent:  feedConfig.Settings.ExtractContent,
			RefreshInterval: feedConfig.Settings.RefreshDuration().String(),
			MaxItems:        feedConfig.Settings.MaxItems,
			Filters:         len(feedConfig.Filters),
		}

		stored, err := h.feedRepo.GetFeed(ctx, name)
		if err != nil {
			slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		} else if stored != nil {
			info.Title = stored.Title
			info.LastFetchedAt = stored.LastFetchedAt
			info.NextFetchAt = stored.NextFetchAt
		}

		feeds = append(feeds, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// APIReloadFeed re-reads a feed configuration from disk, syncs it to the
// database and schedules an immediate fetch.
func (h *Handler) APIReloadFeed(c *gin.Context) {
	name := c.Param("name")

	feedConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "feed", name, "error", err)
		writeError(c, http.StatusNotFound, codeNotFound, "Feed configuration not found")
		return
	}

	syncTask := tasks.NewSyncFeedConfigTask(name, feedConfig, h.feedRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "feed", name, "error", err)
		writeError(c, http.StatusServiceUnavailable, codeQueueFull, "Failed to enqueue sync task")
		return
	}

	if err := h.scheduler.EnqueueFeed(name); err != nil {
		switch {
		case errors.Is(err, tasks.ErrFeedDisabled):
			writeError(c, http.StatusConflict, codeFeedDisabled, "Feed is disabled")
		default:
			slog.Error("Error enqueueing process task", "feed", name, "error", err)
			writeError(c, http.StatusServiceUnavailable, codeQueueFull, "Failed to enqueue process task")
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Configuration reloaded and fetch scheduled",
		"feed": gin.H{
			"name":  name,
			"venue": feedConfig.Venue,
			"url":   feedConfig.URL,
		},
	})
}

func (h *Handler) ExportCalendar(c *gin.Context) {
	f, err := event.ParseFilter(c.Request.URL.Query())
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	events, err := h.listEvents(c.Request.Context(), f)
	if err != nil {
		slog.Error("Database error", "operation", "list_events", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Database error")
		return
	}

	var buf bytes.Buffer
	if err := h.calendar.Run(&buf, events); err != nil {
		slog.Error("Calendar generation error", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Calendar generation failed")
		return
	}

	c.Header("Content-Disposition", `inline; filename="events.ics"`)
	c.Header("X-Event-Count", strconv.Itoa(len(events)))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *Handler) ExportRSS(c *gin.Context) {
	f, err := event.ParseFilter(c.Request.URL.Query())
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	events, err := h.listEvents(c.Request.Context(), f)
	if err != nil {
		slog.Error("Database error", "operation", "list_events", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Database error")
		return
	}

	slices.SortFunc(events, func(a, b database.Event) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(events) > rssItemLimit {
		events = events[:rssItemLimit]
	}

	rss, err := h.rss.Run(events, c.Request.URL.RequestURI())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "RSS generation failed")
		return
	}

	c.Header("X-Event-Count", strconv.Itoa(len(events)))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
