package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ehime-live/live-schedule/app/tasks"
)

const enabledFeedConfig = `
url: "http://red.double-ustudio.com/feed"
venue: "WStudioRED"
settings:
  enabled: true
  refresh_interval: 1800
  max_items: 20
  timeout: 30
`

const disabledFeedConfig = `
url: "http://example.com/jamsounds/feed"
venue: "JamSounds"
settings:
  enabled: false
`

func TestAPIListFeeds(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	s.writeFeedConfig(t, "wstudiored", enabledFeedConfig)

	w := s.do(jsonRequest(http.MethodGet, "/api/feeds", "", ""))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without session, got %d", w.Code)
	}

	// Configs written after startup are picked up by a reload.
	w = s.do(jsonRequest(http.MethodPost, "/api/feeds/wstudiored/reload", "", token))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(jsonRequest(http.MethodGet, "/api/feeds", "", token))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Feeds []feedResponse `json:"feeds"`
		Total int            `json:"total"`
	}
	decodeJSON(t, w, &resp)

	if resp.Total != 1 || len(resp.Feeds) != 1 {
		t.Fatalf("Expected 1 feed, got %d", resp.Total)
	}
	info := resp.Feeds[0]
	if info.Name != "wstudiored" || info.Venue != "WStudioRED" || !info.Enabled {
		t.Errorf("Unexpected feed info: %+v", info)
	}
	if info.RefreshInterval != "30m0s" || info.MaxItems != 20 {
		t.Errorf("Expected settings from config, got %+v", info)
	}
}

func TestAPIListFeedsBeforeSync(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	s.writeFeedConfig(t, "wstudiored", enabledFeedConfig)

	// The mock scheduler never runs the sync task, so no feeds row exists.
	w := s.do(jsonRequest(http.MethodPost, "/api/feeds/wstudiored/reload", "", token))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(jsonRequest(http.MethodGet, "/api/feeds", "", token))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Feeds []feedResponse `json:"feeds"`
		Total int            `json:"total"`
	}
	decodeJSON(t, w, &resp)
	if resp.Total != 1 {
		t.Fatalf("Expected 1 feed, got %d", resp.Total)
	}
	if info := resp.Feeds[0]; info.Title != "" || info.LastFetchedAt != nil || info.NextFetchAt != nil {
		t.Errorf("Expected no stored state for an unsynced feed, got %+v", info)
	}

	ctx := context.Background()
	if err := s.feeds.UpsertFeed(ctx, "wstudiored", "http://red.double-ustudio.com/feed", "WStudioRED"); err != nil {
		t.Fatal(err)
	}
	next := time.Date(2025, 8, 1, 13, 0, 0, 0, time.UTC)
	if err := s.feeds.UpdateFeedFetchState(ctx, "wstudiored", "W Studio RED", next); err != nil {
		t.Fatal(err)
	}

	w = s.do(jsonRequest(http.MethodGet, "/api/feeds", "", token))
	var synced struct {
		Feeds []feedResponse `json:"feeds"`
	}
	decodeJSON(t, w, &synced)
	if len(synced.Feeds) != 1 {
		t.Fatalf("Expected 1 feed, got %d", len(synced.Feeds))
	}
	if info := synced.Feeds[0]; info.Title != "W Studio RED" || info.NextFetchAt == nil {
		t.Errorf("Expected stored feed state, got %+v", info)
	}
}

func TestAPIReloadFeed(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	s.writeFeedConfig(t, "wstudiored", enabledFeedConfig)

	w := s.do(jsonRequest(http.MethodPost, "/api/feeds/wstudiored/reload", "", token))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	if len(s.scheduler.tasks) != 1 || s.scheduler.tasks[0].GetType() != tasks.TaskTypeSyncFeedConfig {
		t.Errorf("Expected one sync task, got %v", s.scheduler.tasks)
	}
	if len(s.scheduler.feeds) != 1 || s.scheduler.feeds[0] != "wstudiored" {
		t.Errorf("Expected feed to be enqueued, got %v", s.scheduler.feeds)
	}

	w = s.do(jsonRequest(http.MethodPost, "/api/feeds/missing/reload", "", token))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown feed, got %d", w.Code)
	}
}

func TestAPIReloadFeedErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	s.writeFeedConfig(t, "jamsounds", disabledFeedConfig)

	s.scheduler.feedErr = tasks.ErrFeedDisabled
	w := s.do(jsonRequest(http.MethodPost, "/api/feeds/jamsounds/reload", "", token))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for disabled feed, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), codeFeedDisabled) {
		t.Errorf("Expected feed_disabled code, got %s", w.Body.String())
	}

	s.scheduler.queueErr = errors.New("task queue is full")
	w = s.do(jsonRequest(http.MethodPost, "/api/feeds/jamsounds/reload", "", token))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 when queue is full, got %d", w.Code)
	}
}

func TestExportCalendar(t *testing.T) {
	s := newTestServer(t)
	seedEvents(t, s)

	w := s.do(httptest.NewRequest(http.MethodGet, "/events.ics?area=中予", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("Expected text/calendar, got %s", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Event-Count") != "2" {
		t.Errorf("Expected 2 exported events, got %s", w.Header().Get("X-Event-Count"))
	}

	body := w.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || strings.Count(body, "BEGIN:VEVENT") != 2 {
		t.Errorf("Expected calendar with 2 events, got %s", body)
	}
	if strings.Contains(body, "Toyo Rock Fest") {
		t.Error("Expected filter to exclude 東予 events")
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/events.ics?month=2", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid filter, got %d", w.Code)
	}
}

func TestExportRSS(t *testing.T) {
	s := newTestServer(t)
	seedEvents(t, s)

	w := s.do(httptest.NewRequest(http.MethodGet, "/events.rss?year=2025", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/rss+xml") {
		t.Errorf("Expected RSS content type, got %s", w.Header().Get("Content-Type"))
	}

	body := w.Body.String()
	if !strings.Contains(body, `<rss version="2.0"`) {
		t.Errorf("Expected RSS document, got %s", body)
	}
	if strings.Count(body, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(body, "<item>"))
	}
	if !strings.Contains(body, `href="http://localhost:8080/events.rss?year=2025"`) {
		t.Errorf("Expected self link with filter, got %s", body)
	}
	// Newest recorded first.
	if strings.Index(body, "Acoustic Evening") > strings.Index(body, "Summer Session") {
		t.Error("Expected most recently recorded event first")
	}
}
