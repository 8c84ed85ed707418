package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ehime-live/live-schedule/app/database"
)

type mockFetcher struct {
	feedData []byte
	feedErr  error
	pages    map[string][]byte
	calls    int
}

func (m *mockFetcher) FetchFeed(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	m.calls++
	if m.feedErr != nil {
		return nil, m.feedErr
	}
	return m.feedData, nil
}

func (m *mockFetcher) FetchPage(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	m.calls++
	data, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("HTTP error: 404 Not Found")
	}
	return data, nil
}

type mockEventRepository struct {
	database.EventRepository

	mu             sync.Mutex
	upserted       []database.FeedEvent
	upsertResult   database.UpsertResult
	missingContent []database.Event
	updatedContent map[int64]string
	attempts       map[int64]int
	count          int
	countCalls     int
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{
		upsertResult:   database.UpsertCreated,
		updatedContent: make(map[int64]string),
		attempts:       make(map[int64]int),
	}
}

func (m *mockEventRepository) UpsertFeedEvent(ctx context.Context, event database.FeedEvent) (database.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, event)
	return m.upsertResult, nil
}

func (m *mockEventRepository) GetEventsMissingContent(ctx context.Context, feedName string, limit int) ([]database.Event, error) {
	return m.missingContent, nil
}

func (m *mockEventRepository) UpdateEventContent(ctx context.Context, id int64, content string) error {
	m.updatedContent[id] = content
	return nil
}

func (m *mockEventRepository) IncrementExtractionAttempts(ctx context.Context, id int64) error {
	m.attempts[id]++
	return nil
}

func (m *mockEventRepository) GetEventCount(ctx context.Context) (int, error) {
	m.countCalls++
	return m.count, nil
}

type mockFeedRepository struct {
	database.FeedRepository

	feeds      map[string]*database.Feed
	upserts    []string
	fetchState map[string]string
	nextFetch  map[string]time.Time
}

func newMockFeedRepository() *mockFeedRepository {
	return &mockFeedRepository{
		feeds:      make(map[string]*database.Feed),
		fetchState: make(map[string]string),
		nextFetch:  make(map[string]time.Time),
	}
}

func (m *mockFeedRepository) GetFeed(ctx context.Context, feedName string) (*database.Feed, error) {
	f, ok := m.feeds[feedName]
	if !ok {
		return nil, nil
	}
	return f, nil
}

func (m *mockFeedRepository) UpsertFeed(ctx context.Context, feedName, feedURL, venue string) error {
	m.upserts = append(m.upserts, feedName+"|"+feedURL+"|"+venue)
	return nil
}

func (m *mockFeedRepository) UpdateFeedFetchState(ctx context.Context, feedName, title string, nextFetch time.Time) error {
	m.fetchState[feedName] = title
	m.nextFetch[feedName] = nextFetch
	return nil
}

type mockCache struct {
	prefixes []string
}

func (m *mockCache) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	m.prefixes = append(m.prefixes, prefix)
	return 1, nil
}

type mockRecorder struct {
	mu       sync.Mutex
	ingested map[string]int
	tasks    map[string]int
	stored   int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{ingested: make(map[string]int), tasks: make(map[string]int)}
}

func (m *mockRecorder) IngestedEvent(feedName, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested[feedName+"/"+result]++
}

func (m *mockRecorder) TaskExecuted(taskType string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.tasks[taskType+"/"+result]++
}

func (m *mockRecorder) SetStoredEvents(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = count
}

type mockSessionPurger struct {
	purged int64
	err    error
	calls  int
}

func (m *mockSessionPurger) PurgeExpired(ctx context.Context) (int64, error) {
	m.calls++
	return m.purged, m.err
}
