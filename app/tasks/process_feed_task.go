package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ehime-live/live-schedule/app/cache"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
	"github.com/ehime-live/live-schedule/app/feed"
)

type ProcessFeedTask struct {
	Task
	FeedConfig *feed.Config
	fetcher    Fetcher
	parser     *feed.Parser
	filterer   *feed.Filterer
	extractor  *feed.Extractor
	feedRepo   database.FeedRepository
	eventRepo  database.EventRepository
	cache      CacheInvalidator
	recorder   Recorder
}

func NewProcessFeedTask(feedName string, feedConfig *feed.Config, fetcher Fetcher, parser *feed.Parser,
	filterer *feed.Filterer, extractor *feed.Extractor, feedRepo database.FeedRepository,
	eventRepo database.EventRepository, invalidator CacheInvalidator, recorder Recorder) *ProcessFeedTask {
	return &ProcessFeedTask{
		Task:       NewTask(TaskTypeProcessFeed, feedName),
		FeedConfig: feedConfig,
		fetcher:    fetcher,
		parser:     parser,
		filterer:   filterer,
		extractor:  extractor,
		feedRepo:   feedRepo,
		eventRepo:  eventRepo,
		cache:      invalidator,
		recorder:   recorder,
	}
}

func (t *ProcessFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	data, err := t.fetcher.FetchFeed(ctx, t.FeedConfig.URL, t.FeedConfig.Settings.TimeoutDuration())
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	if maxItems := t.FeedConfig.Settings.MaxItems; maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	counts := map[database.UpsertResult]int{}
	filteredCount := 0

	for _, item := range t.filterer.Run(items, t.FeedConfig) {
		if item.IsFiltered {
			slog.Debug("Item filtered", "feed", t.FeedName, "title", item.Title, "reason", item.FilterReason)
			filteredCount++
			continue
		}

		result, err := t.eventRepo.UpsertFeedEvent(ctx, t.toFeedEvent(item))
		if err != nil {
			return fmt.Errorf("failed to store event: %w", err)
		}
		counts[result]++
		if t.recorder != nil {
			t.recorder.IngestedEvent(t.FeedName, result.String())
		}
	}

	nextFetch := time.Now().UTC().Add(t.FeedConfig.Settings.RefreshDuration())
	if err := t.feedRepo.UpdateFeedFetchState(ctx, t.FeedName, metadata.Title, nextFetch); err != nil {
		return fmt.Errorf("failed to update feed fetch state: %w", err)
	}

	if counts[database.UpsertCreated]+counts[database.UpsertUpdated] > 0 {
		t.afterChange(ctx)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(items),
		"filtered", filteredCount,
		"new", counts[database.UpsertCreated],
		"updated", counts[database.UpsertUpdated],
		"unchanged", counts[database.UpsertUnchanged])

	return nil
}

func (t *ProcessFeedTask) toFeedEvent(item feed.Item) database.FeedEvent {
	details := t.extractor.Run(item, t.FeedConfig)

	return database.FeedEvent{
		GUID:     item.Identity(t.FeedName, t.FeedConfig.Settings.IdentifyBy),
		PubDate:  item.PublishedAt,
		FeedName: t.FeedName,
		Fields: database.EventFields{
			Title:    item.Title,
			Link:     item.Link,
			Content:  details.Content,
			Venue:    t.FeedConfig.Venue,
			Date:     details.Date,
			Fee:      details.Fee,
			Ticket:   details.Ticket,
			Time:     details.Time,
			ImageURL: event.JoinImageURLs(details.Images),
		},
	}
}

// afterChange drops cached event responses and refreshes the stored-events
// gauge. Failures here do not fail the task.
func (t *ProcessFeedTask) afterChange(ctx context.Context) {
	if t.cache != nil {
		if _, err := t.cache.DeleteByPrefix(ctx, cache.EventsPrefix); err != nil {
			slog.Warn("Failed to invalidate event cache", "feed", t.FeedName, "error", err)
		}
	}

	if t.recorder != nil {
		count, err := t.eventRepo.GetEventCount(ctx)
		if err != nil {
			slog.Warn("Failed to count events", "error", err)
			return
		}
		t.recorder.SetStoredEvents(count)
	}
}
