package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ehime-live/live-schedule/app/cache"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/feed"
)

type ExtractContentTask struct {
	Task
	FeedConfig       *feed.Config
	fetcher          Fetcher
	contentExtractor *feed.ContentExtractor
	eventRepo        database.EventRepository
	cache            CacheInvalidator
}

func NewExtractContentTask(feedName string, feedConfig *feed.Config, fetcher Fetcher,
	contentExtractor *feed.ContentExtractor, eventRepo database.EventRepository, invalidator CacheInvalidator) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, feedName),
		FeedConfig:       feedConfig,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		eventRepo:        eventRepo,
		cache:            invalidator,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for feed", "feed", t.FeedName)
		return nil
	}

	events, err := t.eventRepo.GetEventsMissingContent(ctx, t.FeedName, t.FeedConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get events for content extraction: %w", err)
	}

	if len(events) == 0 {
		slog.Debug("No events need content extraction", "feed", t.FeedName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, e := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extractContentForEvent(ctx, e); err != nil {
			slog.Error("Failed to extract content for event", "event_id", e.ID, "url", e.Link, "error", err)
			errorCount++

			if err := t.eventRepo.IncrementExtractionAttempts(ctx, e.ID); err != nil {
				slog.Error("Failed to record extraction attempt", "event_id", e.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	if successCount > 0 && t.cache != nil {
		if _, err := t.cache.DeleteByPrefix(ctx, cache.EventsPrefix); err != nil {
			slog.Warn("Failed to invalidate event cache", "feed", t.FeedName, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForEvent(ctx context.Context, e database.Event) error {
	if e.Link == "" {
		return fmt.Errorf("event has no link")
	}

	data, err := t.fetcher.FetchPage(ctx, e.Link, t.FeedConfig.Settings.TimeoutDuration())
	if err != nil {
		return fmt.Errorf("failed to fetch event page: %w", err)
	}

	content, err := t.contentExtractor.Run(data, e.Link)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}
	if content == "" {
		return fmt.Errorf("no readable content found")
	}

	if err := t.eventRepo.UpdateEventContent(ctx, e.ID, content); err != nil {
		return fmt.Errorf("failed to update event content: %w", err)
	}

	slog.Debug("Content extracted successfully", "event_id", e.ID, "url", e.Link, "content_length", len(content))
	return nil
}
