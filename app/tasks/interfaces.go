package tasks

import (
	"context"
	"time"
)

// TaskSchedulerInterface is used by main to run background processing and
// by the API to trigger an immediate feed reload.
//
//	scheduler := NewScheduler(deps)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueFeed("w-studio-red")
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueFeed(feedName string) error
}

// Fetcher downloads feed documents and linked event pages.
type Fetcher interface {
	FetchFeed(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
	FetchPage(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

type CacheInvalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Recorder interface {
	IngestedEvent(feedName, result string)
	TaskExecuted(taskType string, err error)
	SetStoredEvents(count int)
}
