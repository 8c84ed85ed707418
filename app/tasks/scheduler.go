package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
)

var ErrFeedDisabled = errors.New("feed is disabled")

// Deps are the collaborators shared by every task the scheduler creates.
type Deps struct {
	ConfigCache      *feed.ConfigCache
	FeedRepo         database.FeedRepository
	EventRepo        database.EventRepository
	Fetcher          Fetcher
	Parser           *feed.Parser
	Filterer         *feed.Filterer
	Extractor        *feed.Extractor
	ContentExtractor *feed.ContentExtractor
	Sessions         SessionPurger
	Cache            CacheInvalidator
	Recorder         Recorder
}

type Scheduler struct {
	deps        Deps
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(deps Deps) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		deps:        deps,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueFeed schedules an immediate fetch of one configured feed.
func (s *Scheduler) EnqueueFeed(feedName string) error {
	feedConfig, err := s.deps.ConfigCache.GetConfig(feedName)
	if err != nil {
		return fmt.Errorf("%w: %s", database.ErrNotFound, feedName)
	}
	if !feedConfig.Settings.Enabled {
		return ErrFeedDisabled
	}
	return s.EnqueueTask(s.newProcessFeedTask(feedConfig))
}

func (s *Scheduler) newProcessFeedTask(feedConfig *feed.Config) *ProcessFeedTask {
	return NewProcessFeedTask(feedConfig.Name, feedConfig, s.deps.Fetcher, s.deps.Parser, s.deps.Filterer,
		s.deps.Extractor, s.deps.FeedRepo, s.deps.EventRepo, s.deps.Cache, s.deps.Recorder)
}

func (s *Scheduler) newExtractContentTask(feedConfig *feed.Config) *ExtractContentTask {
	return NewExtractContentTask(feedConfig.Name, feedConfig, s.deps.Fetcher, s.deps.ContentExtractor,
		s.deps.EventRepo, s.deps.Cache)
}

func (s *Scheduler) enqueueStartupTasks() {
	feedConfigs := s.deps.ConfigCache.GetConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No feed configurations found")
		return
	}

	slog.Debug("Processing feed configurations", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		syncTask := NewSyncFeedConfigTask(feedConfig.Name, feedConfig, s.deps.FeedRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncFeedConfigTask", "feed", feedConfig.Name, "error", err)
			continue
		}

		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping ProcessFeedTask", "feed", feedConfig.Name)
			continue
		}

		if err := s.EnqueueTask(s.newProcessFeedTask(feedConfig)); err != nil {
			slog.Warn("Failed to enqueue ProcessFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	if s.deps.Sessions != nil {
		if err := s.EnqueueTask(NewPurgeSessionsTask(s.deps.Sessions)); err != nil {
			slog.Warn("Failed to enqueue PurgeSessionsTask", "error", err)
		}
	}

	feedConfigs := s.deps.ConfigCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	slog.Debug("Processing enabled feed configurations for task scheduling", "count", len(feedConfigs))

	now := time.Now().UTC()
	for _, feedConfig := range feedConfigs {
		if s.isDue(feedConfig, now) {
			if err := s.EnqueueTask(s.newProcessFeedTask(feedConfig)); err != nil {
				slog.Warn("Failed to enqueue ProcessFeedTask", "feed", feedConfig.Name, "error", err)
			}
		}

		if feedConfig.Settings.ExtractContent {
			if err := s.EnqueueTask(s.newExtractContentTask(feedConfig)); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "feed", feedConfig.Name, "error", err)
			}
		}
	}
}

// isDue reports whether a feed should be fetched now. A feed without a
// stored row is skipped and its configuration re-synced.
func (s *Scheduler) isDue(feedConfig *feed.Config, now time.Time) bool {
	feedName := feedConfig.Name
	storedFeed, err := s.deps.FeedRepo.GetFeed(s.ctx, feedName)
	if err != nil {
		slog.Warn("Failed to get feed from database, skipping", "feed", feedName, "error", err)
		return false
	}

	if storedFeed == nil {
		slog.Warn("Feed not found in database, skipping", "feed", feedName)
		if err := s.EnqueueTask(NewSyncFeedConfigTask(feedName, feedConfig, s.deps.FeedRepo)); err != nil {
			slog.Warn("Failed to enqueue SyncFeedConfigTask", "feed", feedName, "error", err)
		}
		return false
	}

	if storedFeed.NextFetchAt != nil && storedFeed.NextFetchAt.After(now) {
		slog.Debug("Feed not due for refresh yet", "feed", feedName, "next_fetch_at", storedFeed.NextFetchAt)
		return false
	}
	return true
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if s.deps.Recorder != nil {
		s.deps.Recorder.TaskExecuted(string(task.GetType()), err)
	}

	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	go func() {
		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}
