package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type PurgeSessionsTask struct {
	Task
	sessions SessionPurger
}

func NewPurgeSessionsTask(sessions SessionPurger) *PurgeSessionsTask {
	return &PurgeSessionsTask{
		Task:     NewTask(TaskTypePurgeSessions, ""),
		sessions: sessions,
	}
}

func (t *PurgeSessionsTask) Execute(ctx context.Context) error {
	purged, err := t.sessions.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	if purged > 0 {
		slog.Info("Task completed", "type", t.GetType(), "purged", purged, "duration", t.GetDuration())
	}
	return nil
}
