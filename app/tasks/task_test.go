package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		retry    int
		expected time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := retryDelay(tt.retry); got != tt.expected {
			t.Errorf("retryDelay(%d): expected %v, got %v", tt.retry, tt.expected, got)
		}
	}
}

func TestTaskRetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeProcessFeed, "wstudiored")

	if task.ID == "" {
		t.Error("Expected task ID to be set")
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}

	other := NewTask(TaskTypeProcessFeed, "wstudiored")
	if other.ID == task.ID {
		t.Error("Expected unique task IDs")
	}
}

func TestSyncFeedConfigTask(t *testing.T) {
	feedRepo := newMockFeedRepository()
	task := NewSyncFeedConfigTask("wstudiored", testFeedConfig(), feedRepo)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := "wstudiored|http://red.double-ustudio.com/feed|WStudioRED"
	if len(feedRepo.upserts) != 1 || feedRepo.upserts[0] != expected {
		t.Errorf("Expected upsert %q, got %v", expected, feedRepo.upserts)
	}
}

func TestPurgeSessionsTask(t *testing.T) {
	purger := &mockSessionPurger{purged: 3}
	task := NewPurgeSessionsTask(purger)

	if task.GetType() != TaskTypePurgeSessions {
		t.Errorf("Unexpected task type %s", task.GetType())
	}
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if purger.calls != 1 {
		t.Errorf("Expected one purge, got %d", purger.calls)
	}

	purger.err = errors.New("database is locked")
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected purge error to be returned")
	}
}
