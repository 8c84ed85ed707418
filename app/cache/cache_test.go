package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGenerateOptionsKey(t *testing.T) {
	key1a := GenerateOptionsKey("year=2025")
	key1b := GenerateOptionsKey("year=2025")
	key2 := GenerateOptionsKey("year=2024")

	if key1a != key1b {
		t.Errorf("Expected same key for same query, got %s != %s", key1a, key1b)
	}
	if key1a == key2 {
		t.Errorf("Expected different keys for different queries, got %s", key1a)
	}
	if !strings.HasPrefix(key1a, EventsPrefix) {
		t.Errorf("Expected key to start with %s, got %s", EventsPrefix, key1a)
	}
}

func TestNoopCache(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := c.(*Noop); !ok {
		t.Fatalf("Expected no-op cache without address, got %T", c)
	}

	ctx := context.Background()
	if err := c.Set(ctx, "events:x", "1", time.Minute); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if _, ok, err := c.Get(ctx, "events:x"); ok || err != nil {
		t.Errorf("Expected miss, got ok=%v err=%v", ok, err)
	}
	if n, err := c.DeleteByPrefix(ctx, EventsPrefix); n != 0 || err != nil {
		t.Errorf("Expected nothing deleted, got %d err=%v", n, err)
	}
	if c.Health(ctx)["status"] != "disabled" {
		t.Errorf("Expected disabled status, got %v", c.Health(ctx)["status"])
	}
}
