package cache

import (
	"context"
	"time"
)

// Noop is used when no Redis address is configured; every lookup misses.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) DeleteByPrefix(context.Context, string) (int, error) { return 0, nil }

func (Noop) Health(context.Context) map[string]interface{} {
	return map[string]interface{}{"status": "disabled", "type": "none"}
}

func (Noop) Close() error { return nil }

var (
	_ Cache = (*Noop)(nil)
	_ Cache = (*RedisCache)(nil)
)
