package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// EventsPrefix namespaces every cached value derived from event records.
const EventsPrefix = "events:"

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	Health(ctx context.Context) map[string]interface{}
	Close() error
}

// New returns a Redis cache for addr, or a no-op cache when addr is empty.
func New(addr string) (Cache, error) {
	if addr == "" {
		return NewNoop(), nil
	}
	redisCache, err := NewRedisCache(addr)
	if err != nil {
		return nil, err
	}
	return redisCache, nil
}

// GenerateOptionsKey derives the cache key of a filter-options response
// from its encoded query.
func GenerateOptionsKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%soptions:%x", EventsPrefix, hash[:8])
}

// GetJSON decodes a cached JSON value into dest. Undecodable entries are
// dropped and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

func encodeValue(key string, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value for key %s: %w", key, err)
		}
		return data, nil
	}
}
