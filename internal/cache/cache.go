// Package cache provides the small get/set-with-TTL contract the services use for
// cache-aside reads, and an in-process implementation of it.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores values of type V under string keys until their TTL elapses.
// Implementations may block on I/O and must be safe for concurrent use.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
}

// Memory is a process-local Cache. Expired entries are reported as absent on read
// and reclaimed by a janitor every cleanup interval.
type Memory[V any] struct {
	items *gocache.Cache
}

func NewMemory[V any](cleanup time.Duration) *Memory[V] {
	return &Memory[V]{items: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	var zero V

	raw, ok := m.items.Get(key)
	if !ok {
		return zero, false, nil
	}

	v, ok := raw.(V)
	if !ok {
		return zero, false, fmt.Errorf("cache entry %q holds %T", key, raw)
	}

	return v, true, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache entry %q: ttl must be positive, got %s", key, ttl)
	}

	m.items.Set(key, value, ttl)

	return nil
}
