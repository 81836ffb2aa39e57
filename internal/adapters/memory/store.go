// Package memory provides in-process Cache and EventLog implementations
// for single-node runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samirrijal/madar/internal/core/domain"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache implements ports.CacheService with a TTL map.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]entry), now: time.Now}
}

// Get returns domain.ErrNotFound for missing or expired keys.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, fmt.Errorf("cache key %q: %w", key, domain.ErrNotFound)
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.items, key)
		return nil, fmt.Errorf("cache key %q: %w", key, domain.ErrNotFound)
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value; ttlSeconds <= 0 means no expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttlSeconds > 0 {
		e.expires = c.now().Add(time.Duration(ttlSeconds) * time.Second)
	}

	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key; missing keys are not an error.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// EventLog implements ports.EventLog with capped newest-first slices.
type EventLog struct {
	mu    sync.Mutex
	lists map[string][][]byte
}

// NewEventLog returns an empty EventLog.
func NewEventLog() *EventLog {
	return &EventLog{lists: make(map[string][][]byte)}
}

// Push prepends e to key's log and drops entries beyond capacity.
func (l *EventLog) Push(_ context.Context, key string, e []byte, capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("event log %q: capacity must be positive", key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	list := append([][]byte{append([]byte(nil), e...)}, l.lists[key]...)
	if len(list) > capacity {
		list = list[:capacity]
	}
	l.lists[key] = list
	return nil
}

// Recent returns up to limit entries of key's log, newest first.
func (l *EventLog) Recent(_ context.Context, key string, limit int) ([][]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.lists[key]
	if limit < 0 {
		limit = 0
	}
	if limit > len(list) {
		limit = len(list)
	}
	out := make([][]byte, limit)
	copy(out, list[:limit])
	return out, nil
}
