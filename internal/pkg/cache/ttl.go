// Package cache provides a small read-through cache for per-tenant data.
package cache

import (
	"context"
	"sync"
	"time"
)

// LoadFunc fetches the value for key on a miss.
type LoadFunc[V any] func(ctx context.Context, key string) (V, error)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL caches values per key for a fixed duration. Errors are not cached.
// A zero ttl disables caching.
type TTL[V any] struct {
	ttl  time.Duration
	load LoadFunc[V]
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
	// gens counts invalidations per key. A load only stores its value when
	// the generation it started under is still current.
	gens map[string]uint64
}

func NewTTL[V any](ttl time.Duration, load LoadFunc[V]) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		load:    load,
		now:     time.Now,
		entries: make(map[string]entry[V]),
		gens:    make(map[string]uint64),
	}
}

// Get returns the cached value for key, loading it when missing or stale.
func (c *TTL[V]) Get(ctx context.Context, key string) (V, error) {
	if c.ttl <= 0 {
		return c.load(ctx, key)
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	gen := c.gens[key]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		return e.value, nil
	}

	v, err := c.load(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	if c.gens[key] == gen {
		c.entries[key] = entry[V]{value: v, expiresAt: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return v, nil
}

// Invalidate drops key so the next Get reloads it. Loads already in flight
// for key return their value without caching it.
func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
}

// Purge drops expired entries.
func (c *TTL[V]) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
