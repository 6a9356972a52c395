package rates

import (
	"context"
	"sync"
	"time"

	"github.com/theirongolddev/nakop/internal/model"
)

// DefaultTTL is how long a fetched snapshot is reused.
const DefaultTTL = time.Hour

// Cache holds a single global snapshot in front of a Provider.
// Failed fetches are never cached; an expired entry is refetched on next use.
type Cache struct {
	src Provider
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	snap      model.RateSnapshot
	fetchedAt time.Time
	valid     bool
}

// NewCache wraps src. A non-positive ttl uses DefaultTTL.
func NewCache(src Provider, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

// SetClock replaces the cache clock. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Fetch implements Provider.
func (c *Cache) Fetch(ctx context.Context) (model.RateSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.snap, nil
	}

	snap, err := c.src.Fetch(ctx)
	if err != nil {
		c.valid = false
		return model.RateSnapshot{}, err
	}
	c.snap = snap
	c.fetchedAt = c.now()
	c.valid = true
	return snap, nil
}

// FetchedAt returns when the cached snapshot was fetched, or the zero time.
func (c *Cache) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return time.Time{}
	}
	return c.fetchedAt
}

// Invalidate drops the cached snapshot so the next Fetch goes to the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
