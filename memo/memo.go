// Package memo memoizes marshaled JSON responses by string key. Concurrent
// misses for the same key are collapsed into a single producer call, so an
// expensive payload is computed and encoded at most once per expiry window.
package memo

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the payload lifetime when none is configured.
const DefaultTTL = 1 * time.Minute

// Stats counts cache traffic.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

type entry struct {
	payload []byte
	expires time.Time
}

// Cache stores marshaled payloads with a fixed TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   func() time.Time
	group   singleflight.Group

	hits, misses atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the payload lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the memoized JSON payload for key, invoking produce and
// marshaling its result on a miss or after expiry. Errors from produce are
// not memoized; the next Get retries.
func (c *Cache) Get(key string, produce func() (any, error)) ([]byte, error) {
	if payload, ok := c.lookup(key); ok {
		return payload, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another flight may have stored the payload while we waited.
		if payload, ok := c.lookup(key); ok {
			return payload, nil
		}

		value, err := produce()
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		c.misses.Add(1)
		c.mu.Lock()
		c.entries[key] = entry{payload: payload, expires: c.clock().Add(c.ttl)}
		c.mu.Unlock()
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.clock().Before(e.expires) {
		c.hits.Add(1)
		return e.payload, true
	}
	return nil, false
}

// Forget drops one key.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns a snapshot of cache traffic.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: len(c.entries)}
}
