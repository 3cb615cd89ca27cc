// Package dedupe tracks idempotency keys so a retried request mutates at most once.
package dedupe

import (
	"context"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

const (
	defaultMaxSize = 50_000
	defaultTTL     = 24 * time.Hour
)

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key whose request failed so the client may retry.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// KeyCache is a bounded LRU of idempotency keys with an optional expiry.
type KeyCache struct {
	mu      sync.Mutex
	cache   *lru.Cache
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewKeyCache creates a KeyCache with configuration options.
func NewKeyCache(opts ...Option) *KeyCache {
	d := &KeyCache{
		maxSize: defaultMaxSize,
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cache = lru.New(d.maxSize)
	return d
}

// SeenAndRecord implements Deduper.
func (d *KeyCache) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if v, ok := d.cache.Get(key); ok {
		expires, _ := v.(time.Time)
		if expires.IsZero() || now.Before(expires) {
			return true
		}
	}
	var expires time.Time
	if d.ttl > 0 {
		expires = now.Add(d.ttl)
	}
	d.cache.Add(key, expires)
	return false
}

// Unrecord implements Deduper.
func (d *KeyCache) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Remove(key)
}

// Size returns the number of keys currently held, expired ones included until evicted.
func (d *KeyCache) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.cache.Len())
}
