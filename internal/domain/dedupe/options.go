package dedupe

import "time"

// Option applies a configuration option to the KeyCache.
type Option func(*KeyCache)

// WithMaxSize sets the maximum number of keys kept in memory.
// The least recently used key is evicted once the bound is reached.
func WithMaxSize(maxSize int) Option {
	return func(d *KeyCache) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}

// WithTTL sets how long a claimed key blocks replays. Zero keeps keys until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(d *KeyCache) {
		if ttl >= 0 {
			d.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *KeyCache) {
		if now != nil {
			d.now = now
		}
	}
}
