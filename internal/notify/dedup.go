package notify

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedup suppresses repeated keys inside a TTL window. Bounded by an LRU so a
// pathological key stream cannot grow memory.
type Dedup struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
}

func NewDedup(maxKeys int, ttl time.Duration) *Dedup {
	c, _ := lru.New[string, time.Time](maxKeys)
	return &Dedup{cache: c, ttl: ttl}
}

// Suppress reports whether key was already seen inside the window, and
// refreshes the window when it was not.
func (d *Dedup) Suppress(key string) bool {
	if seenAt, ok := d.cache.Get(key); ok {
		if time.Since(seenAt) < d.ttl {
			return true
		}
	}
	d.cache.Add(key, time.Now())
	return false
}
