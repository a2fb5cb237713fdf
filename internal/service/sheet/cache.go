package sheet

import (
	"sync"
	"time"

	"rrtracker/internal/domain/models"
)

// tickerCache holds one parsed sheet with an expiry. The watchlist changes
// rarely and every HTTP handler plus the batch loop reads it, so a short TTL
// keeps sheet fetches off the hot path.
type tickerCache struct {
	mu       sync.RWMutex
	specs    []models.TickerSpec
	expireAt time.Time
	ttl      time.Duration
}

func newTickerCache(ttl time.Duration) *tickerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &tickerCache{ttl: ttl}
}

func (c *tickerCache) get() ([]models.TickerSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.specs == nil || time.Now().After(c.expireAt) {
		return nil, false
	}
	return c.specs, true
}

func (c *tickerCache) put(specs []models.TickerSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = specs
	c.expireAt = time.Now().Add(c.ttl)
}

func (c *tickerCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = nil
}
