package handlers

import (
	"strings"
	"sync"
	"time"
)

type analyticsCacheEntry struct {
	value     any
	expiresAt time.Time
}

const analyticsCacheMaxEntries = 500

// analyticsCache keeps rendered views for a short TTL, keyed by
// "view|scope|window...". A zero TTL disables it.
type analyticsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]analyticsCacheEntry
}

func newAnalyticsCache(ttl time.Duration) *analyticsCache {
	return &analyticsCache{ttl: ttl, now: time.Now, entries: map[string]analyticsCacheEntry{}}
}

func analyticsCacheKey(view string, inputKey string) string {
	return view + "|" + inputKey
}

func (c *analyticsCache) get(key string) (any, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *analyticsCache) set(key string, value any) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= analyticsCacheMaxEntries {
		c.entries = map[string]analyticsCacheEntry{}
	}
	c.entries[key] = analyticsCacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// invalidateScope drops every view cached for scope.
func (c *analyticsCache) invalidateScope(scope string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		parts := strings.SplitN(key, "|", 3)
		if len(parts) >= 2 && parts[1] == scope {
			delete(c.entries, key)
		}
	}
}
