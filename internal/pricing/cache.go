package pricing

import (
	"context"
	"strings"
	"sync"
	"time"

	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/revenue"

	"golang.org/x/sync/singleflight"
)

const cacheMaxEntries = 2000

type cacheEntry struct {
	quote     revenue.PriceQuote
	expiresAt time.Time
}

// Cache memoizes successful lookups per (butcher, item, size) for ttl and
// collapses concurrent misses for the same key into one upstream call.
// Failures are not cached.
type Cache struct {
	next  revenue.PriceLookup
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(next revenue.PriceLookup, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{next: next, ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

func cacheKey(butcherID, itemName, size string) string {
	return strings.Join([]string{
		butcherID,
		strings.ToLower(normalize.CanonicalName(itemName)),
		strings.ToLower(strings.TrimSpace(size)),
	}, "|")
}

func (c *Cache) PurchasePrice(ctx context.Context, butcherID, itemName, size string) (revenue.PriceQuote, error) {
	key := cacheKey(butcherID, itemName, size)
	if quote, ok := c.get(key); ok {
		return quote, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		quote, err := c.next.PurchasePrice(ctx, butcherID, itemName, size)
		if err != nil {
			return revenue.PriceQuote{}, err
		}
		c.set(key, quote)
		return quote, nil
	})
	if err != nil {
		return revenue.PriceQuote{}, err
	}
	return v.(revenue.PriceQuote), nil
}

func (c *Cache) get(key string) (revenue.PriceQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return revenue.PriceQuote{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return revenue.PriceQuote{}, false
	}
	return entry.quote, true
}

func (c *Cache) set(key string, quote revenue.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= cacheMaxEntries {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[key] = cacheEntry{quote: quote, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops every cached price for butcherID, or everything when
// butcherID is empty.
func (c *Cache) Invalidate(butcherID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if butcherID == "" {
		c.entries = make(map[string]cacheEntry)
		return
	}
	prefix := butcherID + "|"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
