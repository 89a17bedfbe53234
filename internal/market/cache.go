package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"asxwatch/internal/ann"
)

// DefaultTTL bounds how stale cached market data may get within a run.
const DefaultTTL = 30 * time.Minute

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Cache memoizes a Provider with a per-entry TTL. Errors are never cached;
// a failed fetch is retried on the next call.
type Cache struct {
	inner Provider
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache wraps a provider. A non-positive ttl selects DefaultTTL.
func NewCache(inner Provider, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, fetchedAt: c.now()}
}

func (c *Cache) History(ctx context.Context, sym ann.Symbol, days int) ([]Bar, error) {
	key := fmt.Sprintf("%s|history|%d", sym, days)
	if v, ok := c.lookup(key); ok {
		return v.([]Bar), nil
	}
	bars, err := c.inner.History(ctx, sym, days)
	if err != nil {
		return nil, err
	}
	c.store(key, bars)
	return bars, nil
}

func (c *Cache) Fundamentals(ctx context.Context, sym ann.Symbol) (Fundamentals, error) {
	key := string(sym) + "|fundamentals"
	if v, ok := c.lookup(key); ok {
		return v.(Fundamentals), nil
	}
	f, err := c.inner.Fundamentals(ctx, sym)
	if err != nil {
		return Fundamentals{}, err
	}
	c.store(key, f)
	return f, nil
}

func (c *Cache) Earnings(ctx context.Context, sym ann.Symbol) ([]EarningsPeriod, error) {
	key := string(sym) + "|earnings"
	if v, ok := c.lookup(key); ok {
		return v.([]EarningsPeriod), nil
	}
	periods, err := c.inner.Earnings(ctx, sym)
	if err != nil {
		return nil, err
	}
	c.store(key, periods)
	return periods, nil
}
