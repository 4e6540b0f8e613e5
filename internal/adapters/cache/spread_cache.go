package cache

import (
	"context"
	"fmt"
	"fxexchange/internal/adapters"
	"time"

	"github.com/dgraph-io/ristretto"
)

type spreadEntry struct {
	spread float64
	found  bool
}

// SpreadCache is a read-through cache in front of a SpreadRepository.
// Entries expire after ttl, so a newly appended spread becomes visible within ttl.
type SpreadCache struct {
	next  adapters.SpreadRepository
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewSpreadCache(next adapters.SpreadRepository, maxItems int64, ttl time.Duration) (*SpreadCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create spread cache failed: %w", err)
	}
	return &SpreadCache{next: next, cache: c, ttl: ttl}, nil
}

func (c *SpreadCache) FindLatest(ctx context.Context, currency string) (float64, bool, error) {
	if v, ok := c.cache.Get(currency); ok {
		if e, ok := v.(spreadEntry); ok {
			return e.spread, e.found, nil
		}
	}

	spread, found, err := c.next.FindLatest(ctx, currency)
	if err != nil {
		return 0, false, err
	}
	c.cache.SetWithTTL(currency, spreadEntry{spread: spread, found: found}, 1, c.ttl)
	return spread, found, nil
}

func (c *SpreadCache) Close() { c.cache.Close() }
