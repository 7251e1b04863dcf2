package matcher

import (
	"context"
	"sync"
	"time"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
)

// mappingCache holds a snapshot of the whole mapping table so that bulk
// suggestion passes don't hit the store once per row. Staleness is bounded
// by TTL, not by locking: readers get the snapshot that was current when it
// was loaded, and mutations invalidate it.
type mappingCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	load    func(ctx context.Context) ([]models.NameMapping, error)
	byKey   map[string]models.NameMapping
	fetched time.Time
}

func newMappingCache(ttl time.Duration, now func() time.Time, load func(ctx context.Context) ([]models.NameMapping, error)) *mappingCache {
	if now == nil {
		now = time.Now
	}
	return &mappingCache{ttl: ttl, now: now, load: load}
}

// snapshot returns the cached table, refreshing it when missing or expired.
func (c *mappingCache) snapshot(ctx context.Context) (map[string]models.NameMapping, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.byKey != nil && c.now().Sub(c.fetched) < c.ttl {
		return c.byKey, nil
	}

	mappings, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.NameMapping, len(mappings))
	for _, m := range mappings {
		byKey[m.OriginalName] = m
	}
	c.byKey = byKey
	c.fetched = c.now()
	return byKey, nil
}

// invalidate drops the snapshot so the next read refreshes.
func (c *mappingCache) invalidate() {
	c.mu.Lock()
	c.byKey = nil
	c.mu.Unlock()
}
