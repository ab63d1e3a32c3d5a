package rolimons

import (
	"context"
	"sync"
	"time"

	"catalog-proxy-api/internal/model"
)

// DefaultTTL is how long a price-index snapshot stays fresh.
const DefaultTTL = 600 * time.Second

// snapshot is one immutable bulk download of the price index. It is
// replaced as a whole on refresh, never mutated in place.
type snapshot struct {
	items     map[string]model.PriceRecord
	fetchedAt time.Time
}

// Cache serves point lookups from a TTL-bounded price-index snapshot.
type Cache struct {
	mu     sync.Mutex
	client *Client
	ttl    time.Duration
	snap   *snapshot
}

// NewCache creates a price-index cache on top of the given client.
func NewCache(client *Client, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// PriceFor returns the RAP for an item id. ok is false when the index has
// no usable price for it (unknown id, or RAP missing/non-positive); that
// is not an error. A refresh failure is an error, and leaves any previous
// snapshot untouched.
func (c *Cache) PriceFor(ctx context.Context, itemID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale() {
		items, err := c.client.FetchSnapshot(ctx)
		if err != nil {
			return 0, false, err
		}
		c.snap = &snapshot{items: items, fetchedAt: time.Now()}
	}

	rec, found := c.snap.items[itemID]
	if !found || rec.RAP <= 0 {
		return 0, false, nil
	}
	return rec.RAP, true, nil
}

// stale reports whether the snapshot must be refreshed before serving.
// Caller must hold the lock.
func (c *Cache) stale() bool {
	return c.snap == nil || len(c.snap.items) == 0 || time.Since(c.snap.fetchedAt) > c.ttl
}

// Info returns the current snapshot size and fetch time for diagnostics.
func (c *Cache) Info() (size int, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap == nil {
		return 0, time.Time{}
	}
	return len(c.snap.items), c.snap.fetchedAt
}
