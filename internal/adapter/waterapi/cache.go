package waterapi

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/observability"
)

// Source is the pair of fetches a CachedSource decorates.
type Source interface {
	FetchStationSnapshot(ctx context.Context) (domain.Snapshot, error)
	FetchStationHistory(ctx context.Context, ref domain.StationRef) (domain.StationHistory, error)
}

// CachedSource keeps recently fetched station histories in an in-memory LRU
// so reopening a station within ttl skips the round trip. Snapshots always
// go to the inner source.
type CachedSource struct {
	inner   Source
	ttl     time.Duration
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a history cache decorator around a source.
func NewCachedSource(inner Source, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchStationSnapshot(ctx context.Context) (domain.Snapshot, error) {
	return c.inner.FetchStationSnapshot(ctx)
}

func (c *CachedSource) FetchStationHistory(ctx context.Context, ref domain.StationRef) (domain.StationHistory, error) {
	now := domain.Now()
	if h, ok := c.cache.get(ref, now); ok {
		c.metrics.HistoryCache.WithLabelValues("hit").Inc()
		return h, nil
	}
	c.metrics.HistoryCache.WithLabelValues("miss").Inc()

	h, err := c.inner.FetchStationHistory(ctx, ref)
	if err != nil {
		return h, err
	}
	// Empty histories are not cached so a station that starts reporting shows up on the next open.
	if len(h.Readings) > 0 {
		c.cache.put(ref, h, now.Add(c.ttl))
	}
	return h, nil
}

// lruCache is a thread-safe LRU of station histories with per-entry expiry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[domain.StationRef]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     domain.StationRef
	value   domain.StationHistory
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[domain.StationRef]*entry),
	}
}

func (c *lruCache) get(key domain.StationRef, now time.Time) (domain.StationHistory, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.StationHistory{}, false
	}
	if !now.Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return domain.StationHistory{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key domain.StationRef, value domain.StationHistory, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
