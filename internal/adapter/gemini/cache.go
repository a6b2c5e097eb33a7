package gemini

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
)

// CachedNarrator wraps a Narrator with an in-memory LRU cache keyed by the
// exact impact parameters.
type CachedNarrator struct {
	inner   domain.Narrator
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedNarrator creates a cache decorator around a narrator.
func NewCachedNarrator(inner domain.Narrator, maxEntries int, metrics *observability.Metrics) *CachedNarrator {
	return &CachedNarrator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedNarrator) Narrate(ctx context.Context, params domain.Params, calc domain.ImpactCalculations) (string, error) {
	key := fmt.Sprintf("%g|%g|%g", params.Diameter, params.Speed, params.Angle)
	if narrative, ok := c.cache.get(key); ok {
		c.metrics.NarrativeCache.WithLabelValues("hit").Inc()
		return narrative, nil
	}
	c.metrics.NarrativeCache.WithLabelValues("miss").Inc()

	narrative, err := c.inner.Narrate(ctx, params, calc)
	if err != nil {
		return "", err
	}
	if narrative != "" {
		c.cache.put(key, narrative)
	}
	return narrative, nil
}

// lruCache is a mutex-guarded LRU of narratives. Front of order is the most
// recently used entry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List
	entries    map[string]*list.Element
}

type entry struct {
	key   string
	value string
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
