package geoip

import (
	"context"
	"sync"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/observability"
)

const publicIPKey = "public-ip"

// CachedIPResolver memoizes the public IP for the life of the process.
// Errors are not cached so a later submission retries the lookup.
type CachedIPResolver struct {
	inner   domain.IPResolver
	cache   *lruCache[string]
	metrics *observability.Metrics
}

// NewCachedIPResolver creates a memoizing decorator around an IPResolver.
func NewCachedIPResolver(inner domain.IPResolver, metrics *observability.Metrics) *CachedIPResolver {
	return &CachedIPResolver{
		inner:   inner,
		cache:   newLRUCache[string](1),
		metrics: metrics,
	}
}

func (c *CachedIPResolver) PublicIP(ctx context.Context) (string, error) {
	if ip, ok := c.cache.get(publicIPKey); ok {
		c.metrics.GeoCache.WithLabelValues(stepIP, "hit").Inc()
		return ip, nil
	}
	c.metrics.GeoCache.WithLabelValues(stepIP, "miss").Inc()

	ip, err := c.inner.PublicIP(ctx)
	if err != nil {
		return "", err
	}
	c.cache.put(publicIPKey, ip)
	return ip, nil
}

// located is a memoized Locate answer, including "not found".
type located struct {
	coords domain.Coordinates
	found  bool
}

// CachedLocator memoizes coordinates per IP address in an LRU cache. Both
// found and not-found answers are cached; errors are not.
type CachedLocator struct {
	inner   domain.Locator
	cache   *lruCache[located]
	metrics *observability.Metrics
}

// NewCachedLocator creates a memoizing decorator around a Locator.
func NewCachedLocator(inner domain.Locator, maxEntries int, metrics *observability.Metrics) *CachedLocator {
	return &CachedLocator{
		inner:   inner,
		cache:   newLRUCache[located](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLocator) Locate(ctx context.Context, ip string) (domain.Coordinates, bool, error) {
	if v, ok := c.cache.get(ip); ok {
		c.metrics.GeoCache.WithLabelValues(stepLocation, "hit").Inc()
		return v.coords, v.found, nil
	}
	c.metrics.GeoCache.WithLabelValues(stepLocation, "miss").Inc()

	coords, found, err := c.inner.Locate(ctx, ip)
	if err != nil {
		return coords, found, err
	}
	c.cache.put(ip, located{coords: coords, found: found})
	return coords, found, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
