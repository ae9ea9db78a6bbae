// Package cache provides a thread-safe LRU cache bounded by the total cost
// of its entries rather than their number.
//
// Every cache keeps Statistics. Prometheus metrics are added with
// WithMetrics.
package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("markscan.cache")

// ErrInvalidCost is returned by New for a non-positive cost limit.
var ErrInvalidCost = errors.New("cache: cost limit must be positive")

type entry[V any] struct {
	key   string
	value V
	cost  int
}

// Cache is an LRU cache whose entries carry a caller-assigned cost. Adding
// an entry evicts the least recently used entries until the total cost
// fits under the limit.
type Cache[V any] struct {
	mu      sync.Mutex
	maxCost int
	cost    int
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	stats   *Statistics
	metrics *cacheMetrics
	onEvict func(key string, cost int)
}

type options struct {
	registry prometheus.Registerer
	name     string
	onEvict  func(key string, cost int)
}

// Option configures a Cache.
type Option func(*options)

// WithMetrics registers Prometheus collectors for the cache with reg,
// labelled with name.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(o *options) {
		o.registry = reg
		o.name = name
	}
}

// WithEvictCallback calls fn for every entry evicted to make room for a
// new one. fn runs with the cache locked and must not call back into it.
func WithEvictCallback(fn func(key string, cost int)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// New returns an empty cache holding entries with a total cost of at most
// maxCost.
func New[V any](maxCost int, opts ...Option) (*Cache[V], error) {
	if maxCost <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, maxCost)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		maxCost: maxCost,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   NewStatistics(),
		onEvict: o.onEvict,
	}
	if o.registry != nil {
		m, err := newCacheMetrics(o.registry, o.name)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}
	return c, nil
}

// Get returns the value stored under key and marks it recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.miss()
		c.metrics.recordMiss()
		var zero V
		return zero, false
	}

	c.order.MoveToFront(el)
	c.stats.hit()
	c.metrics.recordHit()
	return el.Value.(*entry[V]).value, true
}

// Set stores value under key. It reports false, storing nothing, when cost
// is negative or larger than the cache's limit.
func (c *Cache[V]) Set(key string, value V, cost int) bool {
	if cost < 0 || cost > c.maxCost {
		log.Debugf("rejecting entry %q: cost %d outside [0, %d]", key, cost, c.maxCost)
		c.stats.reject()
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	for c.cost+cost > c.maxCost {
		c.evictOldest()
	}

	el := c.order.PushFront(&entry[V]{key: key, value: value, cost: cost})
	c.items[key] = el
	c.cost += cost

	c.stats.set()
	c.metrics.recordSize(len(c.items), c.cost)
	return true
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	c.metrics.recordSize(len(c.items), c.cost)
	return true
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.cost = 0
	c.metrics.recordSize(0, 0)
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cost returns the total cost of all entries.
func (c *Cache[V]) Cost() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// MaxCost returns the cost limit.
func (c *Cache[V]) MaxCost() int {
	return c.maxCost
}

// Stats returns the cache's statistics.
func (c *Cache[V]) Stats() *Statistics {
	return c.stats
}

func (c *Cache[V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	e := c.removeElement(el)
	c.stats.eviction()
	c.metrics.recordEviction()
	if c.onEvict != nil {
		c.onEvict(e.key, e.cost)
	}
}

func (c *Cache[V]) removeElement(el *list.Element) *entry[V] {
	e := c.order.Remove(el).(*entry[V])
	delete(c.items, e.key)
	c.cost -= e.cost
	return e
}
