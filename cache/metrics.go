package cache

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics mirrors Statistics as Prometheus collectors. A nil
// *cacheMetrics records nothing.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
	cost      prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer, name string) (*cacheMetrics, error) {
	labels := prometheus.Labels{"cache": name}
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "markscan",
			Subsystem:   "cache",
			Name:        "hits_total",
			ConstLabels: labels,
			Help:        "Total number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "markscan",
			Subsystem:   "cache",
			Name:        "misses_total",
			ConstLabels: labels,
			Help:        "Total number of cache misses",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "markscan",
			Subsystem:   "cache",
			Name:        "evictions_total",
			ConstLabels: labels,
			Help:        "Total number of entries evicted to stay under the cost limit",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "markscan",
			Subsystem:   "cache",
			Name:        "entries",
			ConstLabels: labels,
			Help:        "Current number of entries in the cache",
		}),
		cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "markscan",
			Subsystem:   "cache",
			Name:        "cost",
			ConstLabels: labels,
			Help:        "Current total cost of entries in the cache",
		}),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.evictions, m.entries, m.cost} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register cache metrics for %q: %w", name, err)
		}
	}
	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) recordEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *cacheMetrics) recordSize(entries, cost int) {
	if m != nil {
		m.entries.Set(float64(entries))
		m.cost.Set(float64(cost))
	}
}
