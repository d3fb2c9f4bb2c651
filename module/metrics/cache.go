package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finalitylabs/qcert/module"
)

// CacheCollector reports database read cache usage to prometheus.
type CacheCollector struct {
	entries   *prometheus.GaugeVec
	hits      *prometheus.CounterVec
	notFounds *prometheus.CounterVec
	misses    *prometheus.CounterVec
}

var _ module.CacheMetrics = (*CacheCollector)(nil)

func NewCacheCollector(registerer prometheus.Registerer) *CacheCollector {
	cc := &CacheCollector{
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "entries_total",
			Namespace: namespaceStorage,
			Subsystem: subsystemBadger,
			Help:      "the number of entries in the storage cache",
		}, []string{LabelResource}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "hits_total",
			Namespace: namespaceStorage,
			Subsystem: subsystemBadger,
			Help:      "the number of hits for the storage cache",
		}, []string{LabelResource}),
		notFounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "notfound_total",
			Namespace: namespaceStorage,
			Subsystem: subsystemBadger,
			Help:      "the number of times the queried item was not found in either cache or database",
		}, []string{LabelResource}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "misses_total",
			Namespace: namespaceStorage,
			Subsystem: subsystemBadger,
			Help:      "the number of times the queried item was not found in the cache but in the database",
		}, []string{LabelResource}),
	}
	registerer.MustRegister(cc.entries, cc.hits, cc.notFounds, cc.misses)
	return cc
}

// CacheEntries records the number of entries cached for the resource.
func (cc *CacheCollector) CacheEntries(resource string, entries uint) {
	cc.entries.With(prometheus.Labels{LabelResource: resource}).Set(float64(entries))
}

// CacheHit records the number of cache hits for the resource.
func (cc *CacheCollector) CacheHit(resource string) {
	cc.hits.With(prometheus.Labels{LabelResource: resource}).Inc()
}

// CacheNotFound records the number of times the queried item was not found in either cache
// or database.
func (cc *CacheCollector) CacheNotFound(resource string) {
	cc.notFounds.With(prometheus.Labels{LabelResource: resource}).Inc()
}

// CacheMiss report the number of times the queried item is not found in the cache, but found in the database.
func (cc *CacheCollector) CacheMiss(resource string) {
	cc.misses.With(prometheus.Labels{LabelResource: resource}).Inc()
}
