// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/blobcache/internal/stats"
)

// Collector implements stats.Collector using Prometheus metrics.
// Metrics are registered lazily on first use.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// PersistBuckets are the histogram buckets used for persist latency, in seconds.
var PersistBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		buckets := prometheus.DefBuckets
		if name == stats.MetricPersistSeconds {
			buckets = PersistBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help(name), Buckets: buckets})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric cached under name, registering a new one
// built by create if needed. A metric already registered under the same name
// by someone else is adopted.
func getOrCreate[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	c.mu.RLock()
	m, ok := cache[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if m, ok = cache[name]; ok {
		return m
	}

	m = create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
		// Otherwise keep the unregistered metric; updates still work.
	}
	cache[name] = m
	return m
}

var helpText = map[string]string{
	stats.MetricReads:          "Cache read operations.",
	stats.MetricWrites:         "Documents persisted by set, setAll and remove.",
	stats.MetricRemoves:        "Keys removed from the document.",
	stats.MetricClears:         "Backing store clears.",
	stats.MetricFormatErrors:   "Stored data that could not be decoded or coerced.",
	stats.MetricDocumentBytes:  "Size of the last loaded or persisted document.",
	stats.MetricDocumentKeys:   "Keys in the last loaded or persisted document.",
	stats.MetricPersistSeconds: "Time spent writing the document to the backing store.",
	stats.MetricCacheHits:      "Document cache hits.",
	stats.MetricCacheMisses:    "Document cache misses.",
	stats.MetricCacheSize:      "Documents held in the document cache.",
}

func help(name string) string {
	if h, ok := helpText[name]; ok {
		return h
	}
	return name
}
