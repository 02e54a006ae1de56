// Package otelstats provides an OpenTelemetry-based stats collector.
package otelstats

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/discochess/blobcache/internal/stats"
)

// Collector implements stats.Collector with OpenTelemetry instruments.
// Gauges are recorded as synchronous Int64Gauge instruments.
type Collector struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Int64Gauge
	histograms map[string]metric.Float64Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a collector that creates instruments on meter.
func New(meter metric.Meter) *Collector {
	return &Collector{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Int64Gauge),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// IncCounter adds delta to a counter instrument.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	counter, ok := c.counters[name]
	if !ok {
		var err error
		counter, err = c.meter.Int64Counter(name)
		if err != nil {
			c.mu.Unlock()
			return
		}
		c.counters[name] = counter
	}
	c.mu.Unlock()

	counter.Add(context.Background(), delta)
}

// SetGauge records value on a gauge instrument.
func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	gauge, ok := c.gauges[name]
	if !ok {
		var err error
		gauge, err = c.meter.Int64Gauge(name)
		if err != nil {
			c.mu.Unlock()
			return
		}
		c.gauges[name] = gauge
	}
	c.mu.Unlock()

	gauge.Record(context.Background(), value)
}

// ObserveHistogram records value on a histogram instrument.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.mu.Lock()
	hist, ok := c.histograms[name]
	if !ok {
		var err error
		opts := []metric.Float64HistogramOption{}
		if name == stats.MetricPersistSeconds {
			opts = append(opts, metric.WithUnit("s"))
		}
		hist, err = c.meter.Float64Histogram(name, opts...)
		if err != nil {
			c.mu.Unlock()
			return
		}
		c.histograms[name] = hist
	}
	c.mu.Unlock()

	hist.Record(context.Background(), value)
}
