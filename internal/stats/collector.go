// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Client metrics.
	MetricReads          = "blobcache_reads_total"
	MetricWrites         = "blobcache_writes_total"
	MetricRemoves        = "blobcache_removes_total"
	MetricClears         = "blobcache_clears_total"
	MetricFormatErrors   = "blobcache_format_errors_total"
	MetricDocumentBytes  = "blobcache_document_bytes"
	MetricDocumentKeys   = "blobcache_document_keys"
	MetricPersistSeconds = "blobcache_persist_seconds"

	// Cache metrics.
	MetricCacheHits   = "blobcache_cache_hits_total"
	MetricCacheMisses = "blobcache_cache_misses_total"
	MetricCacheSize   = "blobcache_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
