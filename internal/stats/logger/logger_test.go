package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/discochess/blobcache/internal/stats"
)

func TestCollector_LogsMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(zap.New(core))

	c.IncCounter(stats.MetricWrites, 2)
	c.SetGauge(stats.MetricDocumentKeys, 7)
	c.ObserveHistogram(stats.MetricPersistSeconds, 0.25)

	entries := logs.All()
	require.Len(t, entries, 3)

	wantMsgs := []string{"counter", "gauge", "histogram"}
	for i, e := range entries {
		assert.Equal(t, wantMsgs[i], e.Message, "entry %d", i)
		assert.Equal(t, zapcore.DebugLevel, e.Level, "entry %d", i)
	}

	assert.Equal(t, int64(7), entries[1].ContextMap()["value"])
}

func TestCollector_Level(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewLevel(zap.New(core), zapcore.InfoLevel)

	c.IncCounter(stats.MetricReads, 1)
	assert.Equal(t, 1, logs.Len())

	quiet := New(zap.New(core))
	quiet.IncCounter(stats.MetricReads, 1)
	assert.Equal(t, 1, logs.Len(), "debug-level collector logged through an info-level core")
}

func TestNew_NilLogger(t *testing.T) {
	c := New(nil)
	assert.NotPanics(t, func() { c.IncCounter(stats.MetricReads, 1) })
}
