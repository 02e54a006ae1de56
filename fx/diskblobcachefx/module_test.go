package diskblobcachefx

import (
	"context"
	"path/filepath"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/blobcache"
	"github.com/discochess/blobcache/internal/stats"
)

func TestModule(t *testing.T) {
	dir := t.TempDir()
	var client *blobcache.Client

	app := fxtest.New(t,
		fx.Supply(zap.NewNop(), Config{Dir: dir, Codec: "zstd", Profile: "lenient", CacheSize: 2}),
		Module,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, blobcache.Lenient, client.Profile())

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "a", "x"))
	got, ok, err := client.String(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	matches, err := filepath.Glob(filepath.Join(dir, "*.json.zst"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestModule_Registerer(t *testing.T) {
	registry := prom.NewRegistry()
	var client *blobcache.Client

	app := fxtest.New(t,
		fx.Supply(zap.NewNop(), Config{Dir: t.TempDir()}),
		fx.Provide(func() prom.Registerer { return registry }),
		Module,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, client.Set(context.Background(), "a", 1))

	families, err := registry.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == stats.MetricWrites {
			found = true
		}
	}
	assert.True(t, found, "metric %s not registered", stats.MetricWrites)
}

func TestModule_MeterProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var client *blobcache.Client

	app := fxtest.New(t,
		fx.Supply(zap.NewNop(), Config{Dir: t.TempDir()}),
		fx.Provide(func() metric.MeterProvider { return mp }),
		Module,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, client.Set(context.Background(), "a", 1))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == stats.MetricWrites {
				found = true
			}
		}
	}
	assert.True(t, found, "metric %s not recorded", stats.MetricWrites)
}

func TestModule_BadCodec(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(zap.NewNop(), Config{Dir: t.TempDir(), Codec: "brotli"}),
		Module,
		fx.Invoke(func(*blobcache.Client) {}),
	)
	assert.ErrorContains(t, app.Err(), "brotli")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BLOBCACHE_STORE", "file:///var/cache/app")
	t.Setenv("BLOBCACHE_CODEC", "gzip")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/app", cfg.Dir)
	assert.Equal(t, "gzip", cfg.Codec)
	assert.Equal(t, blobcache.DefaultStorageKey, cfg.StorageKey)

	t.Setenv("BLOBCACHE_STORE", "mem://")
	_, err = ConfigFromEnv()
	assert.Error(t, err, "ConfigFromEnv() with mem://")
}
