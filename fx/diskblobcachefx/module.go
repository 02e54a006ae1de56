// Package diskblobcachefx provides an fx module for a disk-backed blobcache client.
package diskblobcachefx

import (
	"context"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/blobcache"
	"github.com/discochess/blobcache/internal/config"
	"github.com/discochess/blobcache/internal/stats"
	"github.com/discochess/blobcache/internal/stats/logger"
	"github.com/discochess/blobcache/internal/stats/otelstats"
	"github.com/discochess/blobcache/internal/stats/prometheus"
	"github.com/discochess/blobcache/internal/store"
	"github.com/discochess/blobcache/internal/store/cachedstore"
	"github.com/discochess/blobcache/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/blobcache/internal/store/cachedstore/memory"
	"github.com/discochess/blobcache/internal/store/diskstore"
	"github.com/discochess/blobcache/internal/store/storeurl"
)

// Config holds configuration for the disk-backed blobcache client.
type Config struct {
	// Dir is the directory holding the cache documents.
	Dir string

	// Codec names the entry compression: none, gzip or zstd.
	// Default is none.
	Codec string

	// StorageKey is the key the document is persisted under.
	// Default is blobcache.DefaultStorageKey.
	StorageKey string

	// Profile is strict or lenient. Default is strict.
	Profile string

	// CacheSize enables an LRU read cache of that many documents.
	// Leave at 0 unless this process is the only writer to Dir.
	CacheSize int
}

// ConfigFromEnv builds a Config from the BLOBCACHE_* environment variables.
// BLOBCACHE_STORE must be a file:// URL.
func ConfigFromEnv() (Config, error) {
	env, err := config.Load()
	if err != nil {
		return Config{}, err
	}
	dir, ok := storeurl.FilePath(env.Store)
	if !ok {
		return Config{}, fmt.Errorf("BLOBCACHE_STORE %q is not a file:// URL", env.Store)
	}
	return Config{
		Dir:        dir,
		Codec:      env.Codec,
		StorageKey: env.StorageKey,
		Profile:    env.Profile,
	}, nil
}

// Module provides a disk-backed blobcache client.
// Requires a Config and a *zap.Logger to be provided. Metrics go to a
// prometheus.Registerer if one is provided, else to a metric.MeterProvider
// if one is provided, else to the logger at debug level.
var Module = fx.Module("diskblobcache",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

// StatsParams holds dependencies for choosing the stats collector.
type StatsParams struct {
	fx.In

	Logger        *zap.Logger
	Registerer    prom.Registerer      `optional:"true"`
	MeterProvider metric.MeterProvider `optional:"true"`
}

func newStatsCollector(p StatsParams) stats.Collector {
	switch {
	case p.Registerer != nil:
		return prometheus.New(p.Registerer)
	case p.MeterProvider != nil:
		return otelstats.New(p.MeterProvider.Meter("github.com/discochess/blobcache"))
	default:
		return logger.New(p.Logger.Named("blobcache.stats"))
	}
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *blobcache.Client
}

func newClient(p Params) (Result, error) {
	c, err := storeurl.CodecByName(p.Config.Codec)
	if err != nil {
		return Result{}, err
	}
	profile, err := blobcache.ParseProfile(p.Config.Profile)
	if err != nil {
		return Result{}, err
	}

	var st store.Store
	st, err = diskstore.New(p.Config.Dir, c)
	if err != nil {
		return Result{}, err
	}

	if p.Config.CacheSize > 0 {
		lruStrategy, err := lru.New(p.Config.CacheSize)
		if err != nil {
			return Result{}, err
		}
		st = cachedstore.New(st, memory.New(lruStrategy, p.Collector))
	}

	opts := []blobcache.Option{
		blobcache.WithStore(st),
		blobcache.WithProfile(profile),
		blobcache.WithStats(p.Collector),
		blobcache.WithLogger(p.Logger.Named("blobcache")),
	}
	if p.Config.StorageKey != "" {
		opts = append(opts, blobcache.WithStorageKey(p.Config.StorageKey))
	}

	client, err := blobcache.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
