// Package memoryblobcachefx provides an fx module for an in-memory blobcache client.
// Useful for testing.
package memoryblobcachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/blobcache"
	"github.com/discochess/blobcache/internal/lockset"
	"github.com/discochess/blobcache/internal/stats"
	"github.com/discochess/blobcache/internal/stats/logger"
	"github.com/discochess/blobcache/internal/store/memstore"
)

// Module provides an in-memory blobcache client for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memoryblobcache",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("blobcache.stats"))
}

// newMemStore is exposed to the graph so tests can seed documents.
func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *blobcache.Client
}

func newClient(p Params) (Result, error) {
	client, err := blobcache.New(
		blobcache.WithStore(p.Store),
		blobcache.WithLocks(lockset.New()),
		blobcache.WithStats(p.Collector),
		blobcache.WithLogger(p.Logger.Named("blobcache")),
	)
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
