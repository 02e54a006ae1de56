package blobcache_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/blobcache"
	"github.com/discochess/blobcache/internal/codec/gzipcodec"
	"github.com/discochess/blobcache/internal/codec/zstdcodec"
	"github.com/discochess/blobcache/internal/lockset"
	"github.com/discochess/blobcache/internal/store"
	"github.com/discochess/blobcache/internal/store/cachedstore"
	"github.com/discochess/blobcache/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/blobcache/internal/store/cachedstore/memory"
	"github.com/discochess/blobcache/internal/store/diskstore"
	"github.com/discochess/blobcache/internal/store/memstore"
	"github.com/discochess/blobcache/internal/store/sqlitestore"
)

func openStores(t *testing.T) map[string]func() store.Store {
	t.Helper()
	dir := t.TempDir()

	return map[string]func() store.Store{
		"mem": func() store.Store { return memstore.New() },
		"disk": func() store.Store {
			st, err := diskstore.New(filepath.Join(dir, "disk"), zstdcodec.New())
			require.NoError(t, err)
			return st
		},
		"sqlite": func() store.Store {
			st, err := sqlitestore.Open(filepath.Join(dir, "cache.db"))
			require.NoError(t, err)
			return st
		},
		"cached": func() store.Store {
			base, err := diskstore.New(filepath.Join(dir, "cached"), gzipcodec.New())
			require.NoError(t, err)
			strategy, err := lru.New(4)
			require.NoError(t, err)
			return cachedstore.New(base, memory.New(strategy, nil))
		},
	}
}

func TestClient_Stores(t *testing.T) {
	for name, open := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			client, err := blobcache.New(blobcache.WithStore(open()))
			require.NoError(t, err)
			defer client.Close()
			ctx := context.Background()

			err = client.SetAll(ctx, map[string]any{
				"name":  "blob",
				"count": 3,
				"big":   int64(9007199254740993),
				"ok":    true,
			})
			require.NoError(t, err)

			raw, err := client.Raw(ctx)
			require.NoError(t, err)
			assert.Equal(t, `{"big":9007199254740993,"count":3,"name":"blob","ok":true}`, raw)

			big, ok, err := client.Int64(ctx, "big")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, int64(9007199254740993), big)

			require.NoError(t, client.Remove(ctx, "count"))
			found, err := client.Contains(ctx, "count")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, client.Clear(ctx))
			keys, err := client.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestClient_PersistsAcrossClients(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	open := func() *blobcache.Client {
		st, err := diskstore.New(dir, zstdcodec.New())
		require.NoError(t, err)
		client, err := blobcache.New(blobcache.WithStore(st))
		require.NoError(t, err)
		return client
	}

	writer := open()
	require.NoError(t, writer.Set(ctx, "greeting", "hello"))
	writer.Close()

	reader := open()
	defer reader.Close()
	got, ok, err := reader.String(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
}

// Two clients on the same store identity write disjoint keys concurrently;
// every write must survive the read-modify-write cycle.
func TestClient_ConcurrentWriters(t *testing.T) {
	const perWriter = 25

	tests := []struct {
		name string
		open func(t *testing.T) (store.Store, store.Store)
		// separate lock sets force the cross-process lock to do the work
		locks func() (*lockset.Set, *lockset.Set)
	}{
		{
			name: "shared memstore",
			open: func(t *testing.T) (store.Store, store.Store) {
				mem := memstore.New()
				return mem, mem
			},
			locks: func() (*lockset.Set, *lockset.Set) {
				set := lockset.New()
				return set, set
			},
		},
		{
			name: "disk flock",
			open: func(t *testing.T) (store.Store, store.Store) {
				dir := t.TempDir()
				a, err := diskstore.New(dir, zstdcodec.New())
				require.NoError(t, err)
				b, err := diskstore.New(dir, zstdcodec.New())
				require.NoError(t, err)
				return a, b
			},
			locks: func() (*lockset.Set, *lockset.Set) {
				return lockset.New(), lockset.New()
			},
		},
		{
			name: "sqlite flock",
			open: func(t *testing.T) (store.Store, store.Store) {
				path := filepath.Join(t.TempDir(), "cache.db")
				a, err := sqlitestore.Open(path)
				require.NoError(t, err)
				b, err := sqlitestore.Open(path)
				require.NoError(t, err)
				return a, b
			},
			locks: func() (*lockset.Set, *lockset.Set) {
				return lockset.New(), lockset.New()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stA, stB := tt.open(t)
			locksA, locksB := tt.locks()

			a, err := blobcache.New(blobcache.WithStore(stA), blobcache.WithLocks(locksA))
			require.NoError(t, err)
			b, err := blobcache.New(blobcache.WithStore(stB), blobcache.WithLocks(locksB))
			require.NoError(t, err)

			ctx := context.Background()
			g, ctx := errgroup.WithContext(ctx)
			for _, w := range []struct {
				client *blobcache.Client
				prefix string
			}{{a, "a"}, {b, "b"}} {
				g.Go(func() error {
					for i := range perWriter {
						if err := w.client.Set(ctx, fmt.Sprintf("%s%02d", w.prefix, i), i); err != nil {
							return err
						}
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			keys, err := a.Keys(context.Background())
			require.NoError(t, err)
			assert.Len(t, keys, 2*perWriter)
		})
	}
}
