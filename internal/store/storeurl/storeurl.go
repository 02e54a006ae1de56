// Package storeurl opens a store.Store from a URL.
//
// Supported schemes:
//
//	mem://                       in-memory, private to the process
//	file://./dir, file:///dir    diskstore rooted at dir
//	sqlite://./x.db              sqlitestore database file
//	s3://bucket/prefix           s3store (query: region, endpoint)
//	gs://bucket/prefix           gcsstore
//
// Any URL may carry cache=N to wrap the store in an N-entry LRU
// read-through cache. Only do so when this process is the sole writer.
package storeurl

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/discochess/blobcache/internal/codec"
	"github.com/discochess/blobcache/internal/codec/gzipcodec"
	"github.com/discochess/blobcache/internal/codec/noopcodec"
	"github.com/discochess/blobcache/internal/codec/zstdcodec"
	"github.com/discochess/blobcache/internal/stats"
	"github.com/discochess/blobcache/internal/store"
	"github.com/discochess/blobcache/internal/store/cachedstore"
	"github.com/discochess/blobcache/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/blobcache/internal/store/cachedstore/memory"
	"github.com/discochess/blobcache/internal/store/diskstore"
	"github.com/discochess/blobcache/internal/store/gcsstore"
	"github.com/discochess/blobcache/internal/store/memstore"
	"github.com/discochess/blobcache/internal/store/s3store"
	"github.com/discochess/blobcache/internal/store/sqlitestore"
)

var (
	// ErrUnsupportedScheme indicates a URL scheme with no store behind it.
	ErrUnsupportedScheme = errors.New("storeurl: unsupported scheme")

	// ErrUnknownCodec indicates a codec name that is not registered.
	ErrUnknownCodec = errors.New("storeurl: unknown codec")
)

// Option configures Open.
type Option func(*options)

type options struct {
	codec codec.Codec
	stats stats.Collector
}

// WithCodec sets the codec for stores that compress entries.
// The default is no compression.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCacheStats sets the collector for the optional LRU cache.
func WithCacheStats(c stats.Collector) Option {
	return func(o *options) {
		o.stats = c
	}
}

// CodecByName returns the codec registered under name. Compressing codecs
// accept a level suffix: "gzip:9" (gzip levels -2..9) or "zstd:19" (zstd
// levels 1..22).
func CodecByName(name string) (codec.Codec, error) {
	base, levelText, hasLevel := strings.Cut(strings.ToLower(strings.TrimSpace(name)), ":")
	level := 0
	if hasLevel {
		n, err := strconv.Atoi(levelText)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: bad level", ErrUnknownCodec, name)
		}
		level = n
	}

	switch base {
	case "", "none":
		if hasLevel {
			return nil, fmt.Errorf("%w: %q: codec takes no level", ErrUnknownCodec, name)
		}
		return noopcodec.New(), nil
	case "gzip":
		if !hasLevel {
			return gzipcodec.New(), nil
		}
		if level < gzip.HuffmanOnly || level > gzip.BestCompression {
			return nil, fmt.Errorf("%w: %q: level out of range", ErrUnknownCodec, name)
		}
		return gzipcodec.NewLevel(level), nil
	case "zstd":
		if !hasLevel {
			return zstdcodec.New(), nil
		}
		if level < 1 || level > 22 {
			return nil, fmt.Errorf("%w: %q: level out of range", ErrUnknownCodec, name)
		}
		return zstdcodec.NewLevel(zstd.EncoderLevelFromZstd(level)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// Open creates the store described by rawURL.
func Open(ctx context.Context, rawURL string, opts ...Option) (store.Store, error) {
	o := options{
		codec: noopcodec.New(),
		stats: stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing store URL: %w", err)
	}
	query := u.Query()

	st, err := open(ctx, u, query, o)
	if err != nil {
		return nil, err
	}

	if size := query.Get("cache"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("parsing cache size %q: %w", size, err)
		}
		strategy, err := lru.New(n)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("creating LRU strategy: %w", err)
		}
		st = cachedstore.New(st, memory.New(strategy, o.stats))
	}
	return st, nil
}

func open(ctx context.Context, u *url.URL, query url.Values, o options) (store.Store, error) {
	switch u.Scheme {
	case "mem":
		return memstore.New(), nil
	case "file":
		path := localPath(u)
		if path == "" {
			return nil, fmt.Errorf("file store URL %q has no path", u.String())
		}
		return diskstore.New(path, o.codec)
	case "sqlite":
		path := localPath(u)
		if path == "" {
			return nil, fmt.Errorf("sqlite store URL %q has no path", u.String())
		}
		return sqlitestore.Open(path)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("s3 store URL %q has no bucket", u.String())
		}
		s3opts := []s3store.Option{s3store.WithPrefix(strings.TrimPrefix(u.Path, "/"))}
		if region := query.Get("region"); region != "" {
			s3opts = append(s3opts, s3store.WithRegion(region))
		}
		if endpoint := query.Get("endpoint"); endpoint != "" {
			s3opts = append(s3opts, s3store.WithEndpoint(endpoint))
		}
		return s3store.New(ctx, u.Host, o.codec, s3opts...)
	case "gs":
		if u.Host == "" {
			return nil, fmt.Errorf("gs store URL %q has no bucket", u.String())
		}
		return gcsstore.New(ctx, u.Host, o.codec, gcsstore.WithPrefix(strings.TrimPrefix(u.Path, "/")))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// FilePath returns the directory named by a file:// URL.
func FilePath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	path := localPath(u)
	return path, path != ""
}

// localPath joins host and path so that both file://./dir and
// file:///abs/dir name the expected directory.
func localPath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host + u.Path
}
