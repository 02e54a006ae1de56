// Package blobcache provides a typed key-value cache persisted as a single
// JSON document in a backing store.
//
// Every call reads the current document from the store, and every write
// merges into it and persists the whole document again. Numbers keep their
// exact JSON text, so 64-bit integers survive the round trip.
//
// Example usage:
//
//	st, err := diskstore.New("/var/lib/myapp", noopcodec.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := blobcache.New(blobcache.WithStore(st))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Set(ctx, "retries", 3); err != nil {
//	    log.Fatal(err)
//	}
//	n, ok, err := client.Int(ctx, "retries")
package blobcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/discochess/blobcache/internal/document"
	"github.com/discochess/blobcache/internal/lockset"
	"github.com/discochess/blobcache/internal/stats"
	"github.com/discochess/blobcache/internal/store"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotInitialized indicates a strict client used before a store was bound.
	ErrNotInitialized = errors.New("blobcache: not initialized")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("blobcache: client closed")

	// ErrInvalidArgument indicates a nil entry map, a key that is not valid
	// UTF-8, or an unencodable value.
	ErrInvalidArgument = errors.New("blobcache: invalid argument")

	// ErrFormat indicates persisted text or a stored value that cannot be
	// interpreted as requested.
	ErrFormat = document.ErrFormat
)

// Client is a typed key-value cache over one document in a backing store.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	profile    Profile
	storageKey string
	locks      *lockset.Set
	stats      stats.Collector
	logger     *zap.Logger

	mu     sync.RWMutex
	store  store.Store
	closed atomic.Bool
}

// New creates a new Client with the given options.
// A client created without WithStore is uninitialized until Init is called.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if strings.TrimSpace(cfg.storageKey) == "" {
		return nil, fmt.Errorf("%w: empty storage key", ErrInvalidArgument)
	}
	if cfg.locks == nil {
		cfg.locks = lockset.Default
	}

	c := &Client{
		profile:    cfg.profile,
		storageKey: cfg.storageKey,
		locks:      cfg.locks,
		stats:      cfg.stats,
		logger:     cfg.logger,
		store:      cfg.store,
	}

	c.logger.Debug("client created",
		zap.Stringer("profile", c.profile),
		zap.String("storageKey", c.storageKey),
		zap.Bool("initialized", c.store != nil),
	)

	return c, nil
}

// Init binds the client to st. Calling it again rebinds to the new store;
// the previous store is not closed.
func (c *Client) Init(st store.Store) {
	c.mu.Lock()
	c.store = st
	c.mu.Unlock()

	if st != nil {
		c.logger.Debug("client initialized", zap.String("identity", c.identity(st)))
	}
}

// Initialized reports whether a store is bound.
func (c *Client) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store != nil
}

// Profile returns the client's behavior profile.
func (c *Client) Profile() Profile {
	return c.profile
}

// StorageKey returns the key the document is persisted under.
func (c *Client) StorageKey() string {
	return c.storageKey
}

// Close releases the bound store.
// After Close, every call returns ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	c.mu.Lock()
	st := c.store
	c.store = nil
	c.mu.Unlock()

	if st != nil {
		if err := st.Close(); err != nil {
			return fmt.Errorf("closing store: %w", err)
		}
	}
	return nil
}

// Raw returns the persisted document text exactly as stored, or "" when
// nothing has been written.
func (c *Client) Raw(ctx context.Context) (string, error) {
	st, err := c.bound()
	if err != nil || st == nil {
		return "", err
	}

	var text string
	err = c.withReadLock(ctx, st, func() error {
		var err error
		text, err = st.Get(ctx, c.storageKey)
		if err != nil {
			return fmt.Errorf("reading %q: %w", c.storageKey, err)
		}
		return nil
	})
	c.stats.IncCounter(stats.MetricReads, 1)
	return text, err
}

// Get returns the stored value for key. A stored JSON null is reported as
// present; typed accessors treat it as absent.
func (c *Client) Get(ctx context.Context, key string) (document.Value, bool, error) {
	doc, err := c.view(ctx)
	if err != nil {
		return document.Value{}, false, err
	}
	v, ok := doc.Get(key)
	return v, ok, nil
}

// Contains reports whether key is present. A blank key is never present.
func (c *Client) Contains(ctx context.Context, key string) (bool, error) {
	doc, err := c.view(ctx)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(key) == "" {
		return false, nil
	}
	return doc.Has(key), nil
}

// Keys returns every key in the document, sorted.
func (c *Client) Keys(ctx context.Context) ([]string, error) {
	doc, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Keys(), nil
}

// Set stores value under key and persists the document. The value is
// encoded with encoding/json unless it is already a document.Value.
// Keys must be valid UTF-8.
func (c *Client) Set(ctx context.Context, key string, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	v, err := document.ValueOf(value)
	if err != nil {
		return fmt.Errorf("%w: key %q: %w", ErrInvalidArgument, key, err)
	}

	persisted, err := c.update(ctx, "set", func(doc *document.Document) bool {
		doc.Set(key, v)
		return true
	})
	if persisted {
		c.stats.IncCounter(stats.MetricWrites, 1)
	}
	return err
}

// SetAll merges entries into the document and persists it once.
// A nil map is ErrInvalidArgument; an empty map writes nothing.
func (c *Client) SetAll(ctx context.Context, entries map[string]any) error {
	if entries == nil {
		return fmt.Errorf("%w: nil entries", ErrInvalidArgument)
	}
	if len(entries) == 0 {
		_, err := c.bound()
		return err
	}

	values := document.New()
	for key, value := range entries {
		if err := checkKey(key); err != nil {
			return err
		}
		v, err := document.ValueOf(value)
		if err != nil {
			return fmt.Errorf("%w: key %q: %w", ErrInvalidArgument, key, err)
		}
		values.Set(key, v)
	}

	persisted, err := c.update(ctx, "set all", func(doc *document.Document) bool {
		doc.Merge(values)
		return true
	})
	if persisted {
		c.stats.IncCounter(stats.MetricWrites, int64(values.Len()))
	}
	return err
}

// Remove deletes key. The document is persisted only if key was present.
func (c *Client) Remove(ctx context.Context, key string) error {
	persisted, err := c.update(ctx, "remove", func(doc *document.Document) bool {
		return doc.Delete(key)
	})
	if persisted {
		c.stats.IncCounter(stats.MetricRemoves, 1)
	}
	return err
}

// Clear wipes the backing store, including entries under other storage keys.
func (c *Client) Clear(ctx context.Context) error {
	st, err := c.bound()
	if err != nil {
		return err
	}
	if st == nil {
		c.logger.Warn("dropping clear on uninitialized client")
		return nil
	}

	err = c.withWriteLock(ctx, st, func() error {
		if err := st.Clear(ctx); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.stats.IncCounter(stats.MetricClears, 1)
	c.stats.SetGauge(stats.MetricDocumentKeys, 0)
	c.stats.SetGauge(stats.MetricDocumentBytes, 0)
	c.logger.Debug("store cleared", zap.String("identity", c.identity(st)))
	return nil
}

// checkKey rejects keys that JSON cannot carry unchanged.
func checkKey(key string) error {
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: key %q is not valid UTF-8", ErrInvalidArgument, key)
	}
	return nil
}

// bound returns the bound store. A lenient client without a store yields
// a nil store and no error.
func (c *Client) bound() (store.Store, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	c.mu.RLock()
	st := c.store
	c.mu.RUnlock()

	if st == nil && c.profile == Strict {
		return nil, ErrNotInitialized
	}
	return st, nil
}

// identity names the document shared by every client bound to the same
// store and storage key.
func (c *Client) identity(st store.Store) string {
	return st.Name() + "/" + c.storageKey
}

// view loads the document under the read lock.
func (c *Client) view(ctx context.Context) (*document.Document, error) {
	st, err := c.bound()
	if err != nil {
		return nil, err
	}
	c.stats.IncCounter(stats.MetricReads, 1)
	if st == nil {
		return document.New(), nil
	}

	var doc *document.Document
	err = c.withReadLock(ctx, st, func() error {
		var err error
		doc, err = c.load(ctx, st)
		return err
	})
	return doc, err
}

// update runs one load-merge-persist cycle under the write lock. The
// document is persisted only when mutate reports a change.
func (c *Client) update(ctx context.Context, op string, mutate func(*document.Document) bool) (bool, error) {
	st, err := c.bound()
	if err != nil {
		return false, err
	}
	if st == nil {
		c.logger.Warn("dropping write on uninitialized client", zap.String("op", op))
		return false, nil
	}

	persisted := false
	err = c.withWriteLock(ctx, st, func() error {
		doc, err := c.load(ctx, st)
		if err != nil {
			return err
		}
		if !mutate(doc) {
			return nil
		}
		if err := c.persist(ctx, st, doc); err != nil {
			return err
		}
		persisted = true
		return nil
	})
	return persisted, err
}

// load reads and decodes the document. Must be called with a lock held.
func (c *Client) load(ctx context.Context, st store.Store) (*document.Document, error) {
	text, err := st.Get(ctx, c.storageKey)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", c.storageKey, err)
	}

	doc, err := document.Decode(text)
	if err != nil {
		c.stats.IncCounter(stats.MetricFormatErrors, 1)
		if c.profile == Lenient && errors.Is(err, document.ErrSyntax) {
			c.logger.Warn("ignoring unparseable document",
				zap.String("identity", c.identity(st)),
				zap.Int("bytes", len(text)),
				zap.Error(err),
			)
			return document.New(), nil
		}
		return nil, fmt.Errorf("decoding %q: %w", c.storageKey, err)
	}

	c.logger.Debug("document loaded",
		zap.String("identity", c.identity(st)),
		zap.Int("keys", doc.Len()),
		zap.Int("bytes", len(text)),
	)
	return doc, nil
}

// persist encodes and writes the whole document. Must be called with the
// write lock held.
func (c *Client) persist(ctx context.Context, st store.Store, doc *document.Document) error {
	text := document.Encode(doc)

	start := time.Now()
	if err := st.Put(ctx, c.storageKey, text); err != nil {
		return fmt.Errorf("writing %q: %w", c.storageKey, err)
	}
	c.stats.ObserveHistogram(stats.MetricPersistSeconds, time.Since(start).Seconds())
	c.stats.SetGauge(stats.MetricDocumentKeys, int64(doc.Len()))
	c.stats.SetGauge(stats.MetricDocumentBytes, int64(len(text)))

	c.logger.Debug("document persisted",
		zap.String("identity", c.identity(st)),
		zap.Int("keys", doc.Len()),
		zap.Int("bytes", len(text)),
	)
	return nil
}

func (c *Client) withReadLock(ctx context.Context, st store.Store, fn func() error) error {
	mu := c.locks.For(c.identity(st))
	mu.RLock()
	defer mu.RUnlock()

	if l, ok := st.(store.Locker); ok {
		unlock, err := l.RLock(ctx)
		if err != nil {
			return fmt.Errorf("locking store: %w", err)
		}
		defer unlock()
	}
	return fn()
}

func (c *Client) withWriteLock(ctx context.Context, st store.Store, fn func() error) error {
	mu := c.locks.For(c.identity(st))
	mu.Lock()
	defer mu.Unlock()

	if l, ok := st.(store.Locker); ok {
		unlock, err := l.Lock(ctx)
		if err != nil {
			return fmt.Errorf("locking store: %w", err)
		}
		defer unlock()
	}
	return fn()
}
