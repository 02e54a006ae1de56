package blobcache

import (
	"go.uber.org/zap"

	"github.com/discochess/blobcache/internal/lockset"
	"github.com/discochess/blobcache/internal/stats"
	"github.com/discochess/blobcache/internal/store"
)

// DefaultStorageKey is the backing store key the document is persisted under.
const DefaultStorageKey = "key_cache"

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store      store.Store
	profile    Profile
	storageKey string
	locks      *lockset.Set
	stats      stats.Collector
	logger     *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		profile:    Strict,
		storageKey: DefaultStorageKey,
		locks:      lockset.Default,
		stats:      stats.NewNoop(),
		logger:     zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore binds the client to a backing store at construction.
// Without it the client starts uninitialized until Init is called.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithProfile sets the behavior profile. Default is Strict.
func WithProfile(p Profile) Option {
	return optionFunc(func(o *options) {
		o.profile = p
	})
}

// WithStorageKey sets the key the document is persisted under.
// Default is DefaultStorageKey.
func WithStorageKey(key string) Option {
	return optionFunc(func(o *options) {
		o.storageKey = key
	})
}

// WithLocks sets the lock set shared by clients of the same store.
// If not set, lockset.Default is used.
func WithLocks(l *lockset.Set) Option {
	return optionFunc(func(o *options) {
		o.locks = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
