// Package diskstore implements a disk-based filesystem storage backend.
//
// Each storage key is one file under the root directory. Writes go to a
// temporary file that is synced and renamed over the entry, so readers never
// see a partial document. A lock file in the root lets separate processes
// share the directory safely.
package diskstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/discochess/blobcache/internal/codec"
	"github.com/discochess/blobcache/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Locker.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Locker = (*Store)(nil)
)

const (
	entrySuffix    = ".json"
	lockFilename   = ".blobcache.lock"
	lockRetryDelay = 10 * time.Millisecond
)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a disk store rooted at the given directory, creating the
// directory if needed. The codec handles compression/decompression.
func New(root string, c codec.Codec) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root directory: %w", err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("creating root directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat root directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	return &Store{
		root:  abs,
		codec: c,
	}, nil
}

// Get reads and decompresses the entry for key. A missing file yields "".
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	compressed, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading entry: %w", err)
	}

	text, err := codec.Decompress(s.codec, bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("reading entry %q: %w", key, err)
	}
	return text, nil
}

// Put compresses value and atomically replaces the entry for key.
// The data is fsynced before Put returns.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.Compress(s.codec, value)
	if err != nil {
		return fmt.Errorf("encoding entry %q: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.entryPath(key)); err != nil {
		return fmt.Errorf("committing entry: %w", err)
	}
	return nil
}

// Clear removes every entry file in the root. Other files are left alone.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("reading root directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !s.isEntryFile(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Name returns the file:// URL of the root directory.
func (s *Store) Name() string {
	return "file://" + filepath.ToSlash(s.root)
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// Lock takes the exclusive cross-process lock on the root directory.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	fl := flock.New(filepath.Join(s.root, lockFilename))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquiring lock: %w", context.Cause(ctx))
	}
	return fl.Close, nil
}

// RLock takes the shared cross-process lock on the root directory.
func (s *Store) RLock(ctx context.Context) (func() error, error) {
	fl := flock.New(filepath.Join(s.root, lockFilename))
	ok, err := fl.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring shared lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquiring shared lock: %w", context.Cause(ctx))
	}
	return fl.Close, nil
}

// entryPath returns the filesystem path for a storage key.
func (s *Store) entryPath(key string) string {
	return filepath.Join(s.root, s.entryName(key))
}

// entryName escapes key so that any string maps to a single file name.
func (s *Store) entryName(key string) string {
	name := url.PathEscape(key) + entrySuffix
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return name
}

func (s *Store) isEntryFile(name string) bool {
	suffix := entrySuffix
	if ext := s.codec.Extension(); ext != "" {
		suffix += "." + ext
	}
	return strings.HasSuffix(name, suffix) && !strings.HasPrefix(name, ".tmp-")
}
