// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/discochess/blobcache/internal/codec"
	"github.com/discochess/blobcache/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend. Each storage key is one object.
type Store struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	bucketName string
	prefix     string
	codec      codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client:     client,
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		codec:      c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// Get downloads and decompresses the object for key. A missing object yields "".
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := s.bucket.Object(s.objectKey(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	return codec.Decompress(s.codec, reader)
}

// Put compresses and uploads value as the object for key.
// The upload is committed when the writer is closed, before Put returns.
func (s *Store) Put(ctx context.Context, key, value string) error {
	data, err := codec.Compress(s.codec, value)
	if err != nil {
		return fmt.Errorf("encoding entry %q: %w", key, err)
	}

	w := s.bucket.Object(s.objectKey(key)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("committing object: %w", err)
	}
	return nil
}

// Clear deletes every entry object under the store's prefix.
func (s *Store) Clear(ctx context.Context) error {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.entriesPrefix()})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("deleting %s: %w", attrs.Name, err)
		}
	}
	return nil
}

// Name returns the gs:// URL of the store.
func (s *Store) Name() string {
	return "gs://" + s.bucketName + "/" + s.prefix
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// entriesPrefix returns the object prefix shared by all entries.
func (s *Store) entriesPrefix() string {
	return s.prefix + "entries/"
}

// objectKey returns the full object name for a storage key.
func (s *Store) objectKey(key string) string {
	name := s.entriesPrefix() + url.PathEscape(key) + ".json"
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return name
}
