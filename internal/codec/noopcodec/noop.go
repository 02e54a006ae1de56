// Package noopcodec provides a codec that stores documents uncompressed.
package noopcodec

import (
	"io"

	"github.com/discochess/blobcache/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec passes data through unchanged.
type Codec struct{}

// New returns a new no-op codec.
func New() *Codec {
	return &Codec{}
}

// Reader returns r as a ReadCloser. Closing it does not close r.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w as a WriteCloser. Closing it does not close w.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// Extension returns "" so documents keep a plain .json name.
func (c *Codec) Extension() string {
	return ""
}

// Name returns "none".
func (c *Codec) Name() string {
	return "none"
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
