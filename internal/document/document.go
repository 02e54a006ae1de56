// Package document implements the persisted cache document: a key-sorted
// mapping from cache key to type-preserving JSON value, and its JSON codec.
package document

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinel errors for document decoding and value conversion.
var (
	// ErrFormat indicates persisted or stored data that cannot be interpreted.
	ErrFormat = errors.New("blobcache: format error")

	// ErrSyntax indicates text that is not valid JSON.
	ErrSyntax = fmt.Errorf("%w: invalid JSON", ErrFormat)

	// ErrNotObject indicates valid JSON whose top level is not an object.
	ErrNotObject = fmt.Errorf("%w: document is not a JSON object", ErrFormat)

	// ErrUnsupportedValue indicates caller data that cannot be encoded as JSON.
	ErrUnsupportedValue = errors.New("blobcache: unsupported value")
)

// Document is the decoded cache state. Iteration is always in sorted key
// order, so encoding is deterministic.
//
// A Document is not safe for concurrent use.
type Document struct {
	entries map[string]Value
}

// New returns an empty document.
func New() *Document {
	return &Document{entries: make(map[string]Value)}
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.entries)
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Set inserts or overwrites the value under key.
func (d *Document) Set(key string, v Value) {
	d.entries[key] = v
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if _, ok := d.entries[key]; !ok {
		return false
	}
	delete(d.entries, key)
	return true
}

// Keys returns the keys in sorted order.
func (d *Document) Keys() []string {
	return slices.Sorted(maps.Keys(d.entries))
}

// All iterates over the entries in sorted key order.
func (d *Document) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range d.Keys() {
			if !yield(k, d.entries[k]) {
				return
			}
		}
	}
}

// Merge copies every entry of other into d. Entries of other win.
func (d *Document) Merge(other *Document) {
	for k, v := range other.entries {
		d.entries[k] = v
	}
}

// Equal reports whether both documents hold the same keys and values.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for k, v := range d.entries {
		ov, ok := other.entries[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Decode parses persisted text into a Document.
// Blank text yields an empty document.
func Decode(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return New(), nil
	}
	if !gjson.Valid(text) {
		return nil, ErrSyntax
	}
	res := gjson.Parse(text)
	if !res.IsObject() {
		return nil, ErrNotObject
	}
	return decodeObject(res), nil
}

// Encode serializes d as a compact JSON object with sorted keys.
func Encode(d *Document) string {
	var b strings.Builder
	b.WriteByte('{')
	i := 0
	for k, v := range d.All() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(k))
		b.WriteByte(':')
		b.WriteString(v.Raw())
		i++
	}
	b.WriteByte('}')
	return b.String()
}

// decodeObject collects the members of an object result. Later duplicate
// members replace earlier ones.
func decodeObject(res gjson.Result) *Document {
	d := New()
	res.ForEach(func(key, value gjson.Result) bool {
		d.entries[key.String()] = fromResult(value)
		return true
	})
	return d
}
