package blobcache

import (
	"context"
	"fmt"

	"github.com/discochess/blobcache/internal/coerce"
	"github.com/discochess/blobcache/internal/document"
	"github.com/discochess/blobcache/internal/stats"
)

// Typed accessors return the converted value and whether key held a non-null
// value. Absent keys are not an error: numeric accessors then return -1 under
// Strict and 0 under Lenient, Bool returns false and String returns "".
// A present value that cannot be converted is ErrFormat.

// Bool returns whether the value's text equals "true", ignoring case.
// Any other present value is false with ok set.
func (c *Client) Bool(ctx context.Context, key string) (bool, bool, error) {
	return typed(ctx, c, key, false, func(v document.Value) (bool, error) {
		return coerce.Bool(v), nil
	})
}

// Int returns the value as a 32-bit integer.
func (c *Client) Int(ctx context.Context, key string) (int, bool, error) {
	return typed(ctx, c, key, int(c.profile.missingNumber()), func(v document.Value) (int, error) {
		n, err := coerce.Int32(v)
		return int(n), err
	})
}

// Int64 returns the value as a 64-bit integer without float rounding.
func (c *Client) Int64(ctx context.Context, key string) (int64, bool, error) {
	return typed(ctx, c, key, c.profile.missingNumber(), coerce.Int64)
}

// Float32 returns the value as a float32.
func (c *Client) Float32(ctx context.Context, key string) (float32, bool, error) {
	return typed(ctx, c, key, float32(c.profile.missingNumber()), coerce.Float32)
}

// Float64 returns the value as a float64.
func (c *Client) Float64(ctx context.Context, key string) (float64, bool, error) {
	return typed(ctx, c, key, float64(c.profile.missingNumber()), coerce.Float64)
}

// String returns a string value unquoted, or any other value as compact JSON.
func (c *Client) String(ctx context.Context, key string) (string, bool, error) {
	return typed(ctx, c, key, "", func(v document.Value) (string, error) {
		return coerce.String(v), nil
	})
}

// GetObject decodes the value under key into a new T.
// It returns nil if key is absent or null.
func GetObject[T any](ctx context.Context, c *Client, key string) (*T, error) {
	out, _, err := typed(ctx, c, key, nil, func(v document.Value) (*T, error) {
		target := new(T)
		if err := coerce.Object(v, target); err != nil {
			return nil, err
		}
		return target, nil
	})
	return out, err
}

func typed[T any](ctx context.Context, c *Client, key string, missing T, convert func(document.Value) (T, error)) (T, bool, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return missing, false, err
	}
	if !ok || v.IsNull() {
		return missing, false, nil
	}

	out, err := convert(v)
	if err != nil {
		c.stats.IncCounter(stats.MetricFormatErrors, 1)
		return missing, false, fmt.Errorf("key %q: %w", key, err)
	}
	return out, true, nil
}
