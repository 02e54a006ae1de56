// Package coerce converts stored document values to the primitive types
// requested by callers.
//
// Every conversion reads the value's textual form: the unquoted contents of a
// string, or the exact JSON text of anything else. Numbers are never routed
// through float64 on their way to an integer, so 64-bit values survive intact.
package coerce

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/discochess/blobcache/internal/document"
)

// Bool reports whether the value's text equals "true", ignoring case.
func Bool(v document.Value) bool {
	return strings.EqualFold(v.Text(), "true")
}

// Int32 parses the value as a base-10 32-bit integer.
func Int32(v document.Value) (int32, error) {
	n, err := strconv.ParseInt(v.Text(), 10, 32)
	if err != nil {
		return 0, formatError("int32", v, err)
	}
	return int32(n), nil
}

// Int64 parses the value as a base-10 64-bit integer.
func Int64(v document.Value) (int64, error) {
	n, err := strconv.ParseInt(v.Text(), 10, 64)
	if err != nil {
		return 0, formatError("int64", v, err)
	}
	return n, nil
}

// Float32 parses the value as a 32-bit float.
func Float32(v document.Value) (float32, error) {
	f, err := strconv.ParseFloat(v.Text(), 32)
	if err != nil {
		return 0, formatError("float32", v, err)
	}
	return float32(f), nil
}

// Float64 parses the value as a 64-bit float.
func Float64(v document.Value) (float64, error) {
	f, err := strconv.ParseFloat(v.Text(), 64)
	if err != nil {
		return 0, formatError("float64", v, err)
	}
	return f, nil
}

// String returns the value's text. String values lose their enclosing quotes.
func String(v document.Value) string {
	return v.Text()
}

// Object decodes the value's JSON text into target, which must be a pointer.
func Object(v document.Value, target any) error {
	if err := json.Unmarshal([]byte(v.Raw()), target); err != nil {
		return formatError(fmt.Sprintf("%T", target), v, err)
	}
	return nil
}

func formatError(typ string, v document.Value, err error) error {
	// strconv errors repeat the whole input; keep only the reason.
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return fmt.Errorf("%w: cannot read %s %s as %s: %v", document.ErrFormat, v.Kind(), truncate(v.Raw()), typ, err)
}

// truncate keeps error messages short for large stored values.
func truncate(s string) string {
	const maxLen = 64
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
