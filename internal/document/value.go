package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Kind identifies the JSON type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a stored cache value.
//
// A Value keeps the compact JSON text it was decoded from, so numbers retain
// their exact digits and nested arrays and objects are only interpreted when
// Elements or Fields is called. The zero Value is JSON null.
type Value struct {
	kind Kind
	raw  string
}

// Null returns the JSON null value.
func Null() Value {
	return Value{}
}

// Kind returns the JSON type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Raw returns the compact JSON text of the value.
func (v Value) Raw() string {
	if v.kind == KindNull || v.raw == "" {
		return "null"
	}
	return v.raw
}

// Text returns the textual form of the value: the unquoted contents for
// strings, the JSON text for everything else.
func (v Value) Text() string {
	if v.kind == KindString {
		return gjson.Parse(v.raw).Str
	}
	return v.Raw()
}

// Elements decodes the items of an array value.
// It returns nil for any other kind.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	var out []Value
	gjson.Parse(v.raw).ForEach(func(_, item gjson.Result) bool {
		out = append(out, fromResult(item))
		return true
	})
	return out
}

// Fields decodes the members of an object value into a Document.
// It returns nil for any other kind.
func (v Value) Fields() *Document {
	if v.kind != KindObject {
		return nil
	}
	return decodeObject(gjson.Parse(v.raw))
}

// Equal reports whether two values have the same kind and canonical text.
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.Raw() == other.Raw()
}

// MarshalJSON emits the stored JSON text unchanged.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.Raw()), nil
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return v.Raw()
}

// Parse builds a Value from JSON text.
func Parse(raw string) (Value, error) {
	if !gjson.Valid(raw) {
		return Value{}, ErrSyntax
	}
	return fromResult(gjson.Parse(raw)), nil
}

// ValueOf converts caller data to a Value.
//
// Values pass through unchanged. Everything else, including json.Number and
// json.RawMessage, is encoded with encoding/json, which keeps integer digits
// exact and sorts map keys.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return *x, nil
	}

	raw, err := marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return Parse(raw)
}

// fromResult converts a parsed gjson result. The result must come from valid JSON.
func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False, gjson.True:
		return Value{kind: KindBool, raw: r.Raw}
	case gjson.Number:
		return Value{kind: KindNumber, raw: r.Raw}
	case gjson.String:
		return Value{kind: KindString, raw: quote(r.Str)}
	}

	raw := string(bytes.TrimSpace(pretty.Ugly([]byte(r.Raw))))
	if r.IsArray() {
		return Value{kind: KindArray, raw: raw}
	}
	return Value{kind: KindObject, raw: raw}
}

// marshal encodes v without HTML escaping and without the encoder's trailing newline.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// quote returns s as a JSON string literal.
func quote(s string) string {
	out, err := marshal(s)
	if err != nil {
		// Strings always encode; invalid UTF-8 is coerced to U+FFFD.
		return `""`
	}
	return out
}
