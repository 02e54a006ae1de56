package blobcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTyped_AbsentDefaults(t *testing.T) {
	tests := []struct {
		profile Profile
		number  int64
	}{
		{Strict, -1},
		{Lenient, 0},
	}

	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			client, _ := newTestClient(t, WithProfile(tt.profile))
			ctx := context.Background()

			n, ok, err := client.Int(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, int(tt.number), n)

			n64, ok, err := client.Int64(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, tt.number, n64)

			f32, ok, err := client.Float32(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, float32(tt.number), f32)

			f64, ok, err := client.Float64(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, float64(tt.number), f64)

			b, ok, err := client.Bool(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.False(t, b)

			s, ok, err := client.String(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, s)
		})
	}
}

func TestTyped_Bool(t *testing.T) {
	client, mem := newTestClient(t)
	mem.SetEntry(DefaultStorageKey, `{"t":true,"f":false,"upper":"TRUE","yes":"yes","one":1}`)

	tests := []struct {
		key  string
		want bool
	}{
		{"t", true},
		{"f", false},
		{"upper", true},
		{"yes", false},
		{"one", false},
	}

	for _, tt := range tests {
		got, ok, err := client.Bool(context.Background(), tt.key)
		require.NoError(t, err, "Bool(%q)", tt.key)
		assert.True(t, ok, "Bool(%q)", tt.key)
		assert.Equal(t, tt.want, got, "Bool(%q)", tt.key)
	}
}

func TestTyped_Int(t *testing.T) {
	client, mem := newTestClient(t)
	mem.SetEntry(DefaultStorageKey, `{"n":42,"s":"42","neg":-7,"frac":1.5,"big":3000000000,"word":"abc"}`)
	ctx := context.Background()

	for key, want := range map[string]int{"n": 42, "s": 42, "neg": -7} {
		got, ok, err := client.Int(ctx, key)
		require.NoError(t, err, "Int(%q)", key)
		assert.True(t, ok, "Int(%q)", key)
		assert.Equal(t, want, got, "Int(%q)", key)
	}

	for _, key := range []string{"frac", "big", "word"} {
		_, _, err := client.Int(ctx, key)
		assert.ErrorIs(t, err, ErrFormat, "Int(%q)", key)
	}

	big, ok, err := client.Int64(ctx, "big")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3000000000), big)
}

func TestTyped_Float(t *testing.T) {
	client, mem := newTestClient(t)
	mem.SetEntry(DefaultStorageKey, `{"f":1.25,"e":1E5,"s":"2.5","bad":"x"}`)
	ctx := context.Background()

	f32, ok, err := client.Float32(ctx, "f")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float32(1.25), f32)

	f64, ok, err := client.Float64(ctx, "e")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(100000), f64)

	f64, ok, err = client.Float64(ctx, "s")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, f64)

	_, _, err = client.Float64(ctx, "bad")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTyped_String(t *testing.T) {
	client, mem := newTestClient(t)
	mem.SetEntry(DefaultStorageKey, `{"s":"abc","q":"say \"hi\"","n":12.50,"o":{"x": 1},"a":[1, 2]}`)

	tests := []struct {
		key  string
		want string
	}{
		{"s", "abc"},
		{"q", `say "hi"`},
		{"n", "12.50"},
		{"o", `{"x":1}`},
		{"a", "[1,2]"},
	}

	for _, tt := range tests {
		got, ok, err := client.String(context.Background(), tt.key)
		require.NoError(t, err, "String(%q)", tt.key)
		assert.True(t, ok, "String(%q)", tt.key)
		assert.Equal(t, tt.want, got, "String(%q)", tt.key)
	}
}

type endpoint struct {
	Host  string   `json:"host"`
	Port  int      `json:"port"`
	Tags  []string `json:"tags,omitempty"`
	Token int64    `json:"token"`
}

func TestGetObject(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	want := endpoint{Host: "example.com", Port: 8443, Tags: []string{"a"}, Token: 9007199254740993}
	require.NoError(t, client.Set(ctx, "ep", want))

	got, err := GetObject[endpoint](ctx, client, "ep")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetObject_AbsentAndMalformed(t *testing.T) {
	client, mem := newTestClient(t)
	mem.SetEntry(DefaultStorageKey, `{"null":null,"bad":"not an object"}`)
	ctx := context.Background()

	for _, key := range []string{"missing", "null"} {
		got, err := GetObject[endpoint](ctx, client, key)
		require.NoError(t, err, "GetObject(%q)", key)
		assert.Nil(t, got, "GetObject(%q)", key)
	}

	_, err := GetObject[endpoint](ctx, client, "bad")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestGetObject_Uninitialized(t *testing.T) {
	client, err := New()
	require.NoError(t, err)

	_, err = GetObject[endpoint](context.Background(), client, "ep")
	assert.ErrorIs(t, err, ErrNotInitialized)
}
