package blobcache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/discochess/blobcache/internal/store/memstore"
)

func newBenchClient(b *testing.B, keys int) *Client {
	b.Helper()
	client, err := New(WithStore(memstore.New()))
	require.NoError(b, err)
	entries := make(map[string]any, keys)
	for i := range keys {
		entries[fmt.Sprintf("key%04d", i)] = i
	}
	require.NoError(b, client.SetAll(context.Background(), entries))
	return client
}

func BenchmarkClient_Int64(b *testing.B) {
	for _, keys := range []int{10, 1000} {
		b.Run(fmt.Sprintf("keys=%d", keys), func(b *testing.B) {
			client := newBenchClient(b, keys)
			defer client.Close()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := client.Int64(ctx, "key0005"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkClient_Set(b *testing.B) {
	for _, keys := range []int{10, 1000} {
		b.Run(fmt.Sprintf("keys=%d", keys), func(b *testing.B) {
			client := newBenchClient(b, keys)
			defer client.Close()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := client.Set(ctx, "key0005", i); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
