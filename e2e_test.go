//go:build e2e

package blobcache_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/blobcache"
	"github.com/discochess/blobcache/internal/codec/zstdcodec"
	"github.com/discochess/blobcache/internal/store/diskstore"
)

// TestE2E_ConcurrentProcesses runs several CLI processes that write to the
// same disk store at once and checks that no write is lost.
func TestE2E_ConcurrentProcesses(t *testing.T) {
	tmpDir := t.TempDir()
	bin := filepath.Join(tmpDir, "blobcache")
	dataDir := filepath.Join(tmpDir, "data")
	storeURL := "file://" + filepath.ToSlash(dataDir)

	// Step 1: Build the CLI
	t.Log("🔨 Building CLI...")
	build := exec.Command("go", "build", "-o", bin, "./cmd/blobcache")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	require.NoError(t, build.Run())

	// Step 2: Write from several processes at once
	const processes, perProcess = 4, 10
	t.Logf("✍️  Writing %d keys from %d processes...", processes*perProcess, processes)
	start := time.Now()

	var g errgroup.Group
	for p := range processes {
		g.Go(func() error {
			for i := range perProcess {
				key := fmt.Sprintf("p%d.k%02d", p, i)
				cmd := exec.Command(bin, "--store", storeURL, "--codec", "zstd", "set", key, fmt.Sprint(i), "--json")
				if out, err := cmd.CombinedOutput(); err != nil {
					return fmt.Errorf("set %s: %v: %s", key, err, out)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	t.Logf("   Wrote in %v", time.Since(start))

	// Step 3: Read back in-process
	st, err := diskstore.New(dataDir, zstdcodec.New())
	require.NoError(t, err)
	client, err := blobcache.New(blobcache.WithStore(st))
	require.NoError(t, err)
	defer client.Close()

	keys, err := client.Keys(context.Background())
	require.NoError(t, err)
	t.Logf("📊 Found %d keys", len(keys))
	assert.Len(t, keys, processes*perProcess)

	// Step 4: The entry on disk is a plain zstd frame holding the document
	f, err := os.Open(filepath.Join(dataDir, blobcache.DefaultStorageKey+".json.zst"))
	require.NoError(t, err)
	defer f.Close()

	decoder, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer decoder.Close()

	text, err := io.ReadAll(decoder)
	require.NoError(t, err)
	raw, err := client.Raw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, string(text), "entry on disk does not match Raw()")
}
