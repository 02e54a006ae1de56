package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/blobcache"
	"github.com/discochess/blobcache/internal/config"
	"github.com/discochess/blobcache/internal/stats"
	"github.com/discochess/blobcache/internal/stats/logger"
	"github.com/discochess/blobcache/internal/store/storeurl"
)

var (
	// Global flags.
	storeURL   string
	codecName  string
	storageKey string
	profile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "blobcache",
	Short: "Inspect and edit a blobcache document",
	Long: `Blobcache reads and writes the typed key-value document that
blobcache clients persist in a backing store.

Flags default to the BLOBCACHE_STORE, BLOBCACHE_CODEC,
BLOBCACHE_STORAGE_KEY, BLOBCACHE_PROFILE and BLOBCACHE_VERBOSE
environment variables.

Examples:
  # Store a value
  blobcache --store file://./cache set retries 3 --json

  # Read it back as an integer
  blobcache --store file://./cache get retries --type int

  # Show the whole document
  blobcache --store sqlite://./cache.db dump --pretty`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeURL, "store", "s", "", "store URL (mem://, file://, sqlite://, s3://, gs://)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "", "entry compression: none, gzip or zstd, with optional :level")
	rootCmd.PersistentFlags().StringVarP(&storageKey, "key", "k", "", "storage key the document is persisted under")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "client profile: strict or lenient")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// applyEnv fills every flag the user did not set from the environment.
func applyEnv(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("store") {
		storeURL = cfg.Store
	}
	if !flags.Changed("codec") {
		codecName = cfg.Codec
	}
	if !flags.Changed("key") {
		storageKey = cfg.StorageKey
	}
	if !flags.Changed("profile") {
		profile = cfg.Profile
	}
	if !flags.Changed("verbose") {
		verbose = cfg.Verbose
	}
	return nil
}

// openClient opens the configured store and binds a client to it.
func openClient(ctx context.Context) (*blobcache.Client, error) {
	return openClientAt(ctx, storeURL, storageKey)
}

// openClientAt opens the store at rawURL with the global codec, profile and
// logging flags, and binds a client using key as the storage key.
func openClientAt(ctx context.Context, rawURL, key string) (*blobcache.Client, error) {
	log := zap.NewNop()
	var collector stats.Collector = stats.NewNoop()
	if verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		collector = logger.New(log.Named("stats"))
	}

	p, err := blobcache.ParseProfile(profile)
	if err != nil {
		return nil, err
	}
	c, err := storeurl.CodecByName(codecName)
	if err != nil {
		return nil, err
	}

	st, err := storeurl.Open(ctx, rawURL, storeurl.WithCodec(c), storeurl.WithCacheStats(collector))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	client, err := blobcache.New(
		blobcache.WithStore(st),
		blobcache.WithProfile(p),
		blobcache.WithStorageKey(key),
		blobcache.WithStats(collector),
		blobcache.WithLogger(log),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}
