// Package workload drives a mixed read/write load against a blobcache client
// and records per-operation latency.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/discochess/blobcache"
)

// Config describes a workload.
type Config struct {
	// Ops is the number of operations to run.
	Ops int

	// Keys is the size of the key space.
	Keys int

	// WriteRatio is the fraction of operations that are writes, in [0, 1].
	WriteRatio float64

	// ValueSize is the length of each written string value.
	ValueSize int

	// Seed makes runs with the same Config pick the same operations.
	Seed uint64
}

// DefaultConfig returns a small read-heavy workload.
func DefaultConfig() Config {
	return Config{
		Ops:        1000,
		Keys:       100,
		WriteRatio: 0.2,
		ValueSize:  64,
		Seed:       1,
	}
}

// Validate reports whether the config can be run.
func (c Config) Validate() error {
	switch {
	case c.Ops <= 0:
		return errors.New("ops must be positive")
	case c.Keys <= 0:
		return errors.New("keys must be positive")
	case c.WriteRatio < 0 || c.WriteRatio > 1:
		return fmt.Errorf("write ratio %v outside [0, 1]", c.WriteRatio)
	case c.ValueSize < 0:
		return errors.New("value size must not be negative")
	}
	return nil
}

// Result holds the latencies of one run, in milliseconds.
type Result struct {
	Name    string
	Reads   []float64
	Writes  []float64
	Elapsed time.Duration
}

// Ops returns the total number of operations recorded.
func (r *Result) Ops() int {
	return len(r.Reads) + len(r.Writes)
}

// Throughput returns operations per second over the whole run.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops()) / r.Elapsed.Seconds()
}

// Run seeds the key space with one SetAll, then runs cfg.Ops operations.
// Reads use String; writes use Set.
func Run(ctx context.Context, name string, client *blobcache.Client, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload: %w", err)
	}

	value := strings.Repeat("x", cfg.ValueSize)
	seed := make(map[string]any, cfg.Keys)
	for i := range cfg.Keys {
		seed[keyName(i)] = value
	}
	if err := client.SetAll(ctx, seed); err != nil {
		return nil, fmt.Errorf("seeding keys: %w", err)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	result := &Result{
		Name:   name,
		Reads:  make([]float64, 0, cfg.Ops),
		Writes: make([]float64, 0, int(float64(cfg.Ops)*cfg.WriteRatio)+1),
	}

	start := time.Now()
	for range cfg.Ops {
		key := keyName(rng.IntN(cfg.Keys))
		write := rng.Float64() < cfg.WriteRatio

		opStart := time.Now()
		var err error
		if write {
			err = client.Set(ctx, key, value)
		} else {
			_, _, err = client.String(ctx, key)
		}
		ms := float64(time.Since(opStart).Nanoseconds()) / 1e6
		if err != nil {
			return nil, fmt.Errorf("running %s: %w", key, err)
		}

		if write {
			result.Writes = append(result.Writes, ms)
		} else {
			result.Reads = append(result.Reads, ms)
		}
	}
	result.Elapsed = time.Since(start)

	return result, nil
}

func keyName(i int) string {
	return fmt.Sprintf("key%05d", i)
}
