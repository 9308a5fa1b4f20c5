// Package parallel runs independent jobs on a bounded number of goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Number of worker goroutines to use.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
	}
}

// For calls f(i) for every i in [0, n). f must be safe to call concurrently
// for distinct i.
func For(n int, f func(i int), cfg Config) {
	_ = ForErr(context.Background(), n, func(_ context.Context, i int) error {
		f(i)
		return nil
	}, cfg)
}

// ForErr calls f(i) for every i in [0, n) and returns the error of the
// lowest i that failed. Every job runs even when an earlier one fails; ctx
// only reaches f so long jobs can stop on cancellation.
func ForErr(ctx context.Context, n int, f func(ctx context.Context, i int) error, cfg Config) error {
	errs := make([]error, n)

	var g errgroup.Group
	if cfg.Enabled && cfg.NumWorkers > 1 {
		g.SetLimit(cfg.NumWorkers)
	} else {
		g.SetLimit(1)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = f(ctx, i)
			return nil
		})
	}
	_ = g.Wait() // Jobs report through errs

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
