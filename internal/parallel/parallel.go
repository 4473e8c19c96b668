// Package parallel fans independent kernel rows out across goroutines.
//
// Kernels hand it a body that owns a disjoint slice of the output, so any
// worker count produces identical results.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is split across goroutines.
type Config struct {
	Enabled      bool // run in parallel at all
	NumWorkers   int  // goroutines to spread the range over
	MinChunkSize int  // below this many items, run sequentially
}

// DefaultConfig sizes the pool to the machine. Small ranges stay sequential
// so goroutine overhead never dominates a cheap kernel call.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// For executes f(i) for every i in [0, n), splitting the range into
// contiguous chunks. Falls back to a plain loop when parallelism is disabled
// or the range is too small to be worth the goroutines.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch flattens a (rows, cols) iteration into a single range so short
// outer dimensions still parallelize. Kernels use it for per-(head, position)
// and per-(row, output-feature) loops.
func ForBatch(rows, cols int, f func(r, c int), cfg Config) {
	For(rows*cols, func(k int) {
		f(k/cols, k%cols)
	}, cfg)
}
