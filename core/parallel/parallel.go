// Package parallel provides small helpers for CPU-bound data parallelism.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across the available CPU cores and runs fn once
// per contiguous range [start, end). It blocks until all ranges are done.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items is at or below
// threshold, and falls back to Parallelize above it. Small inputs are not
// worth the goroutine overhead.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach runs fn(i) for every i in [0, items), one goroutine per item.
// Intended for a handful of independent coarse-grained tasks, not for
// per-element numeric loops.
func ForEach(items int, fn func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < items; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			fn(idx)
		}(i)
	}
	wg.Wait()
}
