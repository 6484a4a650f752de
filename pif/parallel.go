package pif

import (
	"runtime"
	"sync"
)

// ParallelConfig configures how channels, scan-direction trials and color
// conversion rows are spread over goroutines. Output bytes do not depend
// on it.
type ParallelConfig struct {
	// NumWorkers is the number of worker goroutines. 0 means runtime.GOMAXPROCS(0).
	NumWorkers int

	// GrainSize is the minimum number of work items per worker. Work with
	// fewer than 2*GrainSize items runs sequentially.
	GrainSize int
}

// DefaultParallelConfig returns the default parallel configuration.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		NumWorkers: 0, // Use all available CPUs
		GrainSize:  1,
	}
}

var (
	parallelConfig   = DefaultParallelConfig()
	parallelConfigMu sync.RWMutex
)

// SetParallelConfig sets the global parallel configuration.
// NumWorkers: 1 forces sequential encoding and decoding.
func SetParallelConfig(config ParallelConfig) {
	parallelConfigMu.Lock()
	defer parallelConfigMu.Unlock()
	parallelConfig = config
}

// GetParallelConfig returns the current parallel configuration.
func GetParallelConfig() ParallelConfig {
	parallelConfigMu.RLock()
	defer parallelConfigMu.RUnlock()
	return parallelConfig
}

// workersFor returns how many goroutines should share n items.
func workersFor(config ParallelConfig, n int) int {
	workers := config.NumWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	grain := max(config.GrainSize, 1)
	return min(workers, n/grain)
}

// ParallelFor runs fn(i) for i in [0, n), splitting the range into
// contiguous blocks, one per worker.
func ParallelFor(n int, fn func(i int)) {
	_ = ParallelForWithError(n, func(i int) error {
		fn(i)
		return nil
	})
}

// ParallelForWithError runs fn(i) for i in [0, n) in parallel and returns
// the first error encountered. When several items fail, which error is
// returned is not specified. A worker stops at its first error; other
// workers run their blocks to completion.
func ParallelForWithError(n int, fn func(i int) error) error {
	workers := workersFor(GetParallelConfig(), n)

	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error
	chunkSize := (n + workers - 1) / workers

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				if err := fn(i); err != nil {
					errOnce.Do(func() {
						firstErr = err
					})
					return
				}
			}
		}(start, end)
	}

	wg.Wait()
	return firstErr
}

// parallelMap runs fn for every index and collects the results in index
// order.
func parallelMap[T any](n int, fn func(i int) (T, error)) ([]T, error) {
	results := make([]T, n)

	err := ParallelForWithError(n, func(i int) error {
		v, err := fn(i)
		if err != nil {
			return err
		}
		results[i] = v
		return nil
	})

	if err != nil {
		return nil, err
	}
	return results, nil
}
