// Package sequence provides the atomically incremented per-period counters
// behind application number generation. A naive count-then-format read of the
// applications table races under concurrent submissions; every implementation
// here returns each value exactly once.
package sequence

import "context"

// Store hands out strictly increasing sequence values per period key
// (e.g. "2511" for November 2025). Next never returns the same value twice
// for one period, regardless of concurrency.
type Store interface {
	Next(ctx context.Context, period string) (int64, error)
}
