package simulation

import (
	"context"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
)

// defaultBatchSize is the number of accesses replayed between two checks of
// the context.
const defaultBatchSize = 4096

// A Driver feeds a trace through one cache, one access at a time and in
// trace order.
type Driver struct {
	cache      cache.Cache
	batchSize  int
	onProgress func(n uint64)
	onStats    func(s cache.Statistics)
}

// NewDriver creates a driver for the cache.
func NewDriver(c cache.Cache) *Driver {
	return &Driver{
		cache:     c,
		batchSize: defaultBatchSize,
	}
}

// WithBatchSize sets how many accesses are replayed between two context
// checks and progress reports.
func (d *Driver) WithBatchSize(n int) *Driver {
	if n < 1 {
		n = 1
	}

	d.batchSize = n

	return d
}

// WithProgress sets a function that is told how many accesses were replayed
// since it was last called.
func (d *Driver) WithProgress(f func(n uint64)) *Driver {
	d.onProgress = f
	return d
}

// WithStats sets a function that receives a copy of the cache statistics
// after every batch. It is called on the goroutine that runs the driver.
func (d *Driver) WithStats(f func(s cache.Statistics)) *Driver {
	d.onStats = f
	return d
}

// Run replays the events and returns the result of the cache. It stops early
// with the context's error if the context is canceled.
func (d *Driver) Run(ctx context.Context, events []trace.AccessEvent) (Result, error) {
	for start := 0; start < len(events); start += d.batchSize {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		end := min(start+d.batchSize, len(events))

		for _, e := range events[start:end] {
			d.cache.Access(e)
		}

		if d.onProgress != nil {
			d.onProgress(uint64(end - start))
		}

		if d.onStats != nil {
			d.onStats(d.cache.Stats())
		}
	}

	return NewResult(d.cache), nil
}
