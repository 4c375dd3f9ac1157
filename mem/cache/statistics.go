package cache

import "errors"

// ErrNoAccesses is returned when a hit rate is asked for before any access.
var ErrNoAccesses = errors.New("no accesses recorded")

// Statistics holds cache performance statistics. Prefetches are counted
// separately and never change Accesses, Hits or Misses.
type Statistics struct {
	Accesses        uint64
	Loads           uint64
	Stores          uint64
	Hits            uint64
	Misses          uint64
	Evictions       uint64
	PrefetchLookups uint64
	PrefetchFills   uint64
}

// HitRate returns the percentage of accesses that hit.
func (s Statistics) HitRate() (float64, error) {
	if s.Accesses == 0 {
		return 0, ErrNoAccesses
	}

	return float64(s.Hits) / float64(s.Accesses) * 100.0, nil
}
