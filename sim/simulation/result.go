package simulation

import (
	"github.com/sarchlab/cachesim/mem/cache"
)

// A Result is what a cache reports after replaying a trace.
type Result struct {
	Label  string
	Config cache.Config
	Stats  cache.Statistics

	// HitRate is a percentage. It is only meaningful when HasHitRate is
	// true, which requires at least one access.
	HitRate    float64
	HasHitRate bool
}

// NewResult captures the current statistics of a cache.
func NewResult(c cache.Cache) Result {
	r := Result{
		Label:  c.Name(),
		Config: c.Config(),
		Stats:  c.Stats(),
	}

	rate, err := r.Stats.HitRate()
	if err == nil {
		r.HitRate = rate
		r.HasHitRate = true
	}

	return r
}

// A Summary holds the results of every cache of a run, in configuration
// order.
type Summary struct {
	RunID   string
	Results []Result
}

// Best returns the highest hit rate among the results that have one.
func (s Summary) Best() (rate float64, ok bool) {
	for _, r := range s.Results {
		if !r.HasHitRate {
			continue
		}

		if !ok || r.HitRate > rate {
			rate = r.HitRate
			ok = true
		}
	}

	return rate, ok
}
