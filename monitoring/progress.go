package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a cache has got through its trace.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished adds a certain amount to the finished accesses.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// Progress returns the finished and total counts.
func (b *ProgressBar) Progress() (finished, total uint64) {
	b.Lock()
	defer b.Unlock()

	return b.Finished, b.Total
}
