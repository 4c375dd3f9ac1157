package cache

import (
	"github.com/sarchlab/cachesim/mem/trace"
)

// skipWriteMissStrategy is a cache that does not allocate on a store miss.
// Store hits are handled like load hits.
type skipWriteMissStrategy struct {
	*Comp
}

// Access applies the access and allocates only if the miss is not a store.
func (c *skipWriteMissStrategy) Access(e trace.AccessEvent) bool {
	hit := c.probe(e)
	if !hit && e.Kind != trace.Store {
		c.fill(e.Address)
	}

	c.report(trace.HookPosAccess, e, hit)

	return hit
}

// prefetchStrategy is a cache that also brings in the block that follows the
// accessed one, either after every access or only after misses.
type prefetchStrategy struct {
	*Comp

	onMissOnly bool
}

// Access applies the access and then prefetches the next block.
func (c *prefetchStrategy) Access(e trace.AccessEvent) bool {
	hit := c.Comp.Access(e)

	if c.onMissOnly && !c.LastAccessMissed() {
		return hit
	}

	c.prefetchNextLine(e.Address)

	return hit
}

func (c *prefetchStrategy) prefetchNextLine(addr uint64) {
	c.prefetch(addr + c.decoder.Geometry().BlockBytes)
}
