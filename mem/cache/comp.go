// Package cache provides the cache models that decide, access by access,
// whether a memory block is found in the cache.
package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/addressing"
	"github.com/sarchlab/cachesim/mem/cache/tagging"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Cache replays memory accesses and counts how many of them hit.
//
// Hooks registered on a Cache are invoked at trace.HookPosAccess after every
// access and at trace.HookPosPrefetch after every prefetch, with a
// trace.AccessInfo as the detail.
type Cache interface {
	hooking.NamedHookable

	// Access applies one access and tells if it hit.
	Access(e trace.AccessEvent) bool

	// LastAccessMissed tells if the most recent access missed.
	LastAccessMissed() bool

	// Stats returns the counters accumulated since the last reset.
	Stats() Statistics

	// Config returns the config that the cache was built from.
	Config() Config

	// Reset invalidates every block and clears the counters.
	Reset()
}

// A Comp is a cache made of an address decoder, a tag array and a victim
// finder. The logical clock advances once per access and is shared by all the
// sets.
type Comp struct {
	hooking.HookableBase

	name         string
	config       Config
	decoder      addressing.Decoder
	tags         *tagging.TagArray
	victimFinder tagging.VictimFinder

	clock      uint64
	stats      Statistics
	lastMissed bool
}

// Name returns the name of the cache.
func (c *Comp) Name() string {
	return c.name
}

// Config returns the config that the cache was built from.
func (c *Comp) Config() Config {
	return c.config
}

// Stats returns the counters.
func (c *Comp) Stats() Statistics {
	return c.stats
}

// LastAccessMissed tells if the most recent access missed.
func (c *Comp) LastAccessMissed() bool {
	return c.lastMissed
}

// Tags returns the tag array of the cache.
func (c *Comp) Tags() *tagging.TagArray {
	return c.tags
}

// Reset invalidates every block and clears the counters and the replacement
// state.
func (c *Comp) Reset() {
	c.tags.Reset()
	c.victimFinder.Reset()
	c.clock = 0
	c.stats = Statistics{}
	c.lastMissed = false
}

// Access looks the address up and allocates a block for it on a miss.
func (c *Comp) Access(e trace.AccessEvent) bool {
	hit := c.probe(e)
	if !hit {
		c.fill(e.Address)
	}

	c.report(trace.HookPosAccess, e, hit)

	return hit
}

// probe advances the clock, counts the access and refreshes the block on a
// hit. It never allocates.
func (c *Comp) probe(e trace.AccessEvent) bool {
	c.clock++
	c.countAccess(e)

	_, setID, tag := c.decoder.Decode(e.Address)

	block, hit := c.tags.Lookup(setID, tag)
	c.lastMissed = !hit

	if !hit {
		c.stats.Misses++
		return false
	}

	c.stats.Hits++
	c.victimFinder.Visit(block, c.clock)

	return true
}

func (c *Comp) countAccess(e trace.AccessEvent) {
	c.stats.Accesses++

	switch e.Kind {
	case trace.Load:
		c.stats.Loads++
	case trace.Store:
		c.stats.Stores++
	}
}

// fill places the block of the address in the victim chosen for its set.
func (c *Comp) fill(addr uint64) {
	_, setID, tag := c.decoder.Decode(addr)

	victim := c.victimFinder.FindVictim(c.tags.GetSet(setID))

	if _, evicted := c.tags.Install(victim, tag); evicted {
		c.stats.Evictions++
	}

	c.victimFinder.Visit(victim, c.clock)
}

// prefetch brings the block of the address in without counting an access.
// The block is stamped with the clock of the access that triggered it.
func (c *Comp) prefetch(addr uint64) {
	c.stats.PrefetchLookups++

	_, setID, tag := c.decoder.Decode(addr)

	block, hit := c.tags.Lookup(setID, tag)
	if hit {
		c.victimFinder.Visit(block, c.clock)
	} else {
		c.fill(addr)
		c.stats.PrefetchFills++
	}

	c.report(trace.HookPosPrefetch, trace.LoadAt(addr), hit)
}

func (c *Comp) report(pos *hooking.HookPos, e trace.AccessEvent, hit bool) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   e,
		Detail: trace.AccessInfo{
			Event:    e,
			Hit:      hit,
			Prefetch: pos == trace.HookPosPrefetch,
		},
	})
}
