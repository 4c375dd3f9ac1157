// Package simulation replays traces through groups of caches and collects
// their results.
package simulation

import (
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/mem/cache"
)

// ErrDuplicateCache is returned when two caches of a simulation share a name.
var ErrDuplicateCache = errors.New("cache already registered")

// A Simulation holds the caches of one run. Every simulation has a unique ID
// that is attached to the results that it records.
type Simulation struct {
	id     string
	caches []cache.Cache
	byName map[string]cache.Cache
}

// NewSimulation creates a new simulation.
func NewSimulation() *Simulation {
	return &Simulation{
		id:     xid.New().String(),
		byName: make(map[string]cache.Cache),
	}
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// RegisterCache adds a cache to the simulation.
func (s *Simulation) RegisterCache(c cache.Cache) error {
	name := c.Name()

	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicateCache)
	}

	s.byName[name] = c
	s.caches = append(s.caches, c)

	return nil
}

// GetCacheByName returns the cache with the given name, or nil.
func (s *Simulation) GetCacheByName(name string) cache.Cache {
	return s.byName[name]
}

// Caches returns the caches in the order they were registered.
func (s *Simulation) Caches() []cache.Cache {
	out := make([]cache.Cache, len(s.caches))
	copy(out, s.caches)

	return out
}
