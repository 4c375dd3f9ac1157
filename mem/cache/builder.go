package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
	"github.com/sarchlab/cachesim/mem/cache/tagging"
)

// Builder can build caches.
type Builder struct {
	policy           Policy
	byteSize         uint64
	wayAssociativity int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		policy:           SetAssociative,
		byteSize:         16 * KB,
		wayAssociativity: 4,
	}
}

// WithPolicy sets the organization and replacement policy of the cache.
func (b Builder) WithPolicy(policy Policy) Builder {
	b.policy = policy
	return b
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithWayAssociativity sets the number of ways of a set-associative cache.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithConfig copies every field of a config into the builder.
func (b Builder) WithConfig(c Config) Builder {
	b.policy = c.Policy
	b.byteSize = c.ByteSize
	b.wayAssociativity = c.Associativity

	return b
}

// Build builds a cache. It panics if the builder describes a cache that cannot
// exist; use Config.Validate to check user input first.
func (b Builder) Build(name string) Cache {
	config := Config{
		Policy:        b.policy,
		ByteSize:      b.byteSize,
		Associativity: b.wayAssociativity,
	}

	geometry := b.mustHaveValidGeometry(config)

	comp := &Comp{
		name:   name,
		config: config,
	}

	b.initState(comp, geometry)

	return b.applyStrategy(comp)
}

func (b Builder) initState(comp *Comp, g addressing.Geometry) {
	switch b.policy {
	case DirectMapped:
		comp.decoder = addressing.NewDecoder(g, addressing.Indexed)
		comp.tags = tagging.NewTagArray(g.NumSets, 1)
		comp.victimFinder = tagging.NewDirectVictimFinder()
	case FullyAssociativeLRU:
		comp.decoder = addressing.NewDecoder(g, addressing.FullyAssociative)
		comp.tags = tagging.NewIndexedTagArray(1, g.NumLines)
		comp.victimFinder = tagging.NewLRUVictimFinder()
	case FullyAssociativePLRU:
		comp.decoder = addressing.NewDecoder(g, addressing.FullyAssociative)
		comp.tags = tagging.NewIndexedTagArray(1, g.NumLines)
		comp.victimFinder = tagging.NewPLRUVictimFinder(1, g.NumLines)
	default:
		comp.decoder = addressing.NewDecoder(g, addressing.Indexed)
		comp.tags = tagging.NewTagArray(g.NumSets, g.Associativity)
		comp.victimFinder = tagging.NewLRUVictimFinder()
	}
}

func (b Builder) applyStrategy(comp *Comp) Cache {
	switch b.policy {
	case SetAssociativeSkipWriteMiss:
		return &skipWriteMissStrategy{Comp: comp}
	case SetAssociativePrefetch:
		return &prefetchStrategy{Comp: comp}
	case SetAssociativePrefetchOnMiss:
		return &prefetchStrategy{Comp: comp, onMissOnly: true}
	default:
		return comp
	}
}

func (b Builder) mustHaveValidGeometry(config Config) addressing.Geometry {
	if _, ok := policyNames[config.Policy]; !ok {
		panic(fmt.Sprintf("unknown cache policy: %d", int(config.Policy)))
	}

	g, err := config.Geometry()
	if err != nil {
		panic(err)
	}

	return g
}
