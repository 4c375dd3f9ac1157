package cache

import (
	"errors"
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
)

// KB is the number of bytes in a kilobyte.
const KB = 1024

// ErrUnknownPolicy is returned for a Config whose policy is not defined.
var ErrUnknownPolicy = errors.New("unknown cache policy")

// Policy selects the organization and the replacement behavior of a cache.
type Policy int

const (
	// DirectMapped caches hold one block per set.
	DirectMapped Policy = iota

	// FullyAssociativeLRU caches hold any block anywhere and evict the least
	// recently used one.
	FullyAssociativeLRU

	// FullyAssociativePLRU caches hold any block anywhere and pick victims
	// with a pseudo-LRU tree.
	FullyAssociativePLRU

	// SetAssociative caches evict the least recently used block of a set.
	SetAssociative

	// SetAssociativeSkipWriteMiss caches do not allocate on a store miss.
	SetAssociativeSkipWriteMiss

	// SetAssociativePrefetch caches also bring in the next block after every
	// access.
	SetAssociativePrefetch

	// SetAssociativePrefetchOnMiss caches also bring in the next block after
	// every miss.
	SetAssociativePrefetchOnMiss
)

var policyNames = map[Policy]string{
	DirectMapped:                 "direct-mapped",
	FullyAssociativeLRU:          "fully-associative-lru",
	FullyAssociativePLRU:         "fully-associative-plru",
	SetAssociative:               "set-associative",
	SetAssociativeSkipWriteMiss:  "set-associative-skip-write-miss",
	SetAssociativePrefetch:       "set-associative-prefetch",
	SetAssociativePrefetchOnMiss: "set-associative-prefetch-on-miss",
}

func (p Policy) String() string {
	name, ok := policyNames[p]
	if !ok {
		return fmt.Sprintf("Policy(%d)", int(p))
	}

	return name
}

// IsSetAssociative tells if the policy is one of the set-associative ones.
func (p Policy) IsSetAssociative() bool {
	return p >= SetAssociative && p <= SetAssociativePrefetchOnMiss
}

// Config is the record that fully describes a cache.
//
// Associativity is only read by the set-associative policies. Direct-mapped
// caches always have one way and fully-associative caches have as many ways
// as lines.
type Config struct {
	Policy        Policy
	ByteSize      uint64
	Associativity int
}

// Validate checks that a cache can be built from the config.
func (c Config) Validate() error {
	if _, ok := policyNames[c.Policy]; !ok {
		return fmt.Errorf("%v: %w", c.Policy, ErrUnknownPolicy)
	}

	_, err := c.Geometry()

	return err
}

// Geometry returns the geometry of the cache described by the config. Only
// set-associative policies read Associativity.
func (c Config) Geometry() (addressing.Geometry, error) {
	var assoc int

	switch {
	case c.Policy == DirectMapped:
		assoc = 1
	case c.Policy.IsSetAssociative():
		assoc = c.Associativity
	default:
		assoc = int(c.ByteSize / addressing.BlockBytes)
	}

	return addressing.NewGeometry(c.ByteSize, assoc)
}

// Label returns the human-readable description of the config used in reports.
func (c Config) Label() string {
	switch c.Policy {
	case DirectMapped:
		return "direct map " + formatSize(c.ByteSize)
	case FullyAssociativeLRU:
		return "fully assoc true-LRU"
	case FullyAssociativePLRU:
		return "fully assoc pseudo-LRU"
	case SetAssociative:
		return fmt.Sprintf("set assoc %d", c.Associativity)
	case SetAssociativeSkipWriteMiss:
		return fmt.Sprintf("set assoc %d skip on write miss", c.Associativity)
	case SetAssociativePrefetch:
		return fmt.Sprintf("set assoc %d prefetch", c.Associativity)
	case SetAssociativePrefetchOnMiss:
		return fmt.Sprintf("set assoc %d prefetch on miss", c.Associativity)
	default:
		return c.Policy.String()
	}
}

func formatSize(bytes uint64) string {
	if bytes%KB != 0 {
		return fmt.Sprintf("%dB", bytes)
	}

	return fmt.Sprintf("%2dKB", bytes/KB)
}

// Build validates the config and builds a cache named after its label.
func (c Config) Build() (Cache, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("cannot build %q: %w", c.Label(), err)
	}

	return MakeBuilder().WithConfig(c).Build(c.Label()), nil
}

// DefaultConfigs returns the reference line-up of caches: four direct-mapped
// sizes, both fully-associative policies, and every set-associative policy at
// associativity 2, 4, 8 and 16. Everything except the direct-mapped caches is
// 16KB.
func DefaultConfigs() []Config {
	configs := []Config{
		{Policy: DirectMapped, ByteSize: 1 * KB},
		{Policy: DirectMapped, ByteSize: 4 * KB},
		{Policy: DirectMapped, ByteSize: 16 * KB},
		{Policy: DirectMapped, ByteSize: 32 * KB},
		{Policy: FullyAssociativeLRU, ByteSize: 16 * KB},
		{Policy: FullyAssociativePLRU, ByteSize: 16 * KB},
	}

	setAssociative := []Policy{
		SetAssociative,
		SetAssociativeSkipWriteMiss,
		SetAssociativePrefetch,
		SetAssociativePrefetchOnMiss,
	}

	for _, p := range setAssociative {
		for _, assoc := range []int{2, 4, 8, 16} {
			configs = append(configs, Config{
				Policy:        p,
				ByteSize:      16 * KB,
				Associativity: assoc,
			})
		}
	}

	return configs
}
