// Package addressing splits memory addresses into the offset, index and tag
// fields used by the cache models.
package addressing

import (
	"errors"
	"fmt"
	"math/bits"
)

// BlockBytes is the size of every cache block.
const BlockBytes = 32

// OffsetBits is the number of low address bits that select a byte in a block.
const OffsetBits = 5

var (
	// ErrNotPowerOfTwo is returned when a size must be a power of two but is
	// not.
	ErrNotPowerOfTwo = errors.New("not a power of two")

	// ErrBadAssociativity is returned when the associativity cannot divide the
	// cache lines into whole sets.
	ErrBadAssociativity = errors.New("invalid associativity")
)

// Geometry describes the shape of a cache. A Geometry can only be created with
// NewGeometry and does not change afterward.
type Geometry struct {
	TotalBytes    uint64
	BlockBytes    uint64
	NumLines      int
	Associativity int
	NumSets       int
}

// NewGeometry returns the geometry of a cache of totalBytes bytes in which
// every set holds associativity lines.
func NewGeometry(totalBytes uint64, associativity int) (Geometry, error) {
	if totalBytes < BlockBytes || !isPowerOfTwo(totalBytes) {
		return Geometry{}, fmt.Errorf(
			"cache size %d must be a power-of-two multiple of %d bytes: %w",
			totalBytes, BlockBytes, ErrNotPowerOfTwo)
	}

	numLines := int(totalBytes / BlockBytes)

	if associativity < 1 || !isPowerOfTwo(uint64(associativity)) {
		return Geometry{}, fmt.Errorf(
			"associativity %d must be a positive power of two: %w",
			associativity, ErrBadAssociativity)
	}

	if associativity > numLines {
		return Geometry{}, fmt.Errorf(
			"associativity %d exceeds the %d lines of the cache: %w",
			associativity, numLines, ErrBadAssociativity)
	}

	g := Geometry{
		TotalBytes:    totalBytes,
		BlockBytes:    BlockBytes,
		NumLines:      numLines,
		Associativity: associativity,
		NumSets:       numLines / associativity,
	}

	return g, nil
}

// IndexBits returns the number of address bits that select a set.
func (g Geometry) IndexBits() int {
	return bits.TrailingZeros64(uint64(g.NumSets))
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
