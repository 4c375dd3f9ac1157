package tagging

import (
	"fmt"
	"math/bits"
)

// A PLRUTree is a complete binary tree of decision bits over a group of
// slots. Node n has its children at 2n+1 (left) and 2n+2 (right); the leaves
// are the slots, numbered from left to right.
//
// A clear bit sends the victim search to the right child and a set bit sends
// it to the left child. The search records a 0 for every right turn and a 1
// for every left turn, so the recorded path is the bitwise complement of the
// slot number.
type PLRUTree struct {
	numLeaves int
	depth     int
	bits      []bool
}

// NewPLRUTree creates a tree over numLeaves slots with all the bits clear.
func NewPLRUTree(numLeaves int) *PLRUTree {
	if numLeaves < 1 || numLeaves&(numLeaves-1) != 0 {
		panic(fmt.Sprintf("plru tree needs a power-of-two leaf count, got %d",
			numLeaves))
	}

	return &PLRUTree{
		numLeaves: numLeaves,
		depth:     bits.TrailingZeros(uint(numLeaves)),
		bits:      make([]bool, numLeaves-1),
	}
}

// NumLeaves returns the number of slots covered by the tree.
func (t *PLRUTree) NumLeaves() int {
	return t.numLeaves
}

// Depth returns the number of decisions between the root and a leaf.
func (t *PLRUTree) Depth() int {
	return t.depth
}

// Bits returns a copy of the decision bits in array order.
func (t *PLRUTree) Bits() []bool {
	out := make([]bool, len(t.bits))
	copy(out, t.bits)

	return out
}

// SelectVictim walks from the root to a leaf and returns the slot reached.
func (t *PLRUTree) SelectVictim() int {
	node := 0
	path := 0

	for i := 0; i < t.depth; i++ {
		if !t.bits[node] {
			node = 2*node + 2
			path <<= 1
		} else {
			node = 2*node + 1
			path = path<<1 | 1
		}
	}

	return (t.numLeaves - 1) - path
}

// UpdatePath makes every node on the way to slot point away from it.
func (t *PLRUTree) UpdatePath(slot int) {
	node := 0
	path := (t.numLeaves - 1) - slot

	for i := 0; i < t.depth; i++ {
		shift := t.depth - 1 - i
		direction := (path >> shift) & 1

		t.bits[node] = (slot>>shift)&1 == 1

		if direction == 0 {
			node = 2*node + 2
		} else {
			node = 2*node + 1
		}
	}
}
