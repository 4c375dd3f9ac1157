package tagging

// A VictimFinder decides which block should be evicted. It is also told every
// time a block is used, so that it can keep its recency state.
type VictimFinder interface {
	// FindVictim returns the block in the set that should receive a new tag.
	FindVictim(set *Set) *Block

	// Visit records that the block has been used at logical time now.
	Visit(block *Block, now uint64)

	// Reset drops all the recency state.
	Reset()
}

// DirectVictimFinder serves sets with a single way. The only block is always
// the victim and no recency is tracked.
type DirectVictimFinder struct{}

// NewDirectVictimFinder returns a new DirectVictimFinder.
func NewDirectVictimFinder() *DirectVictimFinder {
	return &DirectVictimFinder{}
}

// FindVictim returns the first block of the set.
func (e *DirectVictimFinder) FindVictim(set *Set) *Block {
	return set.Blocks[0]
}

// Visit does nothing.
func (e *DirectVictimFinder) Visit(_ *Block, _ uint64) {}

// Reset does nothing.
func (e *DirectVictimFinder) Reset() {}

// LRUVictimFinder evicts the least recently used block, measured by the
// logical time stamped on each block.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the first invalid block of the set. If all the blocks are
// valid, it returns the block with the oldest visit time; ties go to the block
// with the lowest way ID.
func (e *LRUVictimFinder) FindVictim(set *Set) *Block {
	for _, block := range set.Blocks {
		if !block.IsValid {
			return block
		}
	}

	victim := set.Blocks[0]
	for _, block := range set.Blocks[1:] {
		if block.LastVisit < victim.LastVisit {
			victim = block
		}
	}

	return victim
}

// Visit stamps the block with the logical time.
func (e *LRUVictimFinder) Visit(block *Block, now uint64) {
	block.LastVisit = now
}

// Reset does nothing, as the visit times are kept in the blocks.
func (e *LRUVictimFinder) Reset() {}

// PLRUVictimFinder approximates LRU with one PLRUTree per set.
type PLRUVictimFinder struct {
	numWays int
	trees   []*PLRUTree
}

// NewPLRUVictimFinder creates a PLRUVictimFinder for a tag array of the given
// shape. The number of ways must be a power of two.
func NewPLRUVictimFinder(numSets, numWays int) *PLRUVictimFinder {
	e := &PLRUVictimFinder{
		numWays: numWays,
		trees:   make([]*PLRUTree, numSets),
	}

	e.Reset()

	return e
}

// FindVictim follows the tree of the set to the coldest block. Invalid blocks
// get no priority.
func (e *PLRUVictimFinder) FindVictim(set *Set) *Block {
	tree := e.trees[set.Blocks[0].SetID]
	return set.Blocks[tree.SelectVictim()]
}

// Visit points the tree of the block's set away from the block.
func (e *PLRUVictimFinder) Visit(block *Block, _ uint64) {
	e.trees[block.SetID].UpdatePath(block.WayID)
}

// Reset clears every tree.
func (e *PLRUVictimFinder) Reset() {
	for i := range e.trees {
		e.trees[i] = NewPLRUTree(e.numWays)
	}
}

// Tree returns the tree of a set.
func (e *PLRUVictimFinder) Tree(setID int) *PLRUTree {
	return e.trees[setID]
}
