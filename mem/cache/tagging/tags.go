// Package tagging keeps track of which memory blocks are stored in a cache.
package tagging

import (
	"fmt"
)

// A Block of a cache is the information that is associated with a cache line.
type Block struct {
	SetID     int
	WayID     int
	Tag       uint64
	IsValid   bool
	LastVisit uint64
}

// A Set is a list of blocks where a certain piece memory can be stored at.
type Set struct {
	Blocks []*Block
}

// A TagArray is the table of all the blocks of a cache, organized in sets.
//
// An indexed TagArray additionally maintains a tag-to-way map per set so that
// a lookup in a wide set does not need to scan every way. The map is only
// written by Install and Reset, so it always agrees with the blocks.
type TagArray struct {
	NumSets int
	NumWays int
	Sets    []Set

	indexed bool
	index   []map[uint64]int
}

// NewTagArray creates a tag array that looks blocks up by scanning the ways of
// a set.
func NewTagArray(numSets, numWays int) *TagArray {
	t := &TagArray{
		NumSets: numSets,
		NumWays: numWays,
	}

	t.Reset()

	return t
}

// NewIndexedTagArray creates a tag array that looks blocks up through a
// tag-to-way map.
func NewIndexedTagArray(numSets, numWays int) *TagArray {
	t := &TagArray{
		NumSets: numSets,
		NumWays: numWays,
		indexed: true,
	}

	t.Reset()

	return t
}

// IsIndexed tells if the tag array maintains a tag index.
func (t *TagArray) IsIndexed() bool {
	return t.indexed
}

// GetSet returns the set with the given ID.
func (t *TagArray) GetSet(setID int) *Set {
	return &t.Sets[setID]
}

// Lookup finds the valid block of a set that holds the tag.
func (t *TagArray) Lookup(setID int, tag uint64) (*Block, bool) {
	set := &t.Sets[setID]

	if t.indexed {
		wayID, ok := t.index[setID][tag]
		if !ok {
			return nil, false
		}

		return set.Blocks[wayID], true
	}

	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return nil, false
}

// Install places the tag in the block and marks the block valid. If the block
// was holding another tag, that tag is returned as evicted.
func (t *TagArray) Install(
	block *Block,
	tag uint64,
) (evictedTag uint64, evicted bool) {
	if block.IsValid {
		evictedTag, evicted = block.Tag, true
	}

	if t.indexed {
		setIndex := t.index[block.SetID]
		if evicted && setIndex[evictedTag] == block.WayID {
			delete(setIndex, evictedTag)
		}

		setIndex[tag] = block.WayID
	}

	block.Tag = tag
	block.IsValid = true

	return evictedTag, evicted
}

// Reset will mark all the blocks in the tag array invalid.
func (t *TagArray) Reset() {
	t.Sets = make([]Set, t.NumSets)
	for i := 0; i < t.NumSets; i++ {
		t.Sets[i].Blocks = make([]*Block, t.NumWays)
		for j := 0; j < t.NumWays; j++ {
			t.Sets[i].Blocks[j] = &Block{
				SetID: i,
				WayID: j,
			}
		}
	}

	if !t.indexed {
		t.index = nil
		return
	}

	t.index = make([]map[uint64]int, t.NumSets)
	for i := range t.index {
		t.index[i] = make(map[uint64]int, t.NumWays)
	}
}

// Snapshot returns a copy of every block, set by set.
func (t *TagArray) Snapshot() []Block {
	blocks := make([]Block, 0, t.NumSets*t.NumWays)

	for _, set := range t.Sets {
		for _, block := range set.Blocks {
			blocks = append(blocks, *block)
		}
	}

	return blocks
}

// NumValid returns the number of valid blocks.
func (t *TagArray) NumValid() int {
	n := 0

	for _, set := range t.Sets {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}

	return n
}

// VerifyIndex rebuilds the tag index from the blocks and reports the first
// difference from the maintained index. It always succeeds on a tag array
// that is not indexed.
func (t *TagArray) VerifyIndex() error {
	if !t.indexed {
		return nil
	}

	for setID, set := range t.Sets {
		expected := make(map[uint64]int, t.NumWays)

		for _, block := range set.Blocks {
			if !block.IsValid {
				continue
			}

			if other, dup := expected[block.Tag]; dup {
				return fmt.Errorf("set %d: tag 0x%x is held by ways %d and %d",
					setID, block.Tag, other, block.WayID)
			}

			expected[block.Tag] = block.WayID
		}

		actual := t.index[setID]
		if len(actual) != len(expected) {
			return fmt.Errorf("set %d: index has %d keys, table has %d tags",
				setID, len(actual), len(expected))
		}

		for tag, wayID := range expected {
			if got, ok := actual[tag]; !ok || got != wayID {
				return fmt.Errorf("set %d: tag 0x%x should map to way %d",
					setID, tag, wayID)
			}
		}
	}

	return nil
}
