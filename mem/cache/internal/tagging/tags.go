// Package tagging keeps the tag store and the replacement state of a
// set-associative cache.
package tagging

// TagArray records which memory line every way of every set holds.
type TagArray interface {
	Lookup(setID int, tag uint16) (Block, bool)
	Update(block Block)
	Visit(block Block)
	GetSet(setID int) *Set
	NumSets() int
	NumWays() int
	Reset()
}

// NewTagArray creates a tag array with every way empty and no recency
// information.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
	}

	t.Reset()

	return t
}

// A Block is the tag slot of a single way. A block that is not valid holds no
// line and its Tag is meaningless.
type Block struct {
	Tag     uint16
	SetID   int
	WayID   int
	IsValid bool
}

// A Set is the group of ways a certain address maps to.
type Set struct {
	Blocks  []Block
	Recency *RecencyMatrix
}

type tagArrayImpl struct {
	numSets int
	numWays int
	sets    []Set
}

func (d *tagArrayImpl) NumSets() int {
	return d.numSets
}

func (d *tagArrayImpl) NumWays() int {
	return d.numWays
}

// GetSet returns the set with the given index.
func (d *tagArrayImpl) GetSet(setID int) *Set {
	return &d.sets[setID]
}

// Lookup scans the ways of a set in ascending order and returns the first
// valid block that holds the tag.
func (d *tagArrayImpl) Lookup(setID int, tag uint16) (Block, bool) {
	set := &d.sets[setID]
	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

// Update overwrites the slot addressed by the block's set and way.
func (d *tagArrayImpl) Update(block Block) {
	d.sets[block.SetID].Blocks[block.WayID] = block
}

// Visit marks the block as the most recently used one of its set.
func (d *tagArrayImpl) Visit(block Block) {
	d.sets[block.SetID].Recency.Touch(block.WayID)
}

// Reset empties every way and forgets all recency information.
func (d *tagArrayImpl) Reset() {
	if d.sets == nil {
		d.allocate()
		return
	}

	for i := range d.sets {
		set := &d.sets[i]
		for j := range set.Blocks {
			set.Blocks[j] = Block{SetID: i, WayID: j}
		}

		set.Recency.Reset()
	}
}

func (d *tagArrayImpl) allocate() {
	d.sets = make([]Set, d.numSets)
	for i := 0; i < d.numSets; i++ {
		blocks := make([]Block, d.numWays)
		for j := range blocks {
			blocks[j] = Block{SetID: i, WayID: j}
		}

		d.sets[i] = Set{
			Blocks:  blocks,
			Recency: NewRecencyMatrix(d.numWays),
		}
	}
}
