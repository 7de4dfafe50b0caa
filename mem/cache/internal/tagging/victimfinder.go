package tagging

// A VictimFinder decides which block should be evicted
type VictimFinder interface {
	FindVictim(tags TagArray, setID int) (Block, bool)
}

// MRUMatrixVictimFinder evicts the least recently used block according to
// the recency matrix of the set. Empty ways have clear rows until they are
// first used, so they are filled in ascending order before any valid line
// is evicted.
type MRUMatrixVictimFinder struct {
}

// NewMRUMatrixVictimFinder returns a newly constructed LRU victim finder.
func NewMRUMatrixVictimFinder() *MRUMatrixVictimFinder {
	e := new(MRUMatrixVictimFinder)
	return e
}

// FindVictim returns the least recently used block in a set. It returns
// false if the recency matrix has no clear row.
func (e *MRUMatrixVictimFinder) FindVictim(
	tags TagArray,
	setID int,
) (Block, bool) {
	set := tags.GetSet(setID)

	wayID, ok := set.Recency.LeastRecent()
	if !ok {
		return Block{}, false
	}

	return set.Blocks[wayID], true
}
