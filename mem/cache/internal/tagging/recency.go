package tagging

// RecencyMatrix tracks true LRU order among the ways of a set with a K x K
// relation. Entry (i, j) is true when way i was used more recently than way
// j. Touching a way fills its row and clears its column, so the least
// recently used way is the one whose row is all false.
type RecencyMatrix struct {
	numWays int
	bits    []bool
}

// NewRecencyMatrix returns a matrix with no relation between any two ways.
func NewRecencyMatrix(numWays int) *RecencyMatrix {
	return &RecencyMatrix{
		numWays: numWays,
		bits:    make([]bool, numWays*numWays),
	}
}

// NumWays returns the dimension of the matrix.
func (m *RecencyMatrix) NumWays() int {
	return m.numWays
}

// MoreRecent reports whether way i was used more recently than way j.
func (m *RecencyMatrix) MoreRecent(i, j int) bool {
	return m.bits[i*m.numWays+j]
}

// Set overwrites a single entry.
func (m *RecencyMatrix) Set(i, j int, moreRecent bool) {
	m.bits[i*m.numWays+j] = moreRecent
}

// Touch marks the way as the most recently used one.
func (m *RecencyMatrix) Touch(way int) {
	for j := 0; j < m.numWays; j++ {
		m.Set(way, j, true)
	}

	for i := 0; i < m.numWays; i++ {
		m.Set(i, way, false)
	}
}

// RowIsClear reports whether way i is not more recent than any way.
func (m *RecencyMatrix) RowIsClear(i int) bool {
	row := m.bits[i*m.numWays : (i+1)*m.numWays]
	for _, b := range row {
		if b {
			return false
		}
	}

	return true
}

// LeastRecent returns the lowest-indexed way whose row is clear. It returns
// false only if the relation is malformed.
func (m *RecencyMatrix) LeastRecent() (int, bool) {
	for i := 0; i < m.numWays; i++ {
		if m.RowIsClear(i) {
			return i, true
		}
	}

	return 0, false
}

// Rank returns how many ways the given way is more recent than.
func (m *RecencyMatrix) Rank(way int) int {
	rank := 0
	for j := 0; j < m.numWays; j++ {
		if m.MoreRecent(way, j) {
			rank++
		}
	}

	return rank
}

// Order lists the ways from the most to the least recently used. Ways with
// the same rank, such as unused ways, keep ascending index order.
func (m *RecencyMatrix) Order() []int {
	order := make([]int, 0, m.numWays)
	for rank := m.numWays - 1; rank >= 0; rank-- {
		for way := 0; way < m.numWays; way++ {
			if m.Rank(way) == rank {
				order = append(order, way)
			}
		}
	}

	return order
}

// Reset clears every entry.
func (m *RecencyMatrix) Reset() {
	for i := range m.bits {
		m.bits[i] = false
	}
}
