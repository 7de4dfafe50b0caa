package cache

import (
	"errors"
	"fmt"
	"math/bits"
)

// AddressBits is the width of the simulated address space.
const AddressBits = 16

// ErrInvalidGeometry is returned when a cache is configured with a shape that
// cannot be simulated.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// Geometry is the shape of a set-associative cache. It does not change after
// the cache is created.
type Geometry struct {
	// LineSize is the number of bytes per cache line.
	LineSize int `json:"line_size"`
	// SetCount is the number of sets.
	SetCount int `json:"set_count"`
	// Associativity is the number of ways per set.
	Associativity int `json:"associativity"`
}

// Fields are the parts an address is split into.
type Fields struct {
	Offset   uint16 `json:"offset"`
	SetIndex uint16 `json:"set_index"`
	Tag      uint16 `json:"tag"`
}

// Validate checks that the line size and set count are powers of two, that
// each set has at least one way, and that a 16-bit address still has room
// for the tag.
func (g Geometry) Validate() error {
	if !isPowerOfTwo(g.LineSize) {
		return fmt.Errorf("%w: line size %d is not a power of two",
			ErrInvalidGeometry, g.LineSize)
	}

	if !isPowerOfTwo(g.SetCount) {
		return fmt.Errorf("%w: set count %d is not a power of two",
			ErrInvalidGeometry, g.SetCount)
	}

	if g.Associativity < 1 {
		return fmt.Errorf("%w: associativity must be at least 1, got %d",
			ErrInvalidGeometry, g.Associativity)
	}

	if g.OffsetBits()+g.SetBits() > AddressBits {
		return fmt.Errorf(
			"%w: %d offset bits and %d set bits exceed a %d-bit address",
			ErrInvalidGeometry, g.OffsetBits(), g.SetBits(), AddressBits)
	}

	return nil
}

// OffsetBits returns log2(LineSize).
func (g Geometry) OffsetBits() int {
	return log2(g.LineSize)
}

// SetBits returns log2(SetCount).
func (g Geometry) SetBits() int {
	return log2(g.SetCount)
}

// TagBits returns the number of address bits left for the tag.
func (g Geometry) TagBits() int {
	return AddressBits - g.SetBits() - g.OffsetBits()
}

// ByteSize returns the capacity of the cache in bytes.
func (g Geometry) ByteSize() int {
	return g.LineSize * g.SetCount * g.Associativity
}

// Decompose splits an address into offset, set index, and tag. The geometry
// must be valid.
func (g Geometry) Decompose(addr uint16) Fields {
	offsetBits := uint(g.OffsetBits())
	setBits := uint(g.SetBits())

	return Fields{
		Offset:   addr & uint16(g.LineSize-1),
		SetIndex: (addr >> offsetBits) & uint16(g.SetCount-1),
		Tag:      uint16(uint32(addr) >> (offsetBits + setBits)),
	}
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dB lines x %d sets x %d ways",
		g.LineSize, g.SetCount, g.Associativity)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) int {
	if n <= 0 {
		return 0
	}

	return bits.Len(uint(n)) - 1
}
