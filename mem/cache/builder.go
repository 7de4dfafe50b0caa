package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Builder can build caches.
type Builder struct {
	name             string
	lineSize         int
	numSets          int
	wayAssociativity int
	recencyPolicy    RecencyPolicy
	hooks            []hooking.Hook
}

// MakeBuilder creates a new builder. By default it builds a 128-byte direct
// mapped cache with 16-byte lines.
func MakeBuilder() Builder {
	return Builder{
		name:             "Cache",
		lineSize:         16,
		numSets:          8,
		wayAssociativity: 1,
		recencyPolicy:    TouchOnAccess,
	}
}

// WithName sets the name of the cache.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithLineSize sets the number of bytes per cache line.
func (b Builder) WithLineSize(lineSize int) Builder {
	b.lineSize = lineSize
	return b
}

// WithNumSets sets the number of sets.
func (b Builder) WithNumSets(numSets int) Builder {
	b.numSets = numSets
	return b
}

// WithWayAssociativity sets the number of ways per set.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithGeometry sets line size, set count, and associativity at once.
func (b Builder) WithGeometry(g Geometry) Builder {
	b.lineSize = g.LineSize
	b.numSets = g.SetCount
	b.wayAssociativity = g.Associativity

	return b
}

// WithRecencyPolicy sets when the cache updates its LRU state.
func (b Builder) WithRecencyPolicy(policy RecencyPolicy) Builder {
	b.recencyPolicy = policy
	return b
}

// WithHook registers a hook on every cache built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, 0, len(b.hooks)+1)
	hooks = append(hooks, b.hooks...)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates a cache. It fails with ErrInvalidGeometry if the configured
// shape cannot be simulated.
func (b Builder) Build() (*Cache, error) {
	geometry := Geometry{
		LineSize:      b.lineSize,
		SetCount:      b.numSets,
		Associativity: b.wayAssociativity,
	}

	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	if err := b.recencyPolicy.validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		name:         b.name,
		geometry:     geometry,
		policy:       b.recencyPolicy,
		tags:         tagging.NewTagArray(b.numSets, b.wayAssociativity),
		victimFinder: tagging.NewMRUMatrixVictimFinder(),
	}

	for _, hook := range b.hooks {
		c.AcceptHook(hook)
	}

	return c, nil
}
