package trace

import (
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// SetUsage counts what happened in one set.
type SetUsage struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// SetUsageTracer is a hook that counts hits, misses, and evictions per set,
// which shows how evenly a trace spreads over the sets.
type SetUsageTracer struct {
	usage []SetUsage
}

// NewSetUsageTracer creates a new SetUsageTracer.
func NewSetUsageTracer() *SetUsageTracer {
	return &SetUsageTracer{}
}

// Func counts the access or eviction.
func (t *SetUsageTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		r := ctx.Item.(cache.AccessResult)
		u := t.setUsage(int(r.Fields.SetIndex))

		if r.Hit {
			u.Hits++
		} else {
			u.Misses++
		}
	case cache.HookPosEviction:
		e := ctx.Item.(cache.Eviction)
		t.setUsage(e.SetID).Evictions++
	}
}

func (t *SetUsageTracer) setUsage(setID int) *SetUsage {
	for len(t.usage) <= setID {
		t.usage = append(t.usage, SetUsage{})
	}

	return &t.usage[setID]
}

// NumSets returns one past the highest set index seen.
func (t *SetUsageTracer) NumSets() int {
	return len(t.usage)
}

// Usage returns the counts of a set. Sets never touched report zeros.
func (t *SetUsageTracer) Usage(setID int) SetUsage {
	if setID < 0 || setID >= len(t.usage) {
		return SetUsage{}
	}

	return t.usage[setID]
}
