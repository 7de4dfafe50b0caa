// Package cache simulates the tag behavior of a set-associative cache with
// true LRU replacement over a 16-bit address space.
//
// Only hits and misses are modeled. Lines carry no data, and there is no
// write policy or lower level.
package cache

import (
	"errors"
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// ErrInvariantViolation is returned when the replacement state of a set is
// found corrupted. It always indicates a bug, never a transient condition.
var ErrInvariantViolation = errors.New("cache invariant violated")

// Hook positions a Cache invokes hooks at.
var (
	// HookPosAccess is triggered after every access. The item is an
	// AccessResult.
	HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

	// HookPosEviction is triggered when a valid line is replaced. The item is
	// an Eviction.
	HookPosEviction = &hooking.HookPos{Name: "CacheEviction"}
)

// AccessResult describes the outcome of a single access.
type AccessResult struct {
	// Seq counts accesses since the cache was created or reset.
	Seq     uint64 `json:"seq"`
	Address uint16 `json:"address"`
	Fields  Fields `json:"fields"`
	Hit     bool   `json:"hit"`
	WayID   int    `json:"way_id"`

	// Evicted is set when a miss replaced a valid line. EvictedTag is only
	// meaningful in that case.
	Evicted    bool   `json:"evicted"`
	EvictedTag uint16 `json:"evicted_tag"`
}

// An Eviction records a valid line leaving the cache.
type Eviction struct {
	Seq   uint64
	SetID int
	WayID int
	Tag   uint16
}

// Cache is a set-associative cache. It is not safe for concurrent use;
// callers that share one must serialize access.
type Cache struct {
	hooking.HookableBase

	name         string
	geometry     Geometry
	policy       RecencyPolicy
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder

	stats       Stats
	numAccesses uint64
}

// New creates a cache with the given geometry and default settings.
func New(geometry Geometry) (*Cache, error) {
	return MakeBuilder().WithGeometry(geometry).Build()
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// Geometry returns the shape of the cache.
func (c *Cache) Geometry() Geometry {
	return c.geometry
}

// RecencyPolicy returns when the cache updates its LRU state.
func (c *Cache) RecencyPolicy() RecencyPolicy {
	return c.policy
}

// Stats returns the hits and misses accumulated since the cache was created
// or reset.
func (c *Cache) Stats() Stats {
	return c.stats
}

// ProcessRequests feeds the addresses to the cache in order and returns the
// hits and misses of this call. The cache contents carry over between calls.
//
// If the replacement state is found corrupted, processing stops and the
// returned stats cover only the accesses that completed.
func (c *Cache) ProcessRequests(addrs []uint16) (Stats, error) {
	stats := Stats{}

	for _, addr := range addrs {
		result, err := c.Access(addr)
		if err != nil {
			return stats, err
		}

		stats.record(result.Hit)
	}

	return stats, nil
}

// Access looks up a single address, installing its line on a miss.
func (c *Cache) Access(addr uint16) (AccessResult, error) {
	fields := c.geometry.Decompose(addr)
	setID := int(fields.SetIndex)

	result := AccessResult{
		Seq:     c.numAccesses,
		Address: addr,
		Fields:  fields,
	}

	block, hit := c.tags.Lookup(setID, fields.Tag)
	if hit {
		c.tags.Visit(block)

		result.Hit = true
		result.WayID = block.WayID
		c.finishAccess(result)

		return result, nil
	}

	victim, found := c.victimFinder.FindVictim(c.tags, setID)
	if !found {
		return result, fmt.Errorf(
			"%w: set %d has no least recently used way",
			ErrInvariantViolation, setID)
	}

	if victim.IsValid {
		result.Evicted = true
		result.EvictedTag = victim.Tag

		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosEviction,
			Item: Eviction{
				Seq:   result.Seq,
				SetID: victim.SetID,
				WayID: victim.WayID,
				Tag:   victim.Tag,
			},
		})
	}

	victim.Tag = fields.Tag
	victim.IsValid = true
	c.tags.Update(victim)

	if c.policy == TouchOnAccess {
		c.tags.Visit(victim)
	}

	result.WayID = victim.WayID
	c.finishAccess(result)

	return result, nil
}

func (c *Cache) finishAccess(result AccessResult) {
	c.stats.record(result.Hit)
	c.numAccesses++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosAccess,
		Item:   result,
	})
}

// Reset empties the cache and clears its statistics.
func (c *Cache) Reset() {
	c.tags.Reset()
	c.stats = Stats{}
	c.numAccesses = 0
}
