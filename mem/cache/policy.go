package cache

import (
	"errors"
	"fmt"
)

// RecencyPolicy decides which accesses update the LRU state of a set.
type RecencyPolicy int

const (
	// TouchOnAccess marks a way as most recently used on a hit and when a
	// line is installed into it on a miss.
	TouchOnAccess RecencyPolicy = iota

	// TouchOnHitOnly only updates the LRU state on hits. A freshly installed
	// line stays the eviction candidate, so a set keeps replacing the same
	// way until one of its lines hits. It exists to reproduce results of
	// models with that defect; prefer TouchOnAccess.
	TouchOnHitOnly
)

// ErrUnknownRecencyPolicy is returned when parsing an unrecognized policy.
var ErrUnknownRecencyPolicy = errors.New("unknown recency policy")

// ParseRecencyPolicy converts "access" or "hit-only" to a RecencyPolicy.
func ParseRecencyPolicy(s string) (RecencyPolicy, error) {
	switch s {
	case "access", "":
		return TouchOnAccess, nil
	case "hit-only":
		return TouchOnHitOnly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRecencyPolicy, s)
	}
}

func (p RecencyPolicy) String() string {
	switch p {
	case TouchOnAccess:
		return "access"
	case TouchOnHitOnly:
		return "hit-only"
	default:
		return fmt.Sprintf("RecencyPolicy(%d)", int(p))
	}
}

func (p RecencyPolicy) validate() error {
	if p != TouchOnAccess && p != TouchOnHitOnly {
		return fmt.Errorf("%w: %d", ErrUnknownRecencyPolicy, int(p))
	}

	return nil
}
