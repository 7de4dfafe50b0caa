package cache

// State is a copy of the contents of a cache at one point in time.
type State struct {
	Name     string     `json:"name"`
	Geometry Geometry   `json:"geometry"`
	Policy   string     `json:"policy"`
	Stats    Stats      `json:"stats"`
	Sets     []SetState `json:"sets"`
}

// SetState is the content of one set. RecencyOrder lists way indexes from
// the most to the least recently used.
type SetState struct {
	Index        int        `json:"index"`
	Ways         []WayState `json:"ways"`
	RecencyOrder []int      `json:"recency_order"`
}

// WayState is the tag slot of one way. Tag is only meaningful if Valid.
type WayState struct {
	Valid bool   `json:"valid"`
	Tag   uint16 `json:"tag"`
}

// Snapshot copies out the tags and recency order of every set.
func (c *Cache) Snapshot() State {
	state := State{
		Name:     c.name,
		Geometry: c.geometry,
		Policy:   c.policy.String(),
		Stats:    c.stats,
		Sets:     make([]SetState, c.tags.NumSets()),
	}

	for i := range state.Sets {
		set := c.tags.GetSet(i)

		ways := make([]WayState, len(set.Blocks))
		for j, block := range set.Blocks {
			ways[j] = WayState{Valid: block.IsValid, Tag: block.Tag}
		}

		state.Sets[i] = SetState{
			Index:        i,
			Ways:         ways,
			RecencyOrder: set.Recency.Order(),
		}
	}

	return state
}
