package cache

// Stats counts the outcome of accesses.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Total returns the number of accesses counted.
func (s Stats) Total() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns the fraction of accesses that hit, or 0 if there were none.
func (s Stats) HitRate() float64 {
	if s.Total() == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Total())
}

func (s *Stats) record(hit bool) {
	if hit {
		s.Hits++
	} else {
		s.Misses++
	}
}
