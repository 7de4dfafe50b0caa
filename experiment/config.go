// Package experiment runs address traces through sets of cache
// configurations and reports the results.
package experiment

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache"
)

// Config is one cache to evaluate.
type Config struct {
	Name        string
	Description string
	Geometry    cache.Geometry
}

// Canonical returns the four 128-byte caches with 16-byte lines, ranging from
// direct mapped to fully associative.
func Canonical() []Config {
	return []Config{
		{
			Name:        "Test 1",
			Description: "128 byte 1-way cache with 16 bytes per line (direct mapped)",
			Geometry:    cache.Geometry{LineSize: 16, SetCount: 8, Associativity: 1},
		},
		{
			Name:        "Test 2",
			Description: "128 byte 2-way set associative cache with 16 bytes per line",
			Geometry:    cache.Geometry{LineSize: 16, SetCount: 4, Associativity: 2},
		},
		{
			Name:        "Test 3",
			Description: "128 byte 4-way set associative cache with 16 bytes per line",
			Geometry:    cache.Geometry{LineSize: 16, SetCount: 2, Associativity: 4},
		},
		{
			Name:        "Test 4",
			Description: "128 byte 8-way associative cache with 16 bytes per line (fully associative)",
			Geometry:    cache.Geometry{LineSize: 16, SetCount: 1, Associativity: 8},
		},
	}
}

// Custom describes a single cache of the given geometry.
func Custom(g cache.Geometry) Config {
	return Config{
		Name:        fmt.Sprintf("%dx%dx%d", g.LineSize, g.SetCount, g.Associativity),
		Description: fmt.Sprintf("%d byte %d-way cache with %d bytes per line",
			g.ByteSize(), g.Associativity, g.LineSize),
		Geometry: g,
	}
}
