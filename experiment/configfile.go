package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/cachesim/mem/cache"
)

// configFile is the layout of a YAML file that lists caches to compare.
//
//	caches:
//	  - name: L1
//	    line_size: 16
//	    sets: 4
//	    ways: 2
type configFile struct {
	Caches []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		LineSize    int    `yaml:"line_size"`
		Sets        int    `yaml:"sets"`
		Ways        int    `yaml:"ways"`
	} `yaml:"caches"`
}

// ParseConfigs reads configurations from YAML. Names and descriptions that
// are left out are generated from the geometry.
func ParseConfigs(data []byte) ([]Config, error) {
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse configs: %w", err)
	}

	if len(file.Caches) == 0 {
		return nil, fmt.Errorf("parse configs: no caches listed")
	}

	configs := make([]Config, 0, len(file.Caches))
	names := make(map[string]bool)

	for i, c := range file.Caches {
		g := cache.Geometry{
			LineSize:      c.LineSize,
			SetCount:      c.Sets,
			Associativity: c.Ways,
		}

		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("cache %d: %w", i, err)
		}

		config := Custom(g)
		if c.Name != "" {
			config.Name = c.Name
		}

		if c.Description != "" {
			config.Description = c.Description
		}

		if names[config.Name] {
			return nil, fmt.Errorf("cache %d: duplicated name %q", i, config.Name)
		}

		names[config.Name] = true
		configs = append(configs, config)
	}

	return configs, nil
}

// LoadConfigs reads configurations from a YAML file.
func LoadConfigs(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configs: %w", err)
	}

	return ParseConfigs(data)
}
