package mensa

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// The venue set is fixed, so the registry ships embedded instead of being
// loaded from a configuration directory.
//
//go:embed locations.yml
var locationsYML []byte

type Location struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	FeedID       int    `yaml:"feed_id"`
	VegetableBar bool   `yaml:"vegetable_bar"`
}

type locationRegistry struct {
	Locations []Location `yaml:"locations"`
}

var (
	registryOnce sync.Once
	registry     []Location
	registryErr  error
)

func loadRegistry() {
	var parsed locationRegistry
	if err := yaml.Unmarshal(locationsYML, &parsed); err != nil {
		registryErr = fmt.Errorf("failed to parse embedded location registry: %w", err)
		return
	}
	if len(parsed.Locations) == 0 {
		registryErr = fmt.Errorf("embedded location registry is empty")
		return
	}
	registry = parsed.Locations
}

// Locations returns all known venues in registry order.
func Locations() ([]Location, error) {
	registryOnce.Do(loadRegistry)
	if registryErr != nil {
		return nil, registryErr
	}
	return registry, nil
}

// GetLocation looks up a venue by its short identifier.
func GetLocation(id string) (*Location, error) {
	locations, err := Locations()
	if err != nil {
		return nil, err
	}
	for i := range locations {
		if locations[i].ID == id {
			return &locations[i], nil
		}
	}
	return nil, fmt.Errorf("unknown location '%s'", id)
}
