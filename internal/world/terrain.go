// Package world holds the two-level spatial grid and its procedural
// generator: terrain, rivers, oceans, and resource placement.
package world

import (
	"encoding/json"
	"log/slog"
)

// Terrain classifies a cell at either grid level.
type Terrain uint8

const (
	TerrainLand Terrain = iota
	TerrainOcean
	TerrainMountain
	TerrainRiver
)

// String returns the wire/name form of a terrain value.
func (t Terrain) String() string {
	switch t {
	case TerrainLand:
		return "land"
	case TerrainOcean:
		return "ocean"
	case TerrainMountain:
		return "mountain"
	case TerrainRiver:
		return "river"
	default:
		return "land"
	}
}

// ParseTerrain converts an external string to a Terrain. Unknown input
// falls back to land with a warning; external data is corrected, not
// rejected.
func ParseTerrain(s string) Terrain {
	switch s {
	case "land":
		return TerrainLand
	case "ocean":
		return TerrainOcean
	case "mountain":
		return TerrainMountain
	case "river":
		return TerrainRiver
	default:
		slog.Warn("invalid terrain, using land", "value", s)
		return TerrainLand
	}
}

// Passable reports whether armies can enter this terrain.
func (t Terrain) Passable() bool {
	return t != TerrainMountain
}

func (t Terrain) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Terrain) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTerrain(s)
	return nil
}

// Development is the built improvement on a cell.
type Development uint8

const (
	DevNone Development = iota
	DevFarm
	DevMine
	DevForest
	DevTown
	DevCity
	DevCastle
)

// String returns the wire/name form of a development value.
func (d Development) String() string {
	switch d {
	case DevNone:
		return "none"
	case DevFarm:
		return "farm"
	case DevMine:
		return "mine"
	case DevForest:
		return "forest"
	case DevTown:
		return "town"
	case DevCity:
		return "city"
	case DevCastle:
		return "castle"
	default:
		return "none"
	}
}

// ParseDevelopment converts an external string to a Development,
// falling back to none with a warning on unknown input.
func ParseDevelopment(s string) Development {
	switch s {
	case "none":
		return DevNone
	case "farm":
		return DevFarm
	case "mine":
		return DevMine
	case "forest":
		return DevForest
	case "town":
		return DevTown
	case "city":
		return DevCity
	case "castle":
		return DevCastle
	default:
		slog.Warn("invalid development, using none", "value", s)
		return DevNone
	}
}

// IsSettlement reports whether the development houses population.
func (d Development) IsSettlement() bool {
	return d == DevTown || d == DevCity
}

func (d Development) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Development) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDevelopment(s)
	return nil
}

// Resource identifies one of the four stockpiled resource types.
type Resource uint8

const (
	ResourceGold Resource = iota
	ResourceWood
	ResourceFood
	ResourceMetal
)

// Resources lists every resource type in canonical order.
var Resources = [4]Resource{ResourceGold, ResourceWood, ResourceFood, ResourceMetal}

// String returns the wire/name form of a resource value.
func (r Resource) String() string {
	switch r {
	case ResourceGold:
		return "gold"
	case ResourceWood:
		return "wood"
	case ResourceFood:
		return "food"
	case ResourceMetal:
		return "metal"
	default:
		return "gold"
	}
}

// ParseResource converts an external string to a Resource, falling
// back to gold with a warning on unknown input.
func ParseResource(s string) Resource {
	switch s {
	case "gold":
		return ResourceGold
	case "wood":
		return ResourceWood
	case "food":
		return ResourceFood
	case "metal":
		return ResourceMetal
	default:
		slog.Warn("invalid resource, using gold", "value", s)
		return ResourceGold
	}
}

func (r Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseResource(s)
	return nil
}

// Stock is a per-resource integer quantity, indexable by Resource.
type Stock [4]int

// Get returns the stocked amount of one resource.
func (s Stock) Get(r Resource) int { return s[r] }

// Add increases one resource, clamping the result at zero.
func (s *Stock) Add(r Resource, n int) {
	s[r] += n
	if s[r] < 0 {
		s[r] = 0
	}
}

// Total returns the sum across all four resources.
func (s Stock) Total() int {
	return s[0] + s[1] + s[2] + s[3]
}

func (s Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{
		"gold":  s[ResourceGold],
		"wood":  s[ResourceWood],
		"food":  s[ResourceFood],
		"metal": s[ResourceMetal],
	})
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for name, n := range m {
		r := ParseResource(name)
		if n < 0 {
			n = 0
		}
		s[r] = n
	}
	return nil
}
