package world

import (
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/dominion/internal/rng"
)

// GenConfig holds map generation parameters. Defaults reproduce the
// standard world; counts and retry bounds are exposed so tuning can
// override them.
type GenConfig struct {
	OceanRegions     int     // square ocean regions to attempt
	OceanMinSize     int     // region edge length, inclusive range
	OceanMaxSize     int
	OceanAttempts    int     // placement retries per region
	MountainCount    int     // single-cell mountains to attempt
	MountainAttempts int     // placement retries per mountain
	RiverCount       int     // rivers to attempt
	RiverAttempts    int     // start-cell retries per river
	GoldChance       float64 // independent gold deposit probability per cell
}

// DefaultGenConfig returns the standard world parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		OceanRegions:     3,
		OceanMinSize:     2,
		OceanMaxSize:     4,
		OceanAttempts:    50,
		MountainCount:    5,
		MountainAttempts: 20,
		RiverCount:       2,
		RiverAttempts:    50,
		GoldChance:       0.15,
	}
}

// Generator builds a fully populated Grid from a seeded random source.
type Generator struct {
	cfg    GenConfig
	random *rng.Source

	// Noise fields for contiguous inner-terrain patches; both derive
	// from the same seed as the random source, so generation stays
	// reproducible.
	mountainNoise opensimplex.Noise
	riverNoise    opensimplex.Noise
}

// NewGenerator creates a generator drawing exclusively from random.
func NewGenerator(cfg GenConfig, random *rng.Source) *Generator {
	return &Generator{
		cfg:           cfg,
		random:        random,
		mountainNoise: opensimplex.NewNormalized(random.Seed() + 1),
		riverNoise:    opensimplex.NewNormalized(random.Seed() + 2),
	}
}

// Generate produces the complete world map. Terrain features land in
// fixed order: base land, oceans, mountains, rivers, then resources.
func (g *Generator) Generate() *Grid {
	grid := NewGrid()

	g.initLand(grid)
	oceans := g.generateOceans(grid)
	g.generateMountains(grid)
	g.generateRivers(grid, oceans)
	g.distributeResources(grid)

	return grid
}

// initLand sets every macro cell to land with a patched inner grid.
func (g *Generator) initLand(grid *Grid) {
	grid.Each(func(c Coord, cell *MacroCell) {
		cell.Terrain = TerrainLand
		*cell.Inner = g.landInnerGrid(c)
	})
}

// landInnerGrid builds an inner grid that is mostly land with small
// contiguous mountain and river patches, sampled from noise at global
// micro resolution so patches cross tile seams naturally.
func (g *Generator) landInnerGrid(macro Coord) MicroGrid {
	var inner MicroGrid
	for i := 0; i < InnerSize; i++ {
		for j := 0; j < InnerSize; j++ {
			gx := float64(macro.X*InnerSize+i) * 0.17
			gy := float64(macro.Y*InnerSize+j) * 0.17

			terrain := TerrainLand
			if g.mountainNoise.Eval2(gx, gy) > 0.88 {
				terrain = TerrainMountain
			} else if g.riverNoise.Eval2(gx, gy) > 0.9 {
				terrain = TerrainRiver
			}

			cell := MicroCell{Terrain: terrain, Level: 1}
			if g.random.Chance(0.2) {
				cell.HasResource = true
				cell.Resource = g.randomResource()
			}
			inner[i][j] = cell
		}
	}
	return inner
}

// generateOceans stamps square ocean regions, skipping any placement
// that would overlap an existing ocean. Retries are bounded; a region
// that cannot be placed is silently abandoned.
func (g *Generator) generateOceans(grid *Grid) []Coord {
	var oceans []Coord

	for i := 0; i < g.cfg.OceanRegions; i++ {
		for attempt := 0; attempt < g.cfg.OceanAttempts; attempt++ {
			anchor := Coord{
				X: g.random.IntBetween(1, Size-3),
				Y: g.random.IntBetween(1, Size-3),
			}
			size := g.random.IntBetween(g.cfg.OceanMinSize, g.cfg.OceanMaxSize)

			if g.oceanOverlaps(grid, anchor, size) {
				continue
			}

			for x := anchor.X; x < anchor.X+size && x < Size; x++ {
				for y := anchor.Y; y < anchor.Y+size && y < Size; y++ {
					c := Coord{X: x, Y: y}
					cell := grid.At(c)
					cell.Terrain = TerrainOcean
					*cell.Inner = oceanInnerGrid()
					oceans = append(oceans, c)
				}
			}
			break
		}
	}

	if len(oceans) == 0 {
		slog.Warn("no ocean regions placed, rivers will be skipped")
	}
	return oceans
}

func (g *Generator) oceanOverlaps(grid *Grid, anchor Coord, size int) bool {
	for x := anchor.X; x < anchor.X+size && x < Size; x++ {
		for y := anchor.Y; y < anchor.Y+size && y < Size; y++ {
			if grid.At(Coord{X: x, Y: y}).Terrain == TerrainOcean {
				return true
			}
		}
	}
	return false
}

func oceanInnerGrid() MicroGrid {
	var inner MicroGrid
	for i := 0; i < InnerSize; i++ {
		for j := 0; j < InnerSize; j++ {
			inner[i][j] = MicroCell{Terrain: TerrainOcean, Level: 1}
		}
	}
	return inner
}

// generateMountains converts random land cells to mountains with an
// inner grid biased heavily toward mountain terrain.
func (g *Generator) generateMountains(grid *Grid) {
	for i := 0; i < g.cfg.MountainCount; i++ {
		for attempt := 0; attempt < g.cfg.MountainAttempts; attempt++ {
			c := Coord{
				X: g.random.IntBetween(0, Size-1),
				Y: g.random.IntBetween(0, Size-1),
			}
			cell := grid.At(c)
			if cell.Terrain != TerrainLand {
				continue
			}
			cell.Terrain = TerrainMountain
			*cell.Inner = g.mountainInnerGrid()
			break
		}
	}
}

func (g *Generator) mountainInnerGrid() MicroGrid {
	var inner MicroGrid
	for i := 0; i < InnerSize; i++ {
		for j := 0; j < InnerSize; j++ {
			cell := MicroCell{Terrain: TerrainLand, Level: 1}
			if g.random.Chance(0.8) {
				cell.Terrain = TerrainMountain
				if g.random.Chance(0.3) {
					cell.HasResource = true
					cell.Resource = ResourceMetal
				}
			}
			inner[i][j] = cell
		}
	}
	return inner
}

// generateRivers routes rivers from inland land cells to the nearest
// ocean. With no oceans on the map there is nothing to flow into and
// the step is a no-op.
func (g *Generator) generateRivers(grid *Grid, oceans []Coord) {
	if len(oceans) == 0 {
		return
	}
	for i := 0; i < g.cfg.RiverCount; i++ {
		g.generateRiver(grid, oceans)
	}
}

func (g *Generator) generateRiver(grid *Grid, oceans []Coord) {
	start, ok := g.findInlandStart(grid)
	if !ok {
		return
	}

	// Nearest ocean by straight-line distance.
	nearest := oceans[0]
	best := start.Distance(nearest)
	for _, o := range oceans[1:] {
		if d := start.Distance(o); d < best {
			best = d
			nearest = o
		}
	}

	path := FindPath(start, nearest, func(c Coord) bool {
		t := grid.At(c).Terrain
		return t == TerrainLand || t == TerrainOcean
	})
	if path == nil {
		return
	}

	// Every land cell on the path becomes river; the ocean endpoint
	// is left alone.
	for _, c := range path[:len(path)-1] {
		cell := grid.At(c)
		if cell.Terrain != TerrainLand {
			continue
		}
		cell.Terrain = TerrainRiver
		cell.Resources.Add(ResourceFood, 2)
		*cell.Inner = g.riverInnerGrid()
	}
}

func (g *Generator) findInlandStart(grid *Grid) (Coord, bool) {
	for attempt := 0; attempt < g.cfg.RiverAttempts; attempt++ {
		c := Coord{
			X: g.random.IntBetween(0, Size-1),
			Y: g.random.IntBetween(0, Size-1),
		}
		if grid.At(c).Terrain != TerrainLand {
			continue
		}
		coastal := false
		for _, n := range c.Neighbors(Size) {
			if grid.At(n).Terrain == TerrainOcean {
				coastal = true
				break
			}
		}
		if !coastal {
			return c, true
		}
	}
	return Coord{}, false
}

// riverInnerGrid is mostly land carrying food tags, cut by one or two
// straight water channels.
func (g *Generator) riverInnerGrid() MicroGrid {
	var inner MicroGrid
	for i := 0; i < InnerSize; i++ {
		for j := 0; j < InnerSize; j++ {
			cell := MicroCell{Terrain: TerrainLand, Level: 1}
			if g.random.Chance(0.25) {
				cell.HasResource = true
				cell.Resource = ResourceFood
			}
			inner[i][j] = cell
		}
	}

	channels := g.random.IntBetween(1, 2)
	for ch := 0; ch < channels; ch++ {
		lane := g.random.IntBetween(2, InnerSize-3)
		width := g.random.IntBetween(1, 2)
		horizontal := g.random.Chance(0.5)

		for run := 0; run < InnerSize; run++ {
			for w := 0; w < width && lane+w < InnerSize; w++ {
				var cell *MicroCell
				if horizontal {
					cell = &inner[run][lane+w]
				} else {
					cell = &inner[lane+w][run]
				}
				cell.Terrain = TerrainRiver
				cell.HasResource = true
				cell.Resource = ResourceFood
			}
		}
	}
	return inner
}

// distributeResources stocks every macro cell by terrain, plus an
// independent chance of a gold deposit.
func (g *Generator) distributeResources(grid *Grid) {
	grid.Each(func(_ Coord, cell *MacroCell) {
		switch cell.Terrain {
		case TerrainLand:
			cell.Resources.Add(ResourceWood, g.random.IntBetween(1, 5))
			cell.Resources.Add(ResourceFood, g.random.IntBetween(1, 3))
		case TerrainMountain:
			cell.Resources.Add(ResourceMetal, g.random.IntBetween(2, 8))
		case TerrainRiver:
			cell.Resources.Add(ResourceFood, g.random.IntBetween(3, 6))
		}
		if g.random.Chance(g.cfg.GoldChance) {
			cell.Resources.Add(ResourceGold, g.random.IntBetween(1, 3))
		}
	})
}

func (g *Generator) randomResource() Resource {
	return Resources[g.random.Pick(len(Resources))]
}
