package world

import (
	"testing"

	"github.com/talgya/dominion/internal/rng"
)

func generate(seed int64) *Grid {
	gen := NewGenerator(DefaultGenConfig(), rng.New(seed))
	return gen.Generate()
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate(42)
	b := generate(42)

	a.Each(func(c Coord, cell *MacroCell) {
		other := b.At(c)
		if cell.Terrain != other.Terrain {
			t.Fatalf("terrain mismatch at %s: %s vs %s", c, cell.Terrain, other.Terrain)
		}
		if cell.Resources != other.Resources {
			t.Fatalf("resource mismatch at %s: %+v vs %+v", c, cell.Resources, other.Resources)
		}
		if *cell.Inner != *other.Inner {
			t.Fatalf("inner grid mismatch at %s", c)
		}
	})
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	a := generate(1)
	b := generate(2)

	same := true
	a.Each(func(c Coord, cell *MacroCell) {
		if cell.Terrain != b.At(c).Terrain {
			same = false
		}
	})
	if same {
		t.Fatal("seeds 1 and 2 produced identical terrain")
	}
}

func TestGenerateTerrainCounts(t *testing.T) {
	grid := generate(7)
	cfg := DefaultGenConfig()

	oceans := grid.FindTerrain(TerrainOcean)
	if len(oceans) == 0 {
		t.Fatal("no ocean cells placed")
	}
	maxOcean := cfg.OceanRegions * cfg.OceanMaxSize * cfg.OceanMaxSize
	if len(oceans) > maxOcean {
		t.Fatalf("ocean cells = %d, max %d", len(oceans), maxOcean)
	}

	mountains := grid.FindTerrain(TerrainMountain)
	if len(mountains) > cfg.MountainCount {
		t.Fatalf("mountain cells = %d, max %d", len(mountains), cfg.MountainCount)
	}

	if len(grid.FindTerrain(TerrainLand)) == 0 {
		t.Fatal("no land cells placed")
	}
}

func TestGenerateResourceRanges(t *testing.T) {
	grid := generate(99)

	grid.Each(func(c Coord, cell *MacroCell) {
		r := cell.Resources
		switch cell.Terrain {
		case TerrainLand:
			if w := r.Get(ResourceWood); w < 1 || w > 5 {
				t.Fatalf("land wood at %s = %d, want 1..5", c, w)
			}
			if f := r.Get(ResourceFood); f < 1 || f > 3 {
				t.Fatalf("land food at %s = %d, want 1..3", c, f)
			}
		case TerrainMountain:
			if m := r.Get(ResourceMetal); m < 2 || m > 8 {
				t.Fatalf("mountain metal at %s = %d, want 2..8", c, m)
			}
		case TerrainRiver:
			// River paths carry a flat bonus on top of the stocked range.
			if f := r.Get(ResourceFood); f < 5 || f > 8 {
				t.Fatalf("river food at %s = %d, want 5..8", c, f)
			}
		case TerrainOcean:
			if r.Get(ResourceWood) != 0 || r.Get(ResourceFood) != 0 || r.Get(ResourceMetal) != 0 {
				t.Fatalf("ocean at %s stocked with %v", c, r)
			}
		}
		if g := r.Get(ResourceGold); g < 0 || g > 3 {
			t.Fatalf("gold at %s = %d, want 0..3", c, g)
		}
	})
}

func TestGenerateRiversTouchOceanRoute(t *testing.T) {
	grid := generate(12345)

	rivers := grid.FindTerrain(TerrainRiver)
	if len(rivers) == 0 {
		t.Skip("no rivers placed for this seed")
	}
	// Every river cell sits on a route, so it has at least one river or
	// ocean neighbor.
	for _, c := range rivers {
		connected := false
		for _, n := range c.Neighbors(Size) {
			switch grid.At(n).Terrain {
			case TerrainRiver, TerrainOcean:
				connected = true
			}
		}
		if !connected && len(rivers) > 1 {
			t.Fatalf("river cell at %s is isolated", c)
		}
	}
}

func TestGenerateInnerGridsMatchTerrain(t *testing.T) {
	grid := generate(55)

	grid.Each(func(c Coord, cell *MacroCell) {
		if cell.Terrain != TerrainOcean {
			return
		}
		for i := 0; i < InnerSize; i++ {
			for j := 0; j < InnerSize; j++ {
				if cell.Inner[i][j].Terrain != TerrainOcean {
					t.Fatalf("ocean cell %s has %s inner tile", c, cell.Inner[i][j].Terrain)
				}
			}
		}
	})
}
