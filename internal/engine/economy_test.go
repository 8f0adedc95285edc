package engine

import (
	"testing"

	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/rng"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

// newBareGame builds a game on an empty hand-stocked grid, bypassing
// generation so tests control every cell.
func newBareGame(cfg tuning.Tuning) *Game {
	g := &Game{
		ID:         "test",
		Seed:       1,
		Random:     rng.New(1),
		Grid:       world.NewGrid(),
		Config:     cfg,
		armies:     make(map[int]*nation.Army),
		nextArmyID: 1,
		fallen:     make(map[int]bool),
	}
	for i := 0; i < nation.Count; i++ {
		g.Nations = append(g.Nations, nation.New(i))
	}
	return g
}

// claim stocks nothing; it just wires ownership both ways.
func claim(g *Game, n *nation.Nation, c world.Coord) {
	g.Grid.At(c).Owner = n.ID
	n.AddTerritory(c)
}

func TestCollectResourcesFromCellStock(t *testing.T) {
	g := newBareGame(tuning.Default())
	n := g.Nations[0]
	c := world.Coord{X: 2, Y: 2}
	claim(g, n, c)

	cell := g.Grid.At(c)
	cell.Resources.Add(world.ResourceWood, 3)
	cell.Resources.Add(world.ResourceFood, 2)

	collected := g.collectResources(n)
	if got := collected.Get(world.ResourceWood); got != 3 {
		t.Fatalf("wood collected = %d, want 3", got)
	}
	if got := collected.Get(world.ResourceFood); got != 2 {
		t.Fatalf("food collected = %d, want 2", got)
	}
	// Credited to the wallet on top of the opening stock.
	if got := n.Resources.Get(world.ResourceWood); got != 53 {
		t.Fatalf("wallet wood = %d, want 53", got)
	}
}

func TestCollectResourcesDevelopmentBonuses(t *testing.T) {
	g := newBareGame(tuning.Default())
	n := g.Nations[0]
	c := world.Coord{X: 1, Y: 1}
	claim(g, n, c)
	g.Grid.At(c).Development = world.DevFarm

	collected := g.collectResources(n)
	if got := collected.Get(world.ResourceFood); got != g.Config.Economy.FarmFoodBonus {
		t.Fatalf("farm food = %d, want %d", got, g.Config.Economy.FarmFoodBonus)
	}
}

func TestCollectResourcesInnerGrid(t *testing.T) {
	g := newBareGame(tuning.Default())
	n := g.Nations[0]
	c := world.Coord{X: 4, Y: 4}
	claim(g, n, c)

	// Two resource tags, a mountain mine, and a city of 250.
	mc := g.Grid.Micro(c, world.Coord{X: 0, Y: 0})
	mc.HasResource = true
	mc.Resource = world.ResourceMetal

	mc = g.Grid.Micro(c, world.Coord{X: 1, Y: 0})
	mc.HasResource = true
	mc.Resource = world.ResourceGold

	mc = g.Grid.Micro(c, world.Coord{X: 2, Y: 0})
	mc.Terrain = world.TerrainMountain
	mc.Development = world.DevMine

	mc = g.Grid.Micro(c, world.Coord{X: 3, Y: 0})
	mc.Development = world.DevCity
	mc.Population = 250

	collected := g.collectResources(n)
	// Tag 1 plus doubled mountain mine yield.
	if got := collected.Get(world.ResourceMetal); got != 3 {
		t.Fatalf("metal = %d, want 3", got)
	}
	// Tag 1 plus 250/CityGoldPerPop.
	wantGold := 1 + 250/g.Config.Economy.CityGoldPerPop
	if got := collected.Get(world.ResourceGold); got != wantGold {
		t.Fatalf("gold = %d, want %d", got, wantGold)
	}
}

func TestCollectRoadBonus(t *testing.T) {
	g := newBareGame(tuning.Default())
	n := g.Nations[0]
	c := world.Coord{X: 5, Y: 5}
	claim(g, n, c)

	// Seven road tiles with RoadBonusPer 5 yields one of each.
	for i := 0; i < 7; i++ {
		g.Grid.Micro(c, world.Coord{X: i, Y: 9}).Road = true
	}

	collected := g.collectResources(n)
	for _, r := range world.Resources {
		if got := collected.Get(r); got != 1 {
			t.Fatalf("road bonus %s = %d, want 1", r, got)
		}
	}
}

func TestPayUpkeep(t *testing.T) {
	g := newBareGame(tuning.Default())
	n := g.Nations[0]
	for i := 0; i < 5; i++ {
		claim(g, n, world.Coord{X: i, Y: 0})
	}
	for i := 0; i < 3; i++ {
		n.AddArmy(nation.NewArmy(i+1, n.ID, world.Coord{X: 0, Y: 0}))
	}

	// 3 armies at 2 gold plus 5 cells at 1 gold.
	if upkeep := g.payUpkeep(n); upkeep != 11 {
		t.Fatalf("upkeep = %d, want 11", upkeep)
	}
	if got := n.Resources.Get(world.ResourceGold); got != 89 {
		t.Fatalf("gold after upkeep = %d, want 89", got)
	}
}

func TestPayUpkeepFloorsAtZero(t *testing.T) {
	g := newBareGame(tuning.Default())
	n := g.Nations[0]
	n.Resources = world.Stock{}
	claim(g, n, world.Coord{X: 0, Y: 0})

	g.payUpkeep(n)
	if got := n.Resources.Get(world.ResourceGold); got != 0 {
		t.Fatalf("gold = %d, want floor 0", got)
	}
}
