package engine

import (
	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/world"
)

// collectResources tallies a nation's full per-turn income (raw cell
// stocks, development bonuses, inner-grid tags and settlements, road
// transport) and credits the wallet once.
func (g *Game) collectResources(n *nation.Nation) world.Stock {
	var collected world.Stock

	for _, t := range n.Territory {
		cell := g.Grid.At(t)
		g.collectFromCell(cell, &collected)
		g.collectFromInner(t, &collected)
		g.collectRoadBonus(t, &collected)
	}

	for _, r := range world.Resources {
		n.Resources.Add(r, collected.Get(r))
	}
	return collected
}

// collectFromCell adds the macro cell's stock plus its development
// bonus.
func (g *Game) collectFromCell(cell *world.MacroCell, collected *world.Stock) {
	eco := g.Config.Economy

	for _, r := range world.Resources {
		collected.Add(r, cell.Resources.Get(r))
	}

	switch cell.Development {
	case world.DevFarm:
		collected.Add(world.ResourceFood, eco.FarmFoodBonus)
	case world.DevMine:
		collected.Add(world.ResourceMetal, eco.MineMetalBonus)
	case world.DevForest:
		collected.Add(world.ResourceWood, eco.ForestWoodBonus)
	}
}

// collectFromInner sweeps the inner grid: one unit per resource tag,
// development bonuses (mine doubled on mountain terrain), and
// settlement gold proportional to population.
func (g *Game) collectFromInner(t world.Coord, collected *world.Stock) {
	eco := g.Config.Economy

	g.Grid.EachMicro(t, func(_ world.Coord, mc *world.MicroCell) {
		if mc.HasResource {
			collected.Add(mc.Resource, 1)
		}

		switch mc.Development {
		case world.DevFarm:
			collected.Add(world.ResourceFood, 1)
		case world.DevForest:
			collected.Add(world.ResourceWood, 1)
		case world.DevMine:
			yield := 1
			if mc.Terrain == world.TerrainMountain {
				yield = 2
			}
			collected.Add(world.ResourceMetal, yield)
		case world.DevTown:
			collected.Add(world.ResourceGold, mc.Population/eco.TownGoldPerPop)
		case world.DevCity:
			collected.Add(world.ResourceGold, mc.Population/eco.CityGoldPerPop)
		}
	})
}

// collectRoadBonus grants one of each resource per full RoadBonusPer
// road tiles in the cell. Roads move goods that would otherwise rot
// in place.
func (g *Game) collectRoadBonus(t world.Coord, collected *world.Stock) {
	roads := 0
	g.Grid.EachMicro(t, func(_ world.Coord, mc *world.MicroCell) {
		if mc.Road {
			roads++
		}
	})
	bonus := roads / g.Config.Economy.RoadBonusPer
	if bonus <= 0 {
		return
	}
	for _, r := range world.Resources {
		collected.Add(r, bonus)
	}
}

// payUpkeep deducts gold for armies and territory, flooring the
// wallet at zero. Applied after collection, same turn.
func (g *Game) payUpkeep(n *nation.Nation) int {
	eco := g.Config.Economy
	upkeep := len(n.Armies)*eco.ArmyUpkeep + len(n.Territory)*eco.TerritoryUpkeep
	n.Resources.Add(world.ResourceGold, -upkeep)
	return upkeep
}
