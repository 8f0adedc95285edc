package engine

import (
	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/world"
)

// runAI executes one nation's decision pass in fixed order: diplomacy
// drift, trade resolution, trade creation, army movement, army
// creation, then development, expansion, and roads. Every random draw
// routes through the game's single source.
func (g *Game) runAI(n *nation.Nation) {
	g.updateDiplomacy(n)
	g.resolveTradeOffers(n)
	g.createTradeOffer(n)
	g.moveArmies(n)
	g.considerArmyCreation(n)
	g.developLand(n)
	g.expandTerritory(n)
	g.buildRoads(n)
}

// updateDiplomacy walks the other nations in id order, backfilling
// missing relation entries and occasionally re-rolling one. A re-roll
// is mirrored on both tables and logged only when it changed.
func (g *Game) updateDiplomacy(n *nation.Nation) {
	for _, other := range g.Nations {
		if other.ID == n.ID {
			continue
		}
		if _, ok := n.Diplomacy[other.ID]; !ok {
			n.SetRelation(other.ID, nation.RelationNeutral)
		}
		if !g.Random.Chance(g.Config.AI.DiplomacyDriftChance) {
			continue
		}
		current := n.RelationWith(other.ID)
		next := nation.AllRelations[g.Random.Pick(len(nation.AllRelations))]
		if next == current {
			continue
		}
		n.SetRelation(other.ID, next)
		other.SetRelation(n.ID, next)
		g.Logf("%s and %s are now at %s", n.Name, other.Name, next)
	}
}

// resolveTradeOffers accepts or keeps each queued offer. Acceptance
// needs a shortage of the incoming resource, an affordable price, and
// either warm relations with the offerer or a lucky draw.
func (g *Game) resolveTradeOffers(n *nation.Nation) {
	ai := g.Config.AI
	kept := n.TradeOffers[:0]
	for _, o := range n.TradeOffers {
		offerer := g.Nations[o.From]
		short := n.Resources.Get(o.Give) < ai.ShortageThreshold
		canPay := n.Resources.Get(o.Want) >= o.WantAmount
		rel := n.RelationWith(o.From)
		warm := rel == nation.RelationTrade || rel == nation.RelationPeace

		if !short || !canPay || !(warm || g.Random.Chance(ai.TradeAcceptChance)) {
			kept = append(kept, o)
			continue
		}

		n.Resources.Add(o.Give, o.GiveAmount)
		n.Resources.Add(o.Want, -o.WantAmount)
		offerer.Resources.Add(o.Give, -o.GiveAmount)
		offerer.Resources.Add(o.Want, o.WantAmount)
		g.Logf("%s accepted trade from %s: %d %s for %d %s",
			n.Name, offerer.Name, o.GiveAmount, o.Give, o.WantAmount, o.Want)
	}
	n.TradeOffers = kept
}

// createTradeOffer occasionally enqueues a proposal on a random
// partner's queue, offering a fraction of a well-stocked resource.
func (g *Game) createTradeOffer(n *nation.Nation) {
	ai := g.Config.AI
	if !g.Random.Chance(ai.TradeOfferChance) {
		return
	}

	var partners []*nation.Nation
	for _, other := range g.Nations {
		if other.ID != n.ID && !other.Eliminated() {
			partners = append(partners, other)
		}
	}
	if len(partners) == 0 {
		return
	}
	partner := partners[g.Random.Pick(len(partners))]
	if n.RelationWith(partner.ID) == nation.RelationWar {
		return
	}

	give := world.Resources[g.Random.Pick(len(world.Resources))]
	want := give
	for want == give {
		want = world.Resources[g.Random.Pick(len(world.Resources))]
	}

	stock := n.Resources.Get(give)
	if stock < ai.MinOfferStock {
		return
	}

	offer := nation.TradeOffer{
		From:         n.ID,
		Give:         give,
		GiveAmount:   int(float64(stock) * ai.OfferFraction),
		Want:         want,
		WantAmount:   g.Random.IntBetween(ai.WantMin, ai.WantMax),
		ReceivedTurn: g.Turn,
	}
	partner.AddTradeOffer(offer)
	g.Logf("%s offered %s %d %s for %d %s",
		n.Name, partner.Name, offer.GiveAmount, give, offer.WantAmount, want)
}

// moveArmies gives each army one action: march on a warring neighbor,
// grab adjacent unclaimed land, or wander. Exhausted armies spend the
// turn resting instead, recovering their budget and some health.
func (g *Game) moveArmies(n *nation.Nation) {
	ai := g.Config.AI

	// Battles can destroy the mover mid-loop; iterate a snapshot and
	// re-check liveness against the registry each step.
	roster := make([]*nation.Army, len(n.Armies))
	copy(roster, n.Armies)

	for _, a := range roster {
		if g.armyByID(a.ID) == nil {
			continue
		}
		if !a.CanMove() {
			a.ResetMovement()
			a.Heal(ai.RestHeal)
			continue
		}

		dest, ok := g.pickDestination(n, a)
		if !ok {
			continue
		}

		cell := g.Grid.At(dest)
		if cell.Terrain == world.TerrainMountain {
			// Impassable; the point is not spent.
			continue
		}

		a.SpendMovement(1)

		if cell.Claimed() && cell.Owner != n.ID {
			g.resolveBattle(a, dest)
			continue
		}

		g.seatArmy(a, dest)

		if !cell.Claimed() {
			cell.Owner = n.ID
			n.AddTerritory(dest)
			g.Logf("%s claimed territory at %s", n.Name, dest)
		}

		switch cell.Terrain {
		case world.TerrainOcean:
			a.SpendMovement(ai.OceanMoveCost)
		case world.TerrainRiver:
			a.RefundMovement(ai.RiverMoveRefund)
		}
	}
}

// pickDestination chooses the army's step for this turn: a warring
// neighbor first (axis priority, x before y), then a random unclaimed
// passable neighbor, then an occasional wander.
func (g *Game) pickDestination(n *nation.Nation, a *nation.Army) (world.Coord, bool) {
	neighbors := a.Pos.Neighbors(world.Size)

	for _, nb := range neighbors {
		cell := g.Grid.At(nb)
		if !cell.Claimed() || cell.Owner == n.ID {
			continue
		}
		if n.RelationWith(cell.Owner) != nation.RelationWar {
			continue
		}
		step := a.Pos
		if nb.X != a.Pos.X {
			step.X += sign(nb.X - a.Pos.X)
		} else {
			step.Y += sign(nb.Y - a.Pos.Y)
		}
		return step, true
	}

	var unclaimed []world.Coord
	for _, nb := range neighbors {
		cell := g.Grid.At(nb)
		if !cell.Claimed() && cell.Terrain != world.TerrainOcean && cell.Terrain != world.TerrainMountain {
			unclaimed = append(unclaimed, nb)
		}
	}
	if len(unclaimed) > 0 {
		return unclaimed[g.Random.Pick(len(unclaimed))], true
	}

	if g.Random.Chance(g.Config.AI.WanderChance) && len(neighbors) > 0 {
		return neighbors[g.Random.Pick(len(neighbors))], true
	}

	return world.Coord{}, false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// seatArmy moves an army into a macro cell, preferring the center
// micro slot, then the first free land slot in scan order. With every
// slot taken the army holds the cell without an inner position.
func (g *Game) seatArmy(a *nation.Army, dest world.Coord) {
	center := world.Coord{X: world.InnerSize / 2, Y: world.InnerSize / 2}
	if g.freeSlot(dest, center) {
		g.placeArmy(a, dest, center)
		return
	}
	for x := 0; x < world.InnerSize; x++ {
		for y := 0; y < world.InnerSize; y++ {
			ic := world.Coord{X: x, Y: y}
			if g.freeSlot(dest, ic) {
				g.placeArmy(a, dest, ic)
				return
			}
		}
	}
	g.removeArmyFromGrid(a)
	a.Pos = dest
}

// freeSlot reports whether a micro slot can seat an army: land
// terrain and no current occupant.
func (g *Game) freeSlot(pos world.Coord, inner world.Coord) bool {
	mc := g.Grid.Micro(pos, inner)
	return mc.ArmyID == 0 && mc.Terrain == world.TerrainLand
}

// considerArmyCreation raises a new army at a populated settlement
// when gold allows. The settlement tier caps the army's level.
func (g *Game) considerArmyCreation(n *nation.Nation) {
	ai := g.Config.AI
	gold := n.Resources.Get(world.ResourceGold)
	if !g.Random.Chance(ai.ArmyCreateChance) || gold <= ai.ArmyGoldGate {
		return
	}

	type site struct {
		pos   world.Coord
		inner world.Coord
		dev   world.Development
	}
	var sites []site
	for _, t := range n.Territory {
		g.Grid.EachMicro(t, func(ic world.Coord, mc *world.MicroCell) {
			if (mc.Development == world.DevTown || mc.Development == world.DevCity) &&
				mc.Population >= ai.SettlementMinPop {
				sites = append(sites, site{pos: t, inner: ic, dev: mc.Development})
			}
		})
	}
	if len(sites) == 0 {
		return
	}
	s := sites[g.Random.Pick(len(sites))]

	levelCap := ai.TownArmyLevelCap
	if s.dev == world.DevCity {
		levelCap = ai.CityArmyLevelCap
	}
	level := gold/ai.GoldPerArmyLevel + 1
	if level > levelCap {
		level = levelCap
	}

	inner := g.adjacentFreeSlot(s.pos, s.inner)
	g.CreateArmy(n, s.pos, inner, level)
}

// adjacentFreeSlot finds an unoccupied land micro cell next to the
// given inner coordinate, nil when none is free.
func (g *Game) adjacentFreeSlot(pos world.Coord, inner world.Coord) *world.Coord {
	for _, ic := range inner.Neighbors(world.InnerSize) {
		if g.freeSlot(pos, ic) {
			c := ic
			return &c
		}
	}
	return nil
}

// developLand occasionally converts one undeveloped owned macro tile
// into a farm, mine, forest, or town for a flat gold cost. Mountains
// only ever take mines.
func (g *Game) developLand(n *nation.Nation) {
	ai := g.Config.AI
	if !g.Random.Chance(ai.DevelopChance) || n.Resources.Get(world.ResourceGold) < ai.DevelopCost {
		return
	}

	var undeveloped []world.Coord
	for _, t := range n.Territory {
		if g.Grid.At(t).Development == world.DevNone {
			undeveloped = append(undeveloped, t)
		}
	}
	if len(undeveloped) == 0 {
		return
	}

	target := undeveloped[g.Random.Pick(len(undeveloped))]
	cell := g.Grid.At(target)

	options := []world.Development{world.DevFarm, world.DevMine, world.DevForest, world.DevTown}
	if cell.Terrain == world.TerrainMountain {
		options = []world.Development{world.DevMine}
	}
	cell.Development = options[g.Random.Pick(len(options))]

	n.Resources.Add(world.ResourceGold, -ai.DevelopCost)
	g.Logf("%s developed %s at %s", n.Name, cell.Development, target)
}

// expandTerritory occasionally claims one adjacent unclaimed macro
// tile. Ocean and mountain tiles are never claimed this way.
func (g *Game) expandTerritory(n *nation.Nation) {
	if !g.Random.Chance(g.Config.AI.ExpandChance) {
		return
	}

	seen := make(map[world.Coord]bool)
	var candidates []world.Coord
	for _, t := range n.Territory {
		for _, nb := range t.Neighbors(world.Size) {
			if seen[nb] {
				continue
			}
			seen[nb] = true
			cell := g.Grid.At(nb)
			if cell.Claimed() || cell.Terrain == world.TerrainOcean || cell.Terrain == world.TerrainMountain {
				continue
			}
			candidates = append(candidates, nb)
		}
	}
	if len(candidates) == 0 {
		return
	}

	target := candidates[g.Random.Pick(len(candidates))]
	g.Grid.At(target).Owner = n.ID
	n.AddTerritory(target)
	g.Logf("%s expanded to %s", n.Name, target)
}

// buildRoads occasionally links two settlements inside one owned
// macro cell with a straight coordinate-stepped road. Only untouched
// land micro cells take road markings.
func (g *Game) buildRoads(n *nation.Nation) {
	if !g.Random.Chance(g.Config.AI.RoadChance) || len(n.Territory) == 0 {
		return
	}

	t := n.Territory[g.Random.Pick(len(n.Territory))]

	var settlements []world.Coord
	g.Grid.EachMicro(t, func(ic world.Coord, mc *world.MicroCell) {
		if mc.Development.IsSettlement() {
			settlements = append(settlements, ic)
		}
	})
	if len(settlements) < 2 {
		return
	}

	i := g.Random.Pick(len(settlements))
	j := g.Random.Pick(len(settlements))
	if i == j {
		j = (j + 1) % len(settlements)
	}

	marked := g.stampRoad(t, settlements[i], settlements[j])
	if marked > 0 {
		g.Logf("%s built a road at %s", n.Name, t)
	}
}

// stampRoad walks from a toward b one axis step at a time, x before
// y, marking eligible cells. The endpoints themselves, being
// settlements, are never marked.
func (g *Game) stampRoad(pos world.Coord, a, b world.Coord) int {
	marked := 0
	cur := a
	for cur != b {
		if cur.X != b.X {
			cur.X += sign(b.X - cur.X)
		} else {
			cur.Y += sign(b.Y - cur.Y)
		}
		mc := g.Grid.Micro(pos, cur)
		if mc.Terrain == world.TerrainLand && !mc.Road && mc.Development == world.DevNone {
			mc.Road = true
			marked++
		}
	}
	return marked
}
