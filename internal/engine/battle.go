package engine

import (
	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/world"
)

// resolveBattle runs one complete combat between an attacking army
// and the defended macro cell at target. Each invocation is a full
// resolution; nothing carries over between calls. The record is
// appended to both nations' histories.
func (g *Game) resolveBattle(attacker *nation.Army, target world.Coord) nation.BattleRecord {
	sides := g.Config.Battle.DieSides
	attackRoll := g.Random.Die(sides)
	defenseRoll := g.Random.Die(sides)
	return g.resolveBattleWithRolls(attacker, target, attackRoll, defenseRoll)
}

// resolveBattleWithRolls is the deterministic core: dice come in from
// the caller so outcomes (including exact ties) can be constructed.
func (g *Game) resolveBattleWithRolls(attacker *nation.Army, target world.Coord, attackRoll, defenseRoll int) nation.BattleRecord {
	cell := g.Grid.At(target)
	attackNation := g.Nations[attacker.NationID]
	defendNation := g.Nations[cell.Owner]

	defenders := g.defendingArmies(target)

	attackPower := g.attackPower(attacker) + attackRoll
	defensePower := g.defensePower(defenders, cell) + defenseRoll

	record := nation.BattleRecord{
		Turn:         g.Turn,
		Attacker:     attackNation.Name,
		Defender:     defendNation.Name,
		Location:     target,
		AttackPower:  attackPower,
		DefensePower: defensePower,
		AttackRoll:   attackRoll,
		DefenseRoll:  defenseRoll,
	}

	// Strict inequality: an exact tie holds the ground.
	if attackPower > defensePower {
		g.resolveAttackerVictory(&record, attacker, defenders, target, attackNation, defendNation)
	} else {
		g.resolveDefenderVictory(&record, attacker, defenders, attackNation, defendNation)
	}

	attackNation.AddBattle(record)
	defendNation.AddBattle(record)
	g.Battles.TotalBattles++
	g.Battles.powerSum += attackPower + defensePower
	g.Logf("%s attacks %s at %s: attack %d vs defense %d, %s holds the day",
		record.Attacker, record.Defender, target, attackPower, defensePower, record.Winner)

	return record
}

// defendingArmies gathers every army of the cell's owner physically
// present in its inner grid.
func (g *Game) defendingArmies(target world.Coord) []*nation.Army {
	cell := g.Grid.At(target)
	var defenders []*nation.Army
	g.Grid.EachMicro(target, func(_ world.Coord, mc *world.MicroCell) {
		if mc.ArmyID == 0 {
			return
		}
		if a := g.armyByID(mc.ArmyID); a != nil && a.NationID == cell.Owner {
			defenders = append(defenders, a)
		}
	})
	return defenders
}

// attackPower is the attacker's combat power plus the veteran bonus.
func (g *Game) attackPower(a *nation.Army) int {
	power := a.CombatPower()
	if a.Veteran() {
		power += g.Config.Battle.VeteranBonus
	}
	return power
}

// defensePower sums the defenders' combat power, castle bonuses
// (macro cell and every inner castle tile each count), and the
// mountain terrain bonus. Never below 1; even an empty cell resists.
func (g *Game) defensePower(defenders []*nation.Army, cell *world.MacroCell) int {
	bt := g.Config.Battle

	power := 0
	for _, d := range defenders {
		power += d.CombatPower()
	}

	if cell.Development == world.DevCastle {
		power += bt.CastleDefense
	}
	for x := 0; x < world.InnerSize; x++ {
		for y := 0; y < world.InnerSize; y++ {
			if cell.Inner[x][y].Development == world.DevCastle {
				power += bt.CastleDefense
			}
		}
	}

	if cell.Terrain == world.TerrainMountain {
		power += bt.MountainDefense
	}

	if power < 1 {
		power = 1
	}
	return power
}

// resolveAttackerVictory destroys every defender, transfers the cell,
// relocates the attacker into it, and awards experience.
func (g *Game) resolveAttackerVictory(record *nation.BattleRecord, attacker *nation.Army, defenders []*nation.Army, target world.Coord, attackNation, defendNation *nation.Nation) {
	record.Winner = record.Attacker

	for _, d := range defenders {
		g.destroyArmy(d)
		record.Casualties = append(record.Casualties, nation.Casualty{
			Nation:    record.Defender,
			ArmyLevel: d.Level,
			Destroyed: true,
		})
	}

	g.Grid.At(target).Owner = attacker.NationID
	defendNation.RemoveTerritory(target)
	attackNation.AddTerritory(target)

	// The conqueror moves in; the grid slot follows atomically.
	center := world.Coord{X: world.InnerSize / 2, Y: world.InnerSize / 2}
	g.placeArmy(attacker, target, center)

	exp := g.Config.Battle.WinExpBase + g.Config.Battle.WinExpPerKill*len(defenders)
	record.Experience = exp
	attacker.RecordBattle(true, exp)
}

// resolveDefenderVictory damages or destroys the attacker. A wide
// power gap, or a coin flip below it, means destruction; survivors
// limp away with gap-scaled damage.
func (g *Game) resolveDefenderVictory(record *nation.BattleRecord, attacker *nation.Army, defenders []*nation.Army, attackNation, defendNation *nation.Nation) {
	bt := g.Config.Battle
	record.Winner = record.Defender

	gap := record.DefensePower - record.AttackPower
	if gap > bt.DestroyGap || g.Random.Chance(bt.DestroyChance) {
		g.destroyArmy(attacker)
		record.Casualties = append(record.Casualties, nation.Casualty{
			Nation:    record.Attacker,
			ArmyLevel: attacker.Level,
			Destroyed: true,
		})
	} else {
		damage := gap * bt.DamagePerGap
		if damage > bt.DamageCap {
			damage = bt.DamageCap
		}
		if attacker.TakeDamage(damage) {
			g.destroyArmy(attacker)
		}
		record.Casualties = append(record.Casualties, nation.Casualty{
			Nation:    record.Attacker,
			ArmyLevel: attacker.Level,
			Damage:    damage,
		})
	}

	record.Experience = bt.DefendExp
	for _, d := range defenders {
		d.RecordBattle(true, bt.DefendExp)
	}
	attacker.RecordBattle(false, bt.ConsolationExp)
}
