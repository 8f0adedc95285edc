package engine

import (
	"testing"

	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

// raise places a funded army for n at pos without drawing randomness.
func raise(t *testing.T, g *Game, n *nation.Nation, pos world.Coord, inner world.Coord, level int) *nation.Army {
	t.Helper()
	n.Resources.Add(world.ResourceGold, 1000)
	n.Resources.Add(world.ResourceWood, 1000)
	n.Resources.Add(world.ResourceFood, 1000)
	n.Resources.Add(world.ResourceMetal, 1000)
	a := g.CreateArmy(n, pos, &inner, level)
	if a == nil {
		t.Fatal("CreateArmy refused a funded request")
	}
	return a
}

func TestBattleTieHoldsGround(t *testing.T) {
	cfg := tuning.Default()
	cfg.Battle.DestroyChance = 0 // no coin flip; outcome follows the gap alone
	g := newBareGame(cfg)

	att, def := g.Nations[0], g.Nations[1]
	home := world.Coord{X: 0, Y: 0}
	target := world.Coord{X: 0, Y: 1}
	claim(g, att, home)
	claim(g, def, target)

	attacker := raise(t, g, att, home, world.Coord{X: 5, Y: 5}, 2)
	raise(t, g, def, target, world.Coord{X: 5, Y: 5}, 2)

	// Identical armies and equal rolls tie exactly.
	record := g.resolveBattleWithRolls(attacker, target, 3, 3)
	if record.Winner != def.Name {
		t.Fatalf("winner = %q, want defender on a tie", record.Winner)
	}
	if record.AttackPower != record.DefensePower {
		t.Fatalf("powers = %d vs %d, expected a tie", record.AttackPower, record.DefensePower)
	}
	if g.Grid.At(target).Owner != def.ID {
		t.Fatal("tie transferred the cell")
	}
	// Zero gap means zero damage and no destruction.
	if attacker.Health != nation.MaxHealth {
		t.Fatalf("attacker health = %d, want untouched", attacker.Health)
	}
	if attacker.Defeats != 1 {
		t.Fatalf("attacker defeats = %d, want 1", attacker.Defeats)
	}
}

func TestBattleAttackerVictory(t *testing.T) {
	cfg := tuning.Default()
	g := newBareGame(cfg)

	att, def := g.Nations[0], g.Nations[1]
	home := world.Coord{X: 0, Y: 0}
	target := world.Coord{X: 0, Y: 1}
	claim(g, att, home)
	claim(g, def, target)

	attacker := raise(t, g, att, home, world.Coord{X: 5, Y: 5}, 8)
	defender := raise(t, g, def, target, world.Coord{X: 4, Y: 4}, 1)

	record := g.resolveBattleWithRolls(attacker, target, 6, 1)
	if record.Winner != att.Name {
		t.Fatalf("winner = %q, want attacker", record.Winner)
	}
	if g.Grid.At(target).Owner != att.ID {
		t.Fatal("cell not transferred to the attacker")
	}
	if !att.HasTerritory(target) || def.HasTerritory(target) {
		t.Fatal("territory lists out of sync with the grid")
	}
	if g.armyByID(defender.ID) != nil {
		t.Fatal("defender survived an attacker victory")
	}
	if len(record.Casualties) != 1 || !record.Casualties[0].Destroyed {
		t.Fatalf("casualties = %v", record.Casualties)
	}

	// Conqueror relocates to the center of the taken cell.
	if attacker.Pos != target {
		t.Fatalf("attacker pos = %s, want %s", attacker.Pos, target)
	}
	center := world.Coord{X: world.InnerSize / 2, Y: world.InnerSize / 2}
	if attacker.Inner == nil || *attacker.Inner != center {
		t.Fatalf("attacker inner = %v, want center", attacker.Inner)
	}
	if g.Grid.Micro(target, center).ArmyID != attacker.ID {
		t.Fatal("occupancy not recorded at the new slot")
	}

	wantExp := cfg.Battle.WinExpBase + cfg.Battle.WinExpPerKill
	if record.Experience != wantExp {
		t.Fatalf("experience = %d, want %d", record.Experience, wantExp)
	}
}

func TestBattleWideGapDestroysAttacker(t *testing.T) {
	cfg := tuning.Default()
	cfg.Battle.DestroyChance = 0
	g := newBareGame(cfg)

	att, def := g.Nations[0], g.Nations[1]
	home := world.Coord{X: 0, Y: 0}
	target := world.Coord{X: 0, Y: 1}
	claim(g, att, home)
	claim(g, def, target)

	attacker := raise(t, g, att, home, world.Coord{X: 5, Y: 5}, 1)
	raise(t, g, def, target, world.Coord{X: 5, Y: 5}, 10)

	before := g.Battles.TotalCasualties
	record := g.resolveBattleWithRolls(attacker, target, 1, 6)
	if record.Winner != def.Name {
		t.Fatalf("winner = %q, want defender", record.Winner)
	}
	if g.armyByID(attacker.ID) != nil {
		t.Fatal("attacker should be destroyed across a wide gap")
	}
	if len(att.Armies) != 0 {
		t.Fatal("destroyed attacker still on the roster")
	}
	if g.Grid.Micro(home, world.Coord{X: 5, Y: 5}).ArmyID != 0 {
		t.Fatal("destroyed attacker still occupies its slot")
	}
	if g.Battles.TotalCasualties != before+1 {
		t.Fatalf("casualty count = %d, want %d", g.Battles.TotalCasualties, before+1)
	}
}

func TestBattleNarrowGapDamagesAttacker(t *testing.T) {
	cfg := tuning.Default()
	cfg.Battle.DestroyChance = 0
	g := newBareGame(cfg)

	att, def := g.Nations[0], g.Nations[1]
	home := world.Coord{X: 0, Y: 0}
	target := world.Coord{X: 0, Y: 1}
	claim(g, att, home)
	claim(g, def, target)

	attacker := raise(t, g, att, home, world.Coord{X: 5, Y: 5}, 2)
	raise(t, g, def, target, world.Coord{X: 5, Y: 5}, 4)

	record := g.resolveBattleWithRolls(attacker, target, 2, 2)
	gap := record.DefensePower - record.AttackPower
	if gap <= 0 || gap > cfg.Battle.DestroyGap {
		t.Fatalf("gap = %d, test needs a narrow defender win", gap)
	}
	if g.armyByID(attacker.ID) == nil {
		t.Fatal("attacker destroyed inside the narrow gap")
	}
	wantDamage := gap * cfg.Battle.DamagePerGap
	if wantDamage > cfg.Battle.DamageCap {
		wantDamage = cfg.Battle.DamageCap
	}
	if attacker.Health != nation.MaxHealth-wantDamage {
		t.Fatalf("attacker health = %d, want %d", attacker.Health, nation.MaxHealth-wantDamage)
	}
}

func TestDefensePowerBonuses(t *testing.T) {
	cfg := tuning.Default()
	g := newBareGame(cfg)

	target := world.Coord{X: 3, Y: 3}
	cell := g.Grid.At(target)
	cell.Terrain = world.TerrainMountain
	cell.Development = world.DevCastle
	g.Grid.Micro(target, world.Coord{X: 1, Y: 1}).Development = world.DevCastle

	// Two castles plus the mountain bonus, no defenders.
	want := 2*cfg.Battle.CastleDefense + cfg.Battle.MountainDefense
	if got := g.defensePower(nil, cell); got != want {
		t.Fatalf("defense power = %d, want %d", got, want)
	}
}

func TestDefensePowerFloor(t *testing.T) {
	g := newBareGame(tuning.Default())
	cell := g.Grid.At(world.Coord{X: 0, Y: 0})
	if got := g.defensePower(nil, cell); got != 1 {
		t.Fatalf("empty cell defense = %d, want 1", got)
	}
}
