package nation

import (
	"testing"

	"github.com/talgya/dominion/internal/world"
)

func TestNewArmyDefaults(t *testing.T) {
	a := NewArmy(7, 1, world.Coord{X: 3, Y: 3})
	if a.Level != 1 || a.Health != MaxHealth || a.MovementPoints != MaxMovementPoints {
		t.Fatalf("defaults = level %d, health %d, movement %d", a.Level, a.Health, a.MovementPoints)
	}
	if a.Inner != nil {
		t.Fatal("new army should be unplaced on the inner grid")
	}
}

func TestCombatPower(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	a.SetLevel(4)
	if got := a.CombatPower(); got != 4 {
		t.Fatalf("full-health level 4 power = %d, want 4", got)
	}

	a.Health = 50
	if got := a.CombatPower(); got != 2 {
		t.Fatalf("half-health power = %d, want 2", got)
	}

	a.Experience = 150 // three full 50-point blocks at 0.5 each
	if got := a.CombatPower(); got != 3 {
		t.Fatalf("power with experience = %d, want 3", got)
	}

	a.Health = 0
	if got := a.CombatPower(); got < 1 {
		t.Fatalf("power floored at %d, want >= 1", got)
	}
}

func TestGainExperienceLevels(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	if a.GainExperience(50) {
		t.Fatal("50 experience should not level a fresh army")
	}
	if !a.GainExperience(60) {
		t.Fatal("crossing 100 experience should level up")
	}
	if a.Level != 2 {
		t.Fatalf("level = %d, want 2", a.Level)
	}

	a.GainExperience(100000)
	if a.Level != MaxArmyLevel {
		t.Fatalf("level = %d, want cap %d", a.Level, MaxArmyLevel)
	}
}

func TestVeteranThresholds(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	if a.Veteran() {
		t.Fatal("fresh army is not a veteran")
	}
	a.Experience = 200
	if !a.Veteran() {
		t.Fatal("200 experience qualifies")
	}
	a.Experience = 0
	a.SetLevel(5)
	if !a.Veteran() {
		t.Fatal("level 5 qualifies")
	}
}

func TestTakeDamage(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	if a.TakeDamage(40) {
		t.Fatal("40 damage should not destroy")
	}
	if a.Health != 60 {
		t.Fatalf("health = %d, want 60", a.Health)
	}
	if !a.TakeDamage(200) {
		t.Fatal("overkill should destroy")
	}
	if a.Health != 0 {
		t.Fatalf("health floored at %d, want 0", a.Health)
	}
}

func TestHealCapsAtMax(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	a.Health = 60
	a.Heal(30)
	if a.Health != 90 {
		t.Fatalf("health = %d, want 90", a.Health)
	}
	a.Heal(30)
	if a.Health != MaxHealth {
		t.Fatalf("health = %d, want cap %d", a.Health, MaxHealth)
	}
	if a.NeedsRest() {
		t.Fatal("full-health mobile army should not need rest")
	}
}

func TestMovementBudget(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	a.SpendMovement(2)
	if a.MovementPoints != 1 {
		t.Fatalf("movement = %d, want 1", a.MovementPoints)
	}
	a.SpendMovement(5)
	if a.MovementPoints != 0 {
		t.Fatalf("movement floored at %d, want 0", a.MovementPoints)
	}
	if a.CanMove() {
		t.Fatal("exhausted army reports CanMove")
	}
	a.RefundMovement(10)
	if a.MovementPoints != MaxMovementPoints {
		t.Fatalf("refund capped at %d, want %d", a.MovementPoints, MaxMovementPoints)
	}
}

func TestStatusStrings(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	if got := a.Status(); got != "ready" {
		t.Fatalf("status = %q, want ready", got)
	}
	a.MovementPoints = 0
	if got := a.Status(); got != "exhausted" {
		t.Fatalf("status = %q, want exhausted", got)
	}
	a.Health = 50
	if got := a.Status(); got != "damaged" {
		t.Fatalf("status = %q, want damaged", got)
	}
	a.Health = 10
	if got := a.Status(); got != "wounded" {
		t.Fatalf("status = %q, want wounded", got)
	}
}

func TestRecordBattle(t *testing.T) {
	a := NewArmy(1, 0, world.Coord{})
	a.RecordBattle(true, 20)
	a.RecordBattle(false, 5)
	if a.Battles != 2 || a.Victories != 1 || a.Defeats != 1 {
		t.Fatalf("record = %d/%d/%d", a.Battles, a.Victories, a.Defeats)
	}
	if a.Experience != 25 {
		t.Fatalf("experience = %d, want 25", a.Experience)
	}
}

func TestCreationCost(t *testing.T) {
	cost := CreationCost(3)
	if got := cost.Get(world.ResourceGold); got != 45 {
		t.Fatalf("gold cost = %d, want 45", got)
	}
	for _, r := range []world.Resource{world.ResourceWood, world.ResourceFood, world.ResourceMetal} {
		if got := cost.Get(r); got != 15 {
			t.Fatalf("%s cost = %d, want 15", r, got)
		}
	}

	// Invalid levels price as level 1.
	if CreationCost(0) != CreationCost(1) {
		t.Fatal("level 0 should cost the same as level 1")
	}
}
