package nation

import (
	"encoding/json"
	"log/slog"

	"github.com/talgya/dominion/internal/world"
)

// Army movement and leveling constants.
const (
	MaxMovementPoints = 3
	MaxArmyLevel      = 10
	MaxHealth         = 100
)

// Order is a standing instruction attached to an army.
type Order uint8

const (
	OrderNone Order = iota
	OrderMove
	OrderAttack
	OrderDefend
	OrderBuild
)

func (o Order) String() string {
	switch o {
	case OrderMove:
		return "move"
	case OrderAttack:
		return "attack"
	case OrderDefend:
		return "defend"
	case OrderBuild:
		return "build"
	default:
		return "none"
	}
}

// ParseOrder converts an external string to an Order, falling back to
// none with a warning on unknown input.
func ParseOrder(s string) Order {
	switch s {
	case "none", "":
		return OrderNone
	case "move":
		return OrderMove
	case "attack":
		return OrderAttack
	case "defend":
		return OrderDefend
	case "build":
		return OrderBuild
	default:
		slog.Warn("invalid order, using none", "value", s)
		return OrderNone
	}
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = ParseOrder(s)
	return nil
}

// Army is a mobile combat unit owned by exactly one nation.
type Army struct {
	ID       int          `json:"id"`
	NationID int          `json:"nation_id"`
	Pos      world.Coord  `json:"pos"`
	Inner    *world.Coord `json:"inner,omitempty"` // nil while unplaced

	Level      int `json:"level"`  // 1-10
	Health     int `json:"health"` // 0-100, destroyed at 0
	Experience int `json:"experience"`

	MovementPoints int `json:"movement_points"`

	Orders Order        `json:"orders"`
	Target *world.Coord `json:"target,omitempty"`

	Victories   int `json:"victories"`
	Defeats     int `json:"defeats"`
	Battles     int `json:"battles"`
	CreatedTurn int `json:"created_turn"`
}

// NewArmy creates a level-1 army at the given macro position.
func NewArmy(id, nationID int, pos world.Coord) *Army {
	return &Army{
		ID:             id,
		NationID:       nationID,
		Pos:            pos,
		Level:          1,
		Health:         MaxHealth,
		MovementPoints: MaxMovementPoints,
	}
}

// SetLevel clamps and applies an army level.
func (a *Army) SetLevel(level int) {
	if level < 1 {
		slog.Warn("invalid army level, clamping", "value", level)
		level = 1
	}
	if level > MaxArmyLevel {
		slog.Warn("invalid army level, clamping", "value", level)
		level = MaxArmyLevel
	}
	a.Level = level
}

// SetInner records (or clears, with nil) the inner-grid position.
func (a *Army) SetInner(inner *world.Coord) {
	if inner == nil {
		a.Inner = nil
		return
	}
	c := *inner
	a.Inner = &c
}

// ResetMovement restores the full movement budget for a new turn.
func (a *Army) ResetMovement() {
	a.MovementPoints = MaxMovementPoints
}

// SpendMovement deducts movement points, flooring at zero.
func (a *Army) SpendMovement(points int) {
	a.MovementPoints -= points
	if a.MovementPoints < 0 {
		a.MovementPoints = 0
	}
}

// RefundMovement returns movement points, capped at the per-turn max.
func (a *Army) RefundMovement(points int) {
	a.MovementPoints += points
	if a.MovementPoints > MaxMovementPoints {
		a.MovementPoints = MaxMovementPoints
	}
}

// CanMove reports whether the army has budget and is alive.
func (a *Army) CanMove() bool {
	return a.MovementPoints > 0 && a.Health > 0
}

// TakeDamage reduces health, flooring at zero. Reports destruction.
func (a *Army) TakeDamage(damage int) bool {
	a.Health -= damage
	if a.Health < 0 {
		a.Health = 0
	}
	return a.Health <= 0
}

// Heal restores health up to the maximum.
func (a *Army) Heal(amount int) {
	a.Health += amount
	if a.Health > MaxHealth {
		a.Health = MaxHealth
	}
}

// GainExperience accrues experience and reports whether a level-up
// occurred. Levels follow experience: one level per full 100 points,
// capped at MaxArmyLevel.
func (a *Army) GainExperience(amount int) bool {
	a.Experience += amount
	newLevel := a.Experience/100 + 1
	if newLevel > MaxArmyLevel {
		newLevel = MaxArmyLevel
	}
	if newLevel > a.Level {
		a.SetLevel(newLevel)
		return true
	}
	return false
}

// CombatPower derives the army's effective strength from level,
// current health fraction, and accumulated experience. Never below 1,
// even at zero health.
func (a *Army) CombatPower() int {
	power := float64(a.Level) * float64(a.Health) / float64(MaxHealth)
	power += float64(a.Experience/50) * 0.5
	p := int(power)
	if p < 1 {
		p = 1
	}
	return p
}

// Veteran reports whether the army qualifies for the veteran combat
// bonus.
func (a *Army) Veteran() bool {
	return a.Experience >= 200 || a.Level >= 5
}

// Status summarizes the army's condition for display.
func (a *Army) Status() string {
	switch {
	case a.Health <= 25:
		return "wounded"
	case a.Health <= 50:
		return "damaged"
	case a.MovementPoints <= 0:
		return "exhausted"
	case a.Veteran():
		return "veteran"
	default:
		return "ready"
	}
}

// NeedsRest reports whether the army should hold position to recover.
func (a *Army) NeedsRest() bool {
	return a.Health < 75 || a.MovementPoints <= 0
}

// RecordBattle updates the army's battle record and awards experience.
func (a *Army) RecordBattle(won bool, experience int) {
	a.Battles++
	if won {
		a.Victories++
	} else {
		a.Defeats++
	}
	a.GainExperience(experience)
}

// SetTarget points the army at a destination.
func (a *Army) SetTarget(c world.Coord, order Order) {
	t := c
	a.Target = &t
	a.Orders = order
}

// ClearTarget drops any standing destination.
func (a *Army) ClearTarget() {
	a.Target = nil
	a.Orders = OrderNone
}

// CreationCost returns the resource cost of raising an army of the
// given level.
func CreationCost(level int) world.Stock {
	if level < 1 {
		level = 1
	}
	var cost world.Stock
	cost.Add(world.ResourceGold, 15*level)
	cost.Add(world.ResourceWood, 5*level)
	cost.Add(world.ResourceFood, 5*level)
	cost.Add(world.ResourceMetal, 5*level)
	return cost
}
