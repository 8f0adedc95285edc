// Package nation holds the faction data model: resources, territory,
// armies, diplomacy, trade offers, and battle history.
package nation

import (
	"encoding/json"
	"log/slog"

	"github.com/talgya/dominion/internal/world"
)

// Count is the number of nations in a standard game.
const Count = 4

// TradeOfferMaxAge is how many turns an unanswered offer stays valid.
const TradeOfferMaxAge = 3

var (
	names   = [Count]string{"Red Empire", "Blue Kingdom", "Green Republic", "Yellow Federation"}
	symbols = [Count]string{"R", "B", "G", "Y"}
)

// StartingResources is every nation's opening wallet.
func StartingResources() world.Stock {
	var s world.Stock
	s.Add(world.ResourceGold, 100)
	s.Add(world.ResourceWood, 50)
	s.Add(world.ResourceFood, 50)
	s.Add(world.ResourceMetal, 30)
	return s
}

// Relation is the diplomatic stance between two nations.
type Relation uint8

const (
	RelationNeutral Relation = iota
	RelationWar
	RelationPeace
	RelationTrade
)

// AllRelations lists the relations a diplomacy drift can roll.
var AllRelations = [4]Relation{RelationNeutral, RelationTrade, RelationWar, RelationPeace}

func (r Relation) String() string {
	switch r {
	case RelationWar:
		return "war"
	case RelationPeace:
		return "peace"
	case RelationTrade:
		return "trade"
	default:
		return "neutral"
	}
}

// ParseRelation converts an external string to a Relation, falling
// back to neutral with a warning on unknown input.
func ParseRelation(s string) Relation {
	switch s {
	case "neutral", "":
		return RelationNeutral
	case "war":
		return RelationWar
	case "peace":
		return RelationPeace
	case "trade":
		return RelationTrade
	default:
		slog.Warn("invalid relation, using neutral", "value", s)
		return RelationNeutral
	}
}

func (r Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Relation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRelation(s)
	return nil
}

// TradeOffer is a pending proposal sitting in the receiver's queue.
type TradeOffer struct {
	From         int            `json:"from"` // offering nation id
	Give         world.Resource `json:"give"` // what the receiver gains
	GiveAmount   int            `json:"give_amount"`
	Want         world.Resource `json:"want"` // what the receiver pays
	WantAmount   int            `json:"want_amount"`
	ReceivedTurn int            `json:"received_turn"`
}

// Casualty records one army lost or hurt in a battle.
type Casualty struct {
	Nation    string `json:"nation"`
	ArmyLevel int    `json:"army_level"`
	Destroyed bool   `json:"destroyed"`
	Damage    int    `json:"damage,omitempty"`
}

// BattleRecord is the full account of one combat resolution. The same
// record is appended to both participants' histories; consumers
// de-duplicate on (turn, location, attacker, defender).
type BattleRecord struct {
	Turn         int         `json:"turn"`
	Attacker     string      `json:"attacker"`
	Defender     string      `json:"defender"`
	Location     world.Coord `json:"location"`
	AttackPower  int         `json:"attack_power"`
	DefensePower int         `json:"defense_power"`
	AttackRoll   int         `json:"attack_roll"`
	DefenseRoll  int         `json:"defense_roll"`
	Winner       string      `json:"winner"`
	Casualties   []Casualty  `json:"casualties"`
	Experience   int         `json:"experience"`
}

// Nation is one autonomous faction. Created once at game start and
// never destroyed; a nation with no territory is eliminated and
// skipped by the turn loop while its records persist.
type Nation struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`

	Resources world.Stock `json:"resources"`

	// Territory is kept ordered (claim order) so turn processing
	// iterates deterministically. Membership mirrors the grid's
	// per-cell owner field; the two are kept consistent on every
	// claim, conquest, and elimination.
	Territory []world.Coord `json:"territory"`

	Armies  []*Army      `json:"armies"`
	Capital *world.Coord `json:"capital,omitempty"`

	Diplomacy   map[int]Relation `json:"diplomacy"`
	TradeOffers []TradeOffer     `json:"trade_offers"`
	Battles     []BattleRecord   `json:"battles"`

	// Statistics refreshed each turn.
	TotalPopulation int `json:"total_population"`
}

// New creates a nation with the standard name, symbol, and wallet for
// its id. Out-of-range ids clamp to 0 with a warning.
func New(id int) *Nation {
	if id < 0 || id >= Count {
		slog.Warn("invalid nation id, using 0", "value", id)
		id = 0
	}
	return &Nation{
		ID:        id,
		Name:      names[id],
		Symbol:    symbols[id],
		Resources: StartingResources(),
		Diplomacy: make(map[int]Relation),
	}
}

// AddTerritory claims a macro coordinate, ignoring duplicates.
func (n *Nation) AddTerritory(c world.Coord) {
	if n.HasTerritory(c) {
		return
	}
	n.Territory = append(n.Territory, c)
}

// RemoveTerritory releases a macro coordinate.
func (n *Nation) RemoveTerritory(c world.Coord) {
	for i, t := range n.Territory {
		if t == c {
			n.Territory = append(n.Territory[:i], n.Territory[i+1:]...)
			return
		}
	}
}

// HasTerritory reports whether the nation controls a coordinate.
func (n *Nation) HasTerritory(c world.Coord) bool {
	for _, t := range n.Territory {
		if t == c {
			return true
		}
	}
	return false
}

// AddArmy takes ownership of an army.
func (n *Nation) AddArmy(a *Army) {
	n.Armies = append(n.Armies, a)
}

// RemoveArmy releases an army from the nation's roster.
func (n *Nation) RemoveArmy(a *Army) {
	for i, owned := range n.Armies {
		if owned == a {
			n.Armies = append(n.Armies[:i], n.Armies[i+1:]...)
			return
		}
	}
}

// AddResources applies a signed per-resource delta, clamping each
// resource at zero.
func (n *Nation) AddResources(deltas map[world.Resource]int) {
	for r, amount := range deltas {
		n.Resources.Add(r, amount)
	}
}

// CanAfford reports whether the wallet covers every line of a cost.
func (n *Nation) CanAfford(cost world.Stock) bool {
	for _, r := range world.Resources {
		if n.Resources.Get(r) < cost.Get(r) {
			return false
		}
	}
	return true
}

// Spend deducts a cost if affordable; no partial spend.
func (n *Nation) Spend(cost world.Stock) bool {
	if !n.CanAfford(cost) {
		return false
	}
	for _, r := range world.Resources {
		n.Resources.Add(r, -cost.Get(r))
	}
	return true
}

// RelationWith returns the diplomatic stance toward another nation,
// defaulting to neutral.
func (n *Nation) RelationWith(other int) Relation {
	return n.Diplomacy[other]
}

// SetRelation records the diplomatic stance toward another nation.
func (n *Nation) SetRelation(other int, r Relation) {
	n.Diplomacy[other] = r
}

// AddTradeOffer enqueues an incoming offer.
func (n *Nation) AddTradeOffer(o TradeOffer) {
	n.TradeOffers = append(n.TradeOffers, o)
}

// RemoveTradeOffer drops the offer at index i.
func (n *Nation) RemoveTradeOffer(i int) {
	if i < 0 || i >= len(n.TradeOffers) {
		return
	}
	n.TradeOffers = append(n.TradeOffers[:i], n.TradeOffers[i+1:]...)
}

// ExpireTradeOffers discards offers older than TradeOfferMaxAge turns.
func (n *Nation) ExpireTradeOffers(currentTurn int) {
	kept := n.TradeOffers[:0]
	for _, o := range n.TradeOffers {
		if currentTurn-o.ReceivedTurn <= TradeOfferMaxAge {
			kept = append(kept, o)
		}
	}
	n.TradeOffers = kept
}

// AddBattle appends a battle record to the history.
func (n *Nation) AddBattle(b BattleRecord) {
	n.Battles = append(n.Battles, b)
}

// RecentBattles returns up to count records, newest first.
func (n *Nation) RecentBattles(count int) []BattleRecord {
	start := len(n.Battles) - count
	if start < 0 {
		start = 0
	}
	recent := n.Battles[start:]
	out := make([]BattleRecord, len(recent))
	for i, b := range recent {
		out[len(recent)-1-i] = b
	}
	return out
}

// Eliminated reports whether the nation has lost all territory.
func (n *Nation) Eliminated() bool {
	return len(n.Territory) == 0
}

// StrengthRating is a single comparative score across territory,
// military, population, and wealth.
func (n *Nation) StrengthRating() int {
	strength := float64(len(n.Territory))*10 +
		float64(len(n.Armies))*20 +
		float64(n.TotalPopulation)*0.01 +
		float64(n.Resources.Total())*0.1
	return int(strength)
}

// UpdateStatistics refreshes the derived population total from the
// nation's territory on the given grid.
func (n *Nation) UpdateStatistics(grid *world.Grid) {
	n.TotalPopulation = 0
	for _, t := range n.Territory {
		cell := grid.At(t)
		n.TotalPopulation += cell.Population
		grid.EachMicro(t, func(_ world.Coord, mc *world.MicroCell) {
			n.TotalPopulation += mc.Population
		})
	}
}
