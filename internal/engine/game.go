// Package engine drives the simulation: turn sequencing, economy,
// battle resolution, nation AI, and the auto-play runner.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/rng"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

// LogEntry is one line of the in-world game log.
type LogEntry struct {
	Turn      int       `json:"turn"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// BattleStats aggregates combat across the whole game.
type BattleStats struct {
	TotalBattles    int `json:"total_battles"`
	TotalCasualties int `json:"total_casualties"`

	powerSum int // attack + defense across all battles
}

// AveragePower is the mean per-side power across every battle fought,
// zero before the first one.
func (b BattleStats) AveragePower() int {
	if b.TotalBattles == 0 {
		return 0
	}
	return b.powerSum / (2 * b.TotalBattles)
}

// Game owns the complete world state: grid, nations, the seeded
// random source, and the log. Every component receives it explicitly;
// there is no ambient state. All methods are single-threaded; one
// turn runs to completion before any observer reads.
type Game struct {
	ID      string           `json:"id"`
	Seed    int64            `json:"seed"`
	Turn    int              `json:"turn"`
	Random  *rng.Source      `json:"-"`
	Grid    *world.Grid      `json:"-"`
	Nations []*nation.Nation `json:"nations"`

	Config tuning.Tuning `json:"-"`

	GameLog []LogEntry  `json:"log"`
	Battles BattleStats `json:"battle_stats"`

	// UI pass-through state; no simulation effect.
	Zoomed      *world.Coord `json:"-"`
	Highlighted *world.Coord `json:"-"`

	armies     map[int]*nation.Army // army id → army, lookup only
	nextArmyID int
	fallen     map[int]bool // elimination already announced
	decided    bool         // win/draw already announced
}

// New creates and initializes a game. A zero seed means "pick one";
// the chosen seed is stored on the game and logged so the run can be
// reproduced.
func New(seed int64, cfg tuning.Tuning) *Game {
	if seed == 0 {
		seed = time.Now().UnixNano()%1_000_000 + 1
	}

	g := &Game{
		ID:         uuid.NewString(),
		Seed:       seed,
		Random:     rng.New(seed),
		Config:     cfg,
		armies:     make(map[int]*nation.Army),
		nextArmyID: 1,
		fallen:     make(map[int]bool),
	}

	slog.Info("initializing game", "seed", seed, "id", g.ID)

	gen := world.NewGenerator(g.genConfig(), g.Random)
	g.Grid = gen.Generate()

	for i := 0; i < nation.Count; i++ {
		g.Nations = append(g.Nations, nation.New(i))
	}
	g.placeNations()

	g.Logf("Game initialized with %d nations (seed: %d)", len(g.Nations), seed)
	return g
}

func (g *Game) genConfig() world.GenConfig {
	m := g.Config.Map
	return world.GenConfig{
		OceanRegions:     m.OceanRegions,
		OceanMinSize:     m.OceanMinSize,
		OceanMaxSize:     m.OceanMaxSize,
		OceanAttempts:    m.OceanAttempts,
		MountainCount:    m.MountainCount,
		MountainAttempts: m.MountainAttempts,
		RiverCount:       m.RiverCount,
		RiverAttempts:    m.RiverAttempts,
		GoldChance:       m.GoldChance,
	}
}

// placeNations seats each nation's capital in fixed id order: a land
// cell at least MinNationDistance from every earlier capital, with a
// city at macro level and in the exact center of the inner grid.
// Placement draws are part of the deterministic contract.
func (g *Game) placeNations() {
	var placed []world.Coord

	for _, n := range g.Nations {
		found := false
		for attempt := 0; attempt < g.Config.Map.PlacementAttempts; attempt++ {
			c := world.Coord{
				X: g.Random.IntBetween(0, world.Size-1),
				Y: g.Random.IntBetween(0, world.Size-1),
			}
			if g.Grid.At(c).Terrain != world.TerrainLand {
				continue
			}
			tooClose := false
			for _, p := range placed {
				if c.Distance(p) < g.Config.Map.MinNationDistance {
					tooClose = true
					break
				}
			}
			if tooClose {
				continue
			}

			cell := g.Grid.At(c)
			cell.Owner = n.ID
			cell.Development = world.DevCity
			cell.Population = 1000

			center := world.Coord{X: world.InnerSize / 2, Y: world.InnerSize / 2}
			mc := g.Grid.Micro(c, center)
			mc.Development = world.DevCity
			mc.Population = 1000
			mc.Level = 3

			capital := c
			n.Capital = &capital
			n.AddTerritory(c)
			placed = append(placed, c)
			found = true

			g.Logf("%s established capital at %s", n.Name, c)
			break
		}
		if !found {
			slog.Warn("failed to place nation", "nation", n.Name)
		}
	}
}

// AdvanceTurn runs one complete turn: per-nation economy and AI in
// fixed id order, then the global pass. Safe to call after the game
// is decided; it keeps producing log entries harmlessly.
func (g *Game) AdvanceTurn() {
	g.Turn++
	g.Logf("--- Turn %d ---", g.Turn)

	for _, n := range g.Nations {
		if n.Eliminated() {
			continue
		}
		g.processNationTurn(n)
	}

	g.processPopulationGrowth()
	g.cleanupEliminatedNations()
	g.checkEndConditions()
}

// processNationTurn runs one nation's turn. A fault in one nation's
// processing is caught here and logged; the other nations and the
// global pass still run.
func (g *Game) processNationTurn(n *nation.Nation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("nation turn failed", "nation", n.Name, "turn", g.Turn, "error", r)
			g.Logf("Error: %s turn processing failed - %v", n.Name, r)
		}
	}()

	g.collectResources(n)
	g.payUpkeep(n)
	n.ExpireTradeOffers(g.Turn)
	g.runAI(n)
	n.UpdateStatistics(g.Grid)
}

// processPopulationGrowth grows every owned settlement, macro and
// micro, when the owner has food to feed it. Growth eats that much
// food from the wallet.
func (g *Game) processPopulationGrowth() {
	g.Grid.Each(func(c world.Coord, cell *world.MacroCell) {
		if !cell.Claimed() {
			return
		}
		n := g.Nations[cell.Owner]

		if cell.Development.IsSettlement() {
			g.growSettlement(cell.Development, &cell.Population, nil, n)
		}

		g.Grid.EachMicro(c, func(_ world.Coord, mc *world.MicroCell) {
			if mc.Development.IsSettlement() {
				g.growSettlement(mc.Development, &mc.Population, &mc.Level, n)
			}
		})
	})
}

// growSettlement applies one settlement's growth and level-up checks.
// level is nil for macro settlements, which do not track levels.
func (g *Game) growSettlement(dev world.Development, population *int, level *int, n *nation.Nation) {
	gr := g.Config.Growth
	if n.Resources.Get(world.ResourceFood) <= gr.FoodThreshold {
		return
	}

	rate := gr.TownRate
	if dev == world.DevCity {
		rate = gr.CityRate
	}
	growth := int(float64(*population) * rate)
	if growth <= 0 {
		return
	}

	*population += growth
	n.Resources.Add(world.ResourceFood, -growth)

	if level == nil {
		return
	}
	switch {
	case dev == world.DevTown && *population >= gr.TownLevelUpPop && *level < gr.TownLevelCap:
		*level++
	case dev == world.DevCity && *population >= gr.CityLevelUpPop && *level < gr.CityLevelCap:
		*level++
	}
}

// cleanupEliminatedNations reclaims everything from nations whose
// territory hit zero: armies leave the grid and roster, owned cells
// revert to unclaimed.
func (g *Game) cleanupEliminatedNations() {
	for _, n := range g.Nations {
		if !n.Eliminated() || g.fallen[n.ID] {
			continue
		}
		g.fallen[n.ID] = true

		g.Logf("%s has been eliminated!", n.Name)
		for _, a := range n.Armies {
			g.removeArmyFromGrid(a)
			delete(g.armies, a.ID)
		}
		n.Armies = nil

		// Owner fields for any cell still pointing at the nation are
		// cleared so the territory set and grid stay consistent.
		g.Grid.Each(func(_ world.Coord, cell *world.MacroCell) {
			if cell.Owner == n.ID {
				cell.Owner = world.NoOwner
			}
		})
		n.Territory = nil
	}
}

// checkEndConditions announces victory or mutual ruin once at most
// one nation remains active. Detection only; the game stays
// queryable and callers decide whether to keep stepping.
func (g *Game) checkEndConditions() {
	if g.decided {
		return
	}
	active := g.ActiveNations()
	if len(active) > 1 {
		return
	}
	g.decided = true
	if len(active) == 1 {
		g.Logf("%s has achieved total victory!", active[0].Name)
	} else {
		g.Logf("All nations have been eliminated! The world lies in ruins.")
	}
}

// Decided reports whether a win or draw has been reached.
func (g *Game) Decided() bool {
	return g.decided
}

// ActiveNations returns the nations still holding territory.
func (g *Game) ActiveNations() []*nation.Nation {
	var active []*nation.Nation
	for _, n := range g.Nations {
		if !n.Eliminated() {
			active = append(active, n)
		}
	}
	return active
}

// CreateArmy raises an army for a nation if it can afford the level's
// cost, placing it at the given macro cell and optional inner slot.
// Returns nil when unaffordable or the slot is taken.
func (g *Game) CreateArmy(n *nation.Nation, pos world.Coord, inner *world.Coord, level int) *nation.Army {
	cost := nation.CreationCost(level)
	if !n.CanAfford(cost) {
		return nil
	}
	if inner != nil && g.Grid.Micro(pos, *inner).ArmyID != 0 {
		return nil
	}

	a := nation.NewArmy(g.nextArmyID, n.ID, pos)
	g.nextArmyID++
	a.SetLevel(level)
	a.CreatedTurn = g.Turn

	n.Spend(cost)
	n.AddArmy(a)
	g.armies[a.ID] = a

	if inner != nil {
		g.placeArmy(a, pos, *inner)
	}

	g.Logf("%s created level %d army at %s", n.Name, level, pos)
	return a
}

// placeArmy seats an army in a micro slot, atomically clearing any
// previous slot it held. One army per micro cell.
func (g *Game) placeArmy(a *nation.Army, pos world.Coord, inner world.Coord) {
	g.removeArmyFromGrid(a)
	a.Pos = pos
	a.SetInner(&inner)
	g.Grid.Micro(pos, inner).ArmyID = a.ID
}

// removeArmyFromGrid clears the army's micro slot, if placed.
func (g *Game) removeArmyFromGrid(a *nation.Army) {
	if a.Inner == nil {
		return
	}
	mc := g.Grid.Micro(a.Pos, *a.Inner)
	if mc.ArmyID == a.ID {
		mc.ArmyID = 0
	}
	a.SetInner(nil)
}

// destroyArmy removes an army from the world: grid slot, nation
// roster, and lookup table.
func (g *Game) destroyArmy(a *nation.Army) {
	g.removeArmyFromGrid(a)
	g.Nations[a.NationID].RemoveArmy(a)
	delete(g.armies, a.ID)
	g.Battles.TotalCasualties++
}

// RebuildArmyIndex reconstructs the army registry and grid occupancy
// from the nation rosters. Used after state is loaded from outside.
func (g *Game) RebuildArmyIndex() {
	g.armies = make(map[int]*nation.Army)
	g.nextArmyID = 1
	for _, n := range g.Nations {
		// Already-fallen nations stay fallen; no re-announcement.
		if n.Eliminated() {
			g.fallen[n.ID] = true
		}
		for _, a := range n.Armies {
			g.armies[a.ID] = a
			if a.ID >= g.nextArmyID {
				g.nextArmyID = a.ID + 1
			}
			if a.Inner != nil {
				g.Grid.Micro(a.Pos, *a.Inner).ArmyID = a.ID
			}
		}
	}
}

// armyByID resolves an occupancy id to an army, nil when gone.
func (g *Game) armyByID(id int) *nation.Army {
	return g.armies[id]
}

// Logf appends a formatted entry to the bounded game log.
func (g *Game) Logf(format string, args ...any) {
	entry := LogEntry{
		Turn:      g.Turn,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
	g.GameLog = append(g.GameLog, entry)
	slog.Debug("game log", "turn", entry.Turn, "message", entry.Message)

	if limit := g.Config.Game.LogCap; limit > 0 && len(g.GameLog) > limit {
		g.GameLog = g.GameLog[len(g.GameLog)-limit:]
	}
}

// RecentLog returns up to count log entries, oldest first.
func (g *Game) RecentLog(count int) []LogEntry {
	start := len(g.GameLog) - count
	if start < 0 {
		start = 0
	}
	out := make([]LogEntry, len(g.GameLog)-start)
	copy(out, g.GameLog[start:])
	return out
}

// RecentBattles merges every nation's history into one newest-first
// window, de-duplicated on (turn, location, attacker, defender).
func (g *Game) RecentBattles(count int) []nation.BattleRecord {
	type key struct {
		turn     int
		loc      world.Coord
		attacker string
		defender string
	}
	seen := make(map[key]bool)
	var merged []nation.BattleRecord
	for _, n := range g.Nations {
		for _, b := range n.Battles {
			k := key{b.Turn, b.Location, b.Attacker, b.Defender}
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, b)
		}
	}
	// Per-nation histories are append-only, but the merge interleaves
	// nations, so order across the whole world by turn explicitly.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Turn > merged[j].Turn
	})
	if len(merged) > count {
		merged = merged[:count]
	}
	return merged
}

// Stats is the summary payload exposed to observers and snapshots.
type Stats struct {
	Turn            int   `json:"turn"`
	Seed            int64 `json:"seed"`
	ActiveNations   int   `json:"active_nations"`
	TotalPopulation int   `json:"total_population"`
	TotalArmies     int   `json:"total_armies"`
	TotalBattles    int   `json:"total_battles"`
}

// GameStats computes the current summary.
func (g *Game) GameStats() Stats {
	s := Stats{
		Turn:          g.Turn,
		Seed:          g.Seed,
		ActiveNations: len(g.ActiveNations()),
		TotalBattles:  g.Battles.TotalBattles,
	}
	for _, n := range g.Nations {
		s.TotalPopulation += n.TotalPopulation
		s.TotalArmies += len(n.Armies)
	}
	return s
}

// ZoomInto records the UI zoom target. Pure pass-through state.
func (g *Game) ZoomInto(c world.Coord) bool {
	if !c.InBounds(world.Size) {
		return false
	}
	zoom := c
	g.Zoomed = &zoom
	return true
}

// ZoomOut clears the UI zoom and highlight state.
func (g *Game) ZoomOut() {
	g.Zoomed = nil
	g.Highlighted = nil
}

// Highlight records the UI highlight target. Pure pass-through state.
func (g *Game) Highlight(c world.Coord) {
	h := c
	g.Highlighted = &h
}
