// Package tuning gathers every gameplay constant in one loadable
// struct. Defaults reproduce the standard balance; a yaml file can
// override any of them.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the full set of gameplay parameters.
type Tuning struct {
	Map     MapTuning     `yaml:"map"`
	Economy EconomyTuning `yaml:"economy"`
	Battle  BattleTuning  `yaml:"battle"`
	AI      AITuning      `yaml:"ai"`
	Growth  GrowthTuning  `yaml:"growth"`
	Game    GameTuning    `yaml:"game"`
}

// MapTuning controls procedural generation and nation placement.
type MapTuning struct {
	OceanRegions      int     `yaml:"ocean_regions"`
	OceanMinSize      int     `yaml:"ocean_min_size"`
	OceanMaxSize      int     `yaml:"ocean_max_size"`
	OceanAttempts     int     `yaml:"ocean_attempts"`
	MountainCount     int     `yaml:"mountain_count"`
	MountainAttempts  int     `yaml:"mountain_attempts"`
	RiverCount        int     `yaml:"river_count"`
	RiverAttempts     int     `yaml:"river_attempts"`
	GoldChance        float64 `yaml:"gold_chance"`
	MinNationDistance float64 `yaml:"min_nation_distance"`
	PlacementAttempts int     `yaml:"placement_attempts"`
}

// EconomyTuning controls per-turn income and upkeep.
type EconomyTuning struct {
	ArmyUpkeep      int `yaml:"army_upkeep"`      // gold per army per turn
	TerritoryUpkeep int `yaml:"territory_upkeep"` // gold per owned cell per turn
	FarmFoodBonus   int `yaml:"farm_food_bonus"`
	MineMetalBonus  int `yaml:"mine_metal_bonus"`
	ForestWoodBonus int `yaml:"forest_wood_bonus"`
	TownGoldPerPop  int `yaml:"town_gold_per_pop"` // divisor: gold = pop / this
	CityGoldPerPop  int `yaml:"city_gold_per_pop"`
	RoadBonusPer    int `yaml:"road_bonus_per"` // road tiles per +1 of each resource
}

// BattleTuning controls combat resolution. The thresholds here are
// tuning constants, not law; their defaults preserve the standard
// behavior.
type BattleTuning struct {
	DieSides          int     `yaml:"die_sides"`
	VeteranBonus      int     `yaml:"veteran_bonus"`
	CastleDefense     int     `yaml:"castle_defense"` // per castle, macro or inner
	MountainDefense   int     `yaml:"mountain_defense"`
	DestroyGap        int     `yaml:"destroy_gap"`    // power gap forcing attacker destruction
	DestroyChance     float64 `yaml:"destroy_chance"` // coin flip below the gap
	DamagePerGap      int     `yaml:"damage_per_gap"`
	DamageCap         int     `yaml:"damage_cap"`
	WinExpBase        int     `yaml:"win_exp_base"`
	WinExpPerKill     int     `yaml:"win_exp_per_kill"`
	DefendExp         int     `yaml:"defend_exp"`
	ConsolationExp    int     `yaml:"consolation_exp"`
	HistoryWindow     int     `yaml:"history_window"` // default size of the battles feed
}

// AITuning controls the per-turn decision probabilities and gates.
type AITuning struct {
	DiplomacyDriftChance float64 `yaml:"diplomacy_drift_chance"`
	TradeOfferChance     float64 `yaml:"trade_offer_chance"`
	TradeAcceptChance    float64 `yaml:"trade_accept_chance"` // fallback when relations are cold
	ShortageThreshold    int     `yaml:"shortage_threshold"`  // wallet level counting as "short"
	MinOfferStock        int     `yaml:"min_offer_stock"`     // stock needed before offering a resource
	OfferFraction        float64 `yaml:"offer_fraction"`      // share of stock put on the table
	WantMin              int     `yaml:"want_min"`
	WantMax              int     `yaml:"want_max"`
	ArmyCreateChance     float64 `yaml:"army_create_chance"`
	ArmyGoldGate         int     `yaml:"army_gold_gate"`
	SettlementMinPop     int     `yaml:"settlement_min_pop"`
	TownArmyLevelCap     int     `yaml:"town_army_level_cap"`
	CityArmyLevelCap     int     `yaml:"city_army_level_cap"`
	GoldPerArmyLevel     int     `yaml:"gold_per_army_level"` // level = gold/this + 1
	WanderChance         float64 `yaml:"wander_chance"`
	RestHeal             int     `yaml:"rest_heal"` // health regained on a rest turn
	OceanMoveCost        int     `yaml:"ocean_move_cost"` // extra points on entering ocean
	RiverMoveRefund      int     `yaml:"river_move_refund"`
	DevelopChance        float64 `yaml:"develop_chance"`
	DevelopCost          int     `yaml:"develop_cost"` // gold
	ExpandChance         float64 `yaml:"expand_chance"`
	RoadChance           float64 `yaml:"road_chance"`
}

// GrowthTuning controls population growth and settlement level-ups.
type GrowthTuning struct {
	FoodThreshold  int     `yaml:"food_threshold"` // wallet food needed to grow at all
	CityRate       float64 `yaml:"city_rate"`
	TownRate       float64 `yaml:"town_rate"`
	TownLevelUpPop int     `yaml:"town_level_up_pop"`
	TownLevelCap   int     `yaml:"town_level_cap"`
	CityLevelUpPop int     `yaml:"city_level_up_pop"`
	CityLevelCap   int     `yaml:"city_level_cap"`
}

// GameTuning controls orchestrator bookkeeping.
type GameTuning struct {
	LogCap int `yaml:"log_cap"` // retained game log entries
}

// Default returns the standard balance.
func Default() Tuning {
	return Tuning{
		Map: MapTuning{
			OceanRegions:      3,
			OceanMinSize:      2,
			OceanMaxSize:      4,
			OceanAttempts:     50,
			MountainCount:     5,
			MountainAttempts:  20,
			RiverCount:        2,
			RiverAttempts:     50,
			GoldChance:        0.15,
			MinNationDistance: 3,
			PlacementAttempts: 100,
		},
		Economy: EconomyTuning{
			ArmyUpkeep:      2,
			TerritoryUpkeep: 1,
			FarmFoodBonus:   3,
			MineMetalBonus:  2,
			ForestWoodBonus: 2,
			TownGoldPerPop:  100,
			CityGoldPerPop:  50,
			RoadBonusPer:    5,
		},
		Battle: BattleTuning{
			DieSides:        6,
			VeteranBonus:    2,
			CastleDefense:   3,
			MountainDefense: 1,
			DestroyGap:      5,
			DestroyChance:   0.5,
			DamagePerGap:    10,
			DamageCap:       50,
			WinExpBase:      20,
			WinExpPerKill:   10,
			DefendExp:       15,
			ConsolationExp:  5,
			HistoryWindow:   10,
		},
		AI: AITuning{
			DiplomacyDriftChance: 0.05,
			TradeOfferChance:     0.1,
			TradeAcceptChance:    0.3,
			ShortageThreshold:    30,
			MinOfferStock:        20,
			OfferFraction:        0.25,
			WantMin:              5,
			WantMax:              20,
			ArmyCreateChance:     0.3,
			ArmyGoldGate:         50,
			SettlementMinPop:     100,
			TownArmyLevelCap:     3,
			CityArmyLevelCap:     10,
			GoldPerArmyLevel:     20,
			WanderChance:         0.3,
			RestHeal:             10,
			OceanMoveCost:        3,
			RiverMoveRefund:      2,
			DevelopChance:        0.2,
			DevelopCost:          20,
			ExpandChance:         0.4,
			RoadChance:           0.1,
		},
		Growth: GrowthTuning{
			FoodThreshold:  10,
			CityRate:       0.05,
			TownRate:       0.03,
			TownLevelUpPop: 500,
			TownLevelCap:   3,
			CityLevelUpPop: 2000,
			CityLevelCap:   5,
		},
		Game: GameTuning{
			LogCap: 1000,
		},
	}
}

// Load reads a yaml tuning file over the defaults, so a file only
// needs the fields it changes.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}
