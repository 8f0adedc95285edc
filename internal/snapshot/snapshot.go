// Package snapshot captures and restores game state. A snapshot holds
// the seed plus the nation-level state; the map itself is regenerated
// from the seed on restore rather than serialized.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/dominion/internal/engine"
	"github.com/talgya/dominion/internal/nation"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

// Version is bumped whenever the snapshot layout changes in a way old
// readers cannot handle.
const Version = 1

// LogWindow bounds how much of the game log a snapshot carries.
const LogWindow = 100

// Snapshot is the serialized form of a game.
type Snapshot struct {
	Version int    `json:"version"`
	GameID  string `json:"game_id"`
	Seed    int64  `json:"seed"`
	Turn    int    `json:"turn"`

	Nations []*nation.Nation  `json:"nations"`
	Log     []engine.LogEntry `json:"log"`
	Stats   engine.Stats      `json:"stats"`
}

// Capture builds a snapshot of the game's current state.
func Capture(g *engine.Game) *Snapshot {
	return &Snapshot{
		Version: Version,
		GameID:  g.ID,
		Seed:    g.Seed,
		Turn:    g.Turn,
		Nations: g.Nations,
		Log:     g.RecentLog(LogWindow),
		Stats:   g.GameStats(),
	}
}

// Encode serializes a snapshot to zstd-compressed JSON.
func Encode(s *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

// Decode parses zstd-compressed JSON into a snapshot, rejecting
// unsupported versions.
func Decode(data []byte) (*Snapshot, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, Version)
	}
	return &s, nil
}

// WriteFile captures the game and writes it to path.
func WriteFile(g *engine.Game, path string) error {
	data, err := Encode(Capture(g))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	slog.Info("snapshot written", "path", path, "turn", g.Turn, "bytes", len(data))
	return nil
}

// ReadFile loads a snapshot from path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}

// Restore rebuilds a playable game from a snapshot. The map is
// regenerated from the stored seed and nation ownership is re-applied
// from the territory lists. Cell-level detail accumulated after
// generation (development, roads, army positions) is not carried by
// the snapshot; the reconciliation is logged rather than guessed at.
func Restore(s *Snapshot, cfg tuning.Tuning) *engine.Game {
	g := engine.New(s.Seed, cfg)
	g.ID = s.GameID
	g.Turn = s.Turn
	g.Nations = s.Nations
	g.GameLog = s.Log

	g.Grid.Each(func(_ world.Coord, cell *world.MacroCell) {
		cell.Owner = world.NoOwner
	})
	for _, n := range s.Nations {
		for _, c := range n.Territory {
			g.Grid.At(c).Owner = n.ID
		}
	}
	g.RebuildArmyIndex()

	slog.Warn("snapshot restored with regenerated map",
		"turn", s.Turn,
		"note", "developments, roads, and army grid positions are rebuilt from scratch")
	return g
}
