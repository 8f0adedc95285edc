package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/talgya/dominion/internal/engine"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

func playedGame(turns int) *engine.Game {
	g := engine.New(4242, tuning.Default())
	for i := 0; i < turns; i++ {
		g.AdvanceTurn()
	}
	return g
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := playedGame(5)
	s := Capture(g)

	data, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	back, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.GameID != g.ID || back.Seed != g.Seed || back.Turn != g.Turn {
		t.Fatalf("header = %s/%d/%d, want %s/%d/%d",
			back.GameID, back.Seed, back.Turn, g.ID, g.Seed, g.Turn)
	}
	if len(back.Nations) != len(g.Nations) {
		t.Fatalf("nations = %d, want %d", len(back.Nations), len(g.Nations))
	}
	for i, n := range back.Nations {
		orig := g.Nations[i]
		if n.Name != orig.Name || len(n.Territory) != len(orig.Territory) {
			t.Fatalf("%s round trip lost territory: %d vs %d",
				orig.Name, len(n.Territory), len(orig.Territory))
		}
		if n.Resources != orig.Resources {
			t.Fatalf("%s wallet changed in round trip", orig.Name)
		}
	}
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	g := playedGame(1)
	s := Capture(g)
	s.Version = Version + 1

	data, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(data); err == nil {
		t.Fatal("expected a version error")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a snapshot")); err == nil {
		t.Fatal("expected an error for garbage input")
	}
}

func TestFileRoundTrip(t *testing.T) {
	g := playedGame(3)
	path := filepath.Join(t.TempDir(), "game.snap")

	if err := WriteFile(g, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Turn != g.Turn {
		t.Fatalf("turn = %d, want %d", s.Turn, g.Turn)
	}
}

func TestRestoreReappliesOwnership(t *testing.T) {
	g := playedGame(8)
	s := Capture(g)

	restored := Restore(s, tuning.Default())
	if restored.Turn != g.Turn || restored.ID != g.ID {
		t.Fatalf("restored header = %s/%d, want %s/%d", restored.ID, restored.Turn, g.ID, g.Turn)
	}

	// Same seed regenerates the same terrain.
	g.Grid.Each(func(c world.Coord, cell *world.MacroCell) {
		if restored.Grid.At(c).Terrain != cell.Terrain {
			t.Fatalf("terrain diverged at %s", c)
		}
	})

	// Ownership mirrors the territory lists exactly.
	for _, n := range restored.Nations {
		for _, c := range n.Territory {
			if owner := restored.Grid.At(c).Owner; owner != n.ID {
				t.Fatalf("%s lists %s but grid owner is %d", n.Name, c, owner)
			}
		}
	}
	claimed := 0
	restored.Grid.Each(func(_ world.Coord, cell *world.MacroCell) {
		if cell.Claimed() {
			claimed++
		}
	})
	want := 0
	for _, n := range restored.Nations {
		want += len(n.Territory)
	}
	if claimed != want {
		t.Fatalf("claimed cells = %d, want %d", claimed, want)
	}

	// Restored games keep stepping.
	restored.AdvanceTurn()
	if restored.Turn != g.Turn+1 {
		t.Fatalf("turn after step = %d, want %d", restored.Turn, g.Turn+1)
	}
}
