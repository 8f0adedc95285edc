// Command dominion runs the four-nation world simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/dominion/internal/api"
	"github.com/talgya/dominion/internal/engine"
	"github.com/talgya/dominion/internal/persistence"
	"github.com/talgya/dominion/internal/snapshot"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

func main() {
	var (
		seed       = flag.Int64("seed", 0, "world seed (0 = pick one)")
		turns      = flag.Int("turns", 0, "run this many turns and exit (0 = serve)")
		interval   = flag.Duration("interval", 2*time.Second, "auto-play turn interval")
		dbPath     = flag.String("db", "data/dominion.db", "save database path (empty = disabled)")
		tuningPath = flag.String("tuning", "", "tuning overrides file (yaml)")
		resume     = flag.String("resume", "", "save slot to resume from")
		apiPort    = flag.Int("port", 8080, "HTTP API port")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Dominion: four nations, one world")

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Default()
	if *tuningPath != "" {
		loaded, err := tuning.Load(*tuningPath)
		if err != nil {
			slog.Error("failed to load tuning", "path", *tuningPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("tuning loaded", "path", *tuningPath)
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		os.MkdirAll(filepath.Dir(*dbPath), 0755)
		var err error
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", *dbPath)
	}

	// ── Game ──────────────────────────────────────────────────────────
	var game *engine.Game
	if *resume != "" {
		if db == nil {
			slog.Error("resume requires a database")
			os.Exit(1)
		}
		snap, err := db.LoadSlot(*resume)
		if err != nil {
			slog.Error("failed to load save", "slot", *resume, "error", err)
			os.Exit(1)
		}
		game = snapshot.Restore(snap, cfg)
		slog.Info("resumed game", "slot", *resume, "turn", game.Turn, "seed", game.Seed)
	} else {
		game = engine.New(*seed, cfg)
	}

	printWorld(game)

	// ── Batch mode ────────────────────────────────────────────────────
	if *turns > 0 {
		for i := 0; i < *turns && !game.Decided(); i++ {
			game.AdvanceTurn()
		}
		printReport(game)
		if db != nil {
			if err := db.SaveSlot("autosave", game); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
		return
	}

	// ── Serve mode ────────────────────────────────────────────────────
	runner := engine.NewRunner(game, *interval)

	adminKey := os.Getenv("DOMINION_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("DOMINION_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Runner:   runner,
		DB:       db,
		Config:   cfg,
		Port:     *apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("\nThe world awakens: seed %d, %d nations on a %d×%d map.\n",
		game.Seed, len(game.Nations), world.Size, world.Size)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run()

	// The API can swap the game (reset/load); save whatever the runner
	// ended up driving.
	final := runner.Game
	if db != nil {
		slog.Info("final save...")
		if err := db.SaveSlot("autosave", final); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}

	printReport(final)
	fmt.Println("Simulation stopped.")
}

// printWorld summarizes the generated map and starting positions.
func printWorld(g *engine.Game) {
	for _, t := range []world.Terrain{world.TerrainLand, world.TerrainOcean, world.TerrainMountain, world.TerrainRiver} {
		slog.Info("terrain", "type", t, "count", len(g.Grid.FindTerrain(t)))
	}
	for _, n := range g.Nations {
		if n.Capital != nil {
			slog.Info("nation placed", "name", n.Name, "symbol", n.Symbol, "capital", n.Capital)
		}
	}
}

// printReport writes the end-of-run summary.
func printReport(g *engine.Game) {
	stats := g.GameStats()

	fmt.Printf("\n── Turn %d ─────────────────────────────────────────────\n", g.Turn)
	for _, n := range g.Nations {
		if n.Eliminated() {
			fmt.Printf("  %s %-18s eliminated\n", n.Symbol, n.Name)
			continue
		}
		fmt.Printf("  %s %-18s territory %2d  armies %2d  pop %8s  strength %s\n",
			n.Symbol, n.Name,
			len(n.Territory), len(n.Armies),
			humanize.Comma(int64(n.TotalPopulation)),
			humanize.Comma(int64(n.StrengthRating())),
		)
	}
	fmt.Printf("  battles fought: %s  casualties: %s  world population: %s\n",
		humanize.Comma(int64(stats.TotalBattles)),
		humanize.Comma(int64(g.Battles.TotalCasualties)),
		humanize.Comma(int64(stats.TotalPopulation)),
	)

	if g.Decided() {
		active := g.ActiveNations()
		if len(active) == 1 {
			fmt.Printf("  victory: %s\n", active[0].Name)
		} else {
			fmt.Println("  the world lies in ruins")
		}
	}

	fmt.Println("\n  recent events:")
	for _, e := range g.RecentLog(10) {
		fmt.Printf("    [%3d] %s\n", e.Turn, e.Message)
	}
}
