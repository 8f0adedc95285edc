// Package api provides the HTTP API for observing and driving a game.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/dominion/internal/engine"
	"github.com/talgya/dominion/internal/persistence"
	"github.com/talgya/dominion/internal/snapshot"
	"github.com/talgya/dominion/internal/tuning"
	"github.com/talgya/dominion/internal/world"
)

// Server serves the game state over HTTP.
type Server struct {
	Runner   *engine.Runner
	DB       *persistence.DB // nil = save/load endpoints disabled
	Config   tuning.Tuning
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Guards game swaps (reset/load) against concurrent reads of the
	// game pointer. Turn advancement itself is serialized by Runner.
	mu sync.RWMutex
}

func (s *Server) game() *engine.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Runner.Game
}

func (s *Server) setGame(g *engine.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Runner.SetGame(g)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	saveLimiter := NewRateLimiter(60, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints, read-only. Anyone can check in on the world.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/nations", s.handleNations)
	mux.HandleFunc("/api/v1/nation/", s.handleNationDetail)
	mux.HandleFunc("/api/v1/battles", s.handleBattles)
	mux.HandleFunc("/api/v1/log", s.handleLog)
	mux.HandleFunc("/api/v1/saves", s.handleSaves)

	// Map endpoints.
	mux.HandleFunc("/api/v1/map", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/map/", s.handleMapRoutes)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/turn", s.adminOnly(s.handleTurn))
	mux.HandleFunc("/api/v1/play", s.adminOnly(s.handlePlay))
	mux.HandleFunc("/api/v1/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/zoom", s.adminOnly(s.handleZoom))
	mux.HandleFunc("/api/v1/save", RateLimitMiddleware(saveLimiter, s.adminOnly(s.handleSave)))
	mux.HandleFunc("/api/v1/load", RateLimitMiddleware(saveLimiter, s.adminOnly(s.handleLoad)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed
// origins. Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require POST with a bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no DOMINION_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	g := s.game()
	stats := g.GameStats()

	status := map[string]any{
		"name":             "Dominion",
		"id":               g.ID,
		"seed":             g.Seed,
		"turn":             g.Turn,
		"paused":           s.Runner.Paused(),
		"decided":          g.Decided(),
		"active_nations":   stats.ActiveNations,
		"total_population": stats.TotalPopulation,
		"total_armies":     stats.TotalArmies,
		"total_battles":    stats.TotalBattles,
		"average_power":    g.Battles.AveragePower(),
	}
	writeJSON(w, status)
}

func (s *Server) handleNations(w http.ResponseWriter, r *http.Request) {
	g := s.game()

	type nationSummary struct {
		ID         int         `json:"id"`
		Name       string      `json:"name"`
		Symbol     string      `json:"symbol"`
		Territory  int         `json:"territory"`
		Armies     int         `json:"armies"`
		Population int         `json:"population"`
		Strength   int         `json:"strength"`
		Eliminated bool        `json:"eliminated"`
		Resources  world.Stock `json:"resources"`
	}

	result := make([]nationSummary, 0, len(g.Nations))
	for _, n := range g.Nations {
		result = append(result, nationSummary{
			ID:         n.ID,
			Name:       n.Name,
			Symbol:     n.Symbol,
			Territory:  len(n.Territory),
			Armies:     len(n.Armies),
			Population: n.TotalPopulation,
			Strength:   n.StrengthRating(),
			Eliminated: n.Eliminated(),
			Resources:  n.Resources,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleNationDetail(w http.ResponseWriter, r *http.Request) {
	g := s.game()

	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/nation/:id → parts[0]="" [1]="api" [2]="v1" [3]="nation" [4]=id
	if len(parts) < 5 {
		http.Error(w, "missing nation id", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil || id < 0 || id >= len(g.Nations) {
		http.Error(w, "invalid nation id", http.StatusBadRequest)
		return
	}
	writeJSON(w, g.Nations[id])
}

// handleMapRoutes dispatches between the bulk map (GET /api/v1/map)
// and cell detail (GET /api/v1/map/:x/:y).
func (s *Server) handleMapRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/map")
	if path == "" || path == "/" {
		s.handleBulkMap(w, r)
		return
	}
	s.handleCellDetail(w, r)
}

// handleBulkMap returns every macro cell for the map renderer. Inner
// grids stay out of the bulk payload; fetch a cell for detail.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	g := s.game()

	type cellEntry struct {
		X           int    `json:"x"`
		Y           int    `json:"y"`
		Terrain     string `json:"terrain"`
		Owner       *int   `json:"owner,omitempty"`
		Development string `json:"development,omitempty"`
		Population  int    `json:"population,omitempty"`
	}

	cells := make([]cellEntry, 0, world.Size*world.Size)
	g.Grid.Each(func(c world.Coord, cell *world.MacroCell) {
		entry := cellEntry{
			X:          c.X,
			Y:          c.Y,
			Terrain:    cell.Terrain.String(),
			Population: cell.Population,
		}
		if cell.Claimed() {
			owner := cell.Owner
			entry.Owner = &owner
		}
		if cell.Development != world.DevNone {
			entry.Development = cell.Development.String()
		}
		cells = append(cells, entry)
	})

	writeJSON(w, map[string]any{
		"size":  world.Size,
		"cells": cells,
	})
}

func (s *Server) handleCellDetail(w http.ResponseWriter, r *http.Request) {
	g := s.game()

	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/map/:x/:y → parts[0]="" [1]="api" [2]="v1" [3]="map" [4]=x [5]=y
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/map/:x/:y", http.StatusBadRequest)
		return
	}
	x, err1 := strconv.Atoi(parts[4])
	y, err2 := strconv.Atoi(parts[5])
	c := world.Coord{X: x, Y: y}
	if err1 != nil || err2 != nil || !c.InBounds(world.Size) {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	cell := g.Grid.At(c)
	writeJSON(w, map[string]any{
		"x":           c.X,
		"y":           c.Y,
		"terrain":     cell.Terrain,
		"owner":       cell.Owner,
		"resources":   cell.Resources,
		"development": cell.Development,
		"population":  cell.Population,
		"inner":       cell.Inner,
	})
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	g := s.game()
	writeJSON(w, g.RecentBattles(queryLimit(r, g.Config.Battle.HistoryWindow, 200)))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.game().RecentLog(queryLimit(r, 50, 1000)))
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}
	slots, err := s.DB.ListSlots()
	if err != nil {
		slog.Error("list saves failed", "error", err)
		writeJSON(w, []persistence.SlotInfo{})
		return
	}
	if slots == nil {
		slots = []persistence.SlotInfo{}
	}
	writeJSON(w, slots)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	s.Runner.Step()
	g := s.game()
	slog.Info("turn advanced via API", "turn", g.Turn)
	writeJSON(w, g.GameStats())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.Runner.Resume()
	writeJSON(w, map[string]any{"paused": false, "turn": s.game().Turn})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.Runner.Pause()
	writeJSON(w, map[string]any{"paused": true, "turn": s.game().Turn})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed int64 `json:"seed"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	g := engine.New(req.Seed, s.Config)
	s.setGame(g)
	slog.Info("game reset via API", "seed", g.Seed)
	writeJSON(w, map[string]any{"id": g.ID, "seed": g.Seed, "turn": g.Turn})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X   *int `json:"x"`
		Y   *int `json:"y"`
		Out bool `json:"out"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	g := s.game()
	if req.Out {
		g.ZoomOut()
		writeJSON(w, map[string]any{"zoomed": nil})
		return
	}
	if req.X == nil || req.Y == nil {
		http.Error(w, "x and y required", http.StatusBadRequest)
		return
	}
	c := world.Coord{X: *req.X, Y: *req.Y}
	if !g.ZoomInto(c) {
		http.Error(w, "coordinates out of range", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"zoomed": g.Zoomed})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}
	slot := s.slotName(w, r)
	if slot == "" {
		return
	}

	if err := s.DB.SaveSlot(slot, s.game()); err != nil {
		slog.Error("save failed", "slot", slot, "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"slot": slot, "turn": s.game().Turn})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}
	slot := s.slotName(w, r)
	if slot == "" {
		return
	}

	snap, err := s.DB.LoadSlot(slot)
	if err != nil {
		slog.Error("load failed", "slot", slot, "error", err)
		http.Error(w, "load failed", http.StatusNotFound)
		return
	}

	g := snapshot.Restore(snap, s.Config)
	s.setGame(g)
	slog.Info("game loaded via API", "slot", slot, "turn", g.Turn)
	writeJSON(w, map[string]any{"slot": slot, "id": g.ID, "seed": g.Seed, "turn": g.Turn})
}

// slotName extracts the slot name from the request body, writing the
// error response itself when missing.
func (s *Server) slotName(w http.ResponseWriter, r *http.Request) string {
	var req struct {
		Slot string `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slot == "" {
		http.Error(w, "slot name required", http.StatusBadRequest)
		return ""
	}
	return req.Slot
}

func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= max {
			limit = n
		}
	}
	return limit
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
