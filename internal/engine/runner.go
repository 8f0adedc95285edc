package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Runner drives auto-play: it advances the game on a fixed interval
// until stopped. Turn advancement is atomic from any observer's view;
// pausing or stopping never leaves a turn half-processed.
type Runner struct {
	Game     *Game
	Interval time.Duration

	mu      sync.Mutex
	paused  bool
	running bool
	stop    chan struct{}
}

// NewRunner creates a runner with the given turn interval.
func NewRunner(g *Game, interval time.Duration) *Runner {
	return &Runner{
		Game:     g,
		Interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run starts the auto-play loop. Blocks until Stop is called.
func (r *Runner) Run() {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	slog.Info("auto-play started", "interval", r.Interval)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			slog.Info("auto-play stopped", "turn", r.Game.Turn)
			return
		case <-ticker.C:
			r.mu.Lock()
			if !r.paused {
				r.Game.AdvanceTurn()
			}
			r.mu.Unlock()
		}
	}
}

// Stop halts the loop. The current turn, if one is mid-flight,
// completes first.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stop)
}

// Pause suspends turn advancement without stopping the loop.
func (r *Runner) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
	slog.Info("auto-play paused", "turn", r.Game.Turn)
}

// Resume lifts a pause.
func (r *Runner) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
	slog.Info("auto-play resumed", "turn", r.Game.Turn)
}

// Paused reports whether the loop is currently suspended.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// SetGame swaps the driven game, serialized with the auto-play loop.
func (r *Runner) SetGame(g *Game) {
	r.mu.Lock()
	r.Game = g
	r.mu.Unlock()
}

// Step advances exactly one turn under the runner's lock, serialized
// with the auto-play loop.
func (r *Runner) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Game.AdvanceTurn()
}
