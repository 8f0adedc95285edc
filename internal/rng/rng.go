// Package rng provides the seeded random source every stochastic
// decision in the simulation draws from. One Source per game; no
// component consults an ambient or unseeded generator, so a seed
// fully determines a run.
package rng

import (
	"math/rand"
)

// Source is a deterministic pseudo-random stream.
type Source struct {
	seed int64
	r    *rand.Rand
}

// New creates a Source from the given seed.
func New(seed int64) *Source {
	return &Source{
		seed: seed,
		r:    rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed this source was constructed with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns a uniform float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.r.Float64()
}

// IntBetween returns a uniform integer in [min, max] inclusive.
func (s *Source) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.r.Intn(max-min+1)
}

// FloatBetween returns a uniform float64 in [min, max).
func (s *Source) FloatBetween(min, max float64) float64 {
	return min + s.Float()*(max-min)
}

// Pick returns a uniformly chosen index into a collection of length n.
// Returns -1 for an empty collection.
func (s *Source) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return s.r.Intn(n)
}

// Shuffle permutes a collection in place using Fisher-Yates.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.Float() < p
}

// Die rolls a die with the given number of sides, returning 1..sides.
func (s *Source) Die(sides int) int {
	return s.IntBetween(1, sides)
}
