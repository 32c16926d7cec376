// Package dice provides the randomness seam used by the engine.
// Every random decision in forge, combat and dungeon goes through a Source
// so callers can seed or script it.
package dice

import (
	"math/rand"
	"time"
)

// Source is the subset of *rand.Rand the engine draws from.
type Source interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// Intn returns a value in [0,n).
	Intn(n int) int
	// Shuffle pseudo-randomizes the order of n elements.
	Shuffle(n int, swap func(i, j int))
}

// New returns a deterministic source for the given seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewRandom returns a source seeded from the wall clock.
func NewRandom() *rand.Rand {
	return New(time.Now().UnixNano())
}

// Chance reports whether a uniform draw falls below p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Between returns a uniform value in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Pick returns true or false with equal odds, matching a `> 0.5` coin flip.
func Pick(src Source) bool {
	return src.Float64() > 0.5
}
