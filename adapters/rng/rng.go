package rng

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// Adapter implements ports.RNGPort with deterministic, name-derived
// streams. Two streams with different names never share a sequence even
// when they start from the same base seed, so schedule generation, walk
// generation, layout shuffling and intervals stay independent.
type Adapter struct{}

// NewAdapter creates a new RNG adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(deriveSeed(seed, name))), nil
}

// SessionStream creates a deterministic RNG stream scoped to one participant's
// session, so reruns with the same seed reproduce layouts and intervals exactly
func (a *Adapter) SessionStream(ctx context.Context, participantID, name string, baseSeed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(deriveSeed(baseSeed, participantID, name))), nil
}

// deriveSeed folds the name parts into the base seed. Parts are
// separated so ("ab","c") and ("a","bc") derive different seeds.
func deriveSeed(base int64, parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return base + int64(h.Sum64())
}
