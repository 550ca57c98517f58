package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// SessionStream creates a deterministic RNG stream scoped to one participant's
	// session, so reruns with the same seed reproduce layouts and intervals exactly
	SessionStream(ctx context.Context, participantID, name string, baseSeed int64) (*rand.Rand, error)
}
