package schedule

import (
	"fmt"
	"math/rand"

	"banditlab/domain/core"
)

// A variable-ratio reinforcement schedule: a flat sequence of 0/1 flags
// consumed one per win. Each contiguous block of BlockSize flags is an
// independently shuffled permutation of the base block, so exactly one
// win in four is flagged salient no matter where the cursor sits.
type Schedule []int

const (
	// BlockSize is the length of one shuffled base block.
	BlockSize = 4
	// DefaultBlocks is the number of blocks generated for a session artifact.
	DefaultBlocks = 50
)

// base returns a fresh copy of the unshuffled block: one salient flag,
// three non-salient.
func base() []int {
	return []int{0, 0, 0, 1}
}

// Generate builds a schedule of the given number of blocks, each block
// shuffled independently with the provided stream.
func Generate(blocks int, rng *rand.Rand) Schedule {
	s := make(Schedule, 0, blocks*BlockSize)
	for i := 0; i < blocks; i++ {
		s = appendBlock(s, rng)
	}
	return s
}

// Grow appends one more shuffled block. Called when the cursor has
// consumed every flag, so a long run of wins can never index past the end.
func (s *Schedule) Grow(rng *rand.Rand) {
	*s = appendBlock(*s, rng)
}

func appendBlock(s Schedule, rng *rand.Rand) Schedule {
	block := base()
	rng.Shuffle(len(block), func(i, j int) {
		block[i], block[j] = block[j], block[i]
	})
	return append(s, block...)
}

// Validate checks a schedule loaded from disk: non-empty, flags limited
// to 0 and 1.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return core.ErrScheduleNotFound
	}
	for i, flag := range s {
		if flag != 0 && flag != 1 {
			return fmt.Errorf("%w: got %d at index %d", core.ErrScheduleFlag, flag, i)
		}
	}
	return nil
}
