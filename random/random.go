package random

import (
	"math/rand/v2"
	"time"
)

// the base seed for unseeded generators
var baseSeed uint64

func init() {
	baseSeed = uint64(time.Now().UnixNano())
}

// Random is a byte source for the CHIP-8 RND instruction.
type Random struct {
	Seed uint64 // Seed of the sequence. Zero selects the base seed.

	// use zero seed rather than the random base seed. this is only really
	// useful when the sequence must be predictable
	ZeroSeed bool

	rng *rand.Rand
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(seed uint64) *Random {
	return &Random{
		Seed: seed,
	}
}

// new PCG generator from the standard library
func (rnd *Random) rand() *rand.Rand {
	if rnd.rng == nil {
		seed := rnd.Seed
		if seed == 0 && !rnd.ZeroSeed {
			seed = baseSeed
		}
		rnd.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return rnd.rng
}

// Reset restarts the sequence from the seed.
func (rnd *Random) Reset() {
	rnd.rng = nil
}

// Byte returns a value uniform over 0 to 255.
func (rnd *Random) Byte() uint8 {
	return uint8(rnd.rand().UintN(256))
}
