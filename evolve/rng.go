package evolve

import "fmt"

// Rand is the deterministic pseudo-random generator used for mutation and
// random genome seeding: a linear-congruential recurrence with an explicit
// state object, so repeated runs from the same seed reproduce identical
// populations and fitness traces. The recurrence and the range reduction
// must stay bit-for-bit stable.
type Rand struct {
	seed uint32
}

// NewRand returns a generator seeded with the given value.
func NewRand(seed uint32) *Rand {
	return &Rand{seed: seed}
}

// Intn returns a uniformly distributed value in [0, n). n must not be larger
// than 256.
func (r *Rand) Intn(n int) int {
	if n < 1 || n > 256 {
		panic(fmt.Sprintf("evolve: Intn range %d out of [1, 256]", n))
	}
	r.seed = r.seed*1103515245 + 12345
	return int(((r.seed >> 8) * uint32(n)) >> 24)
}

// Seed returns the current generator state.
func (r *Rand) Seed() uint32 {
	return r.seed
}
