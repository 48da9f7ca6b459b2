package puzzle

import (
	"math/rand/v2"
	"slices"
)

// Rand is the random source used for generation.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n). n is always > 0.
	IntN(n int) int
}

// NewSeededRand returns a deterministic source for the given seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// newRuntimeRand returns a source seeded from the runtime.
func newRuntimeRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// sample draws k distinct elements of items without replacement, in draw
// order. items is not modified. Uses a partial Fisher-Yates shuffle so that
// exactly k values are drawn from r.
func sample[T any](r Rand, items []T, k int) []T {
	out := slices.Clone(items)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:k:k]
}

// RandomShape picks a puzzle size: nSides uniform in {2,3,4}, then nCars
// uniform in [2, nSides].
func RandomShape(r Rand) (nSides, nCars int) {
	return ResolveShape(r, 0, 0)
}

// ResolveShape fills in a zero side or car count at random so that the
// shape is valid with respect to the other count. Non-zero counts are kept
// as given, even if invalid; NewSign reports those.
func ResolveShape(r Rand, nSides, nCars int) (int, int) {
	if nSides == 0 {
		low := max(nCars, MinSides)
		if low > MaxSides {
			nSides = low
		} else {
			nSides = low + r.IntN(MaxSides-low+1)
		}
	}
	if nCars == 0 {
		high := min(nSides, MaxCars)
		if high < MinCars {
			nCars = MinCars
		} else {
			nCars = MinCars + r.IntN(high-MinCars+1)
		}
	}
	return nSides, nCars
}
