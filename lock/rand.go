package lock

import "math/rand"

// Rand defines an interface for random number generation, allowing for testing.
// It abstracts away sources like `math/rand/v2`.
type Rand interface {
	// Int64N returns, as an int64, a non-negative pseudo-random number in [0,n).
	// It panics if n <= 0.
	Int64N(n int64) int64
}

// standardRand implements Rand using the shared math/rand/v2 source.
type standardRand struct{}

// NewStandardRand returns a Rand backed by math/rand/v2.
func NewStandardRand() Rand {
	return &standardRand{}
}

func (standardRand) Int64N(n int64) int64 {
	return rand.Int63n(n)
}
