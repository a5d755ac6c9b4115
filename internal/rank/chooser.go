package rank

import "math/rand/v2"

// Chooser picks uniformly random indices. Both rankers draw every random
// selection through it, so tests can inject fixed sequences.
type Chooser interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// NewChooser returns a PCG-backed Chooser. Equal seeds yield equal sequences.
func NewChooser(seed uint64) Chooser {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
