package rank

import (
	"cmp"
	"slices"
	"time"
)

// Method names a ranking strategy.
type Method string

const (
	// MethodStochastic estimates ranks from random-walk end points.
	MethodStochastic Method = "stochastic"
	// MethodDistribution propagates a probability vector for a fixed number of rounds.
	MethodDistribution Method = "distribution"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m == MethodStochastic || m == MethodDistribution
}

// Scores maps node label to its rank score.
type Scores map[string]float64

// Entry is a single ranked node.
type Entry struct {
	ID    string
	Score float64
}

// Top returns the n highest-scoring entries, highest first. Equal scores
// are ordered by ID so output is stable across runs. n <= 0 returns all.
func (s Scores) Top(n int) []Entry {
	entries := make([]Entry, 0, len(s))
	for id, score := range s {
		entries = append(entries, Entry{ID: id, Score: score})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Sum returns the total score mass, summed in label order.
func (s Scores) Sum() float64 {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var total float64
	for _, id := range ids {
		total += s[id]
	}
	return total
}

// Result is the outcome of one ranking run.
type Result struct {
	Method  Method
	Scores  Scores
	Repeats int
	Steps   int // stochastic only

	// Restarts counts walks resumed from a fresh start node after hitting
	// a dead end (DeadEndRestart only).
	Restarts int
	// LostMass is the probability mass that flowed into dangling targets
	// and left the system (DanglingDrop only).
	LostMass float64

	Elapsed time.Duration
}

// newScores maps a dense score vector back to labels.
func newScores(ids []string, vals []float64) Scores {
	s := make(Scores, len(ids))
	for i, id := range ids {
		s[id] = vals[i]
	}
	return s
}
