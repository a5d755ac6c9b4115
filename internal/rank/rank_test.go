package rank

import (
	"math"
	"testing"

	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// seqChooser replays a fixed sequence of picks, wrapping around when exhausted.
type seqChooser struct {
	vals []int
	pos  int
}

func (s *seqChooser) IntN(n int) int {
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v % n
}

const tolerance = 1e-9

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// triangle is {A: [B, C], B: [A], C: [A]}.
func triangle() *webgraph.Graph {
	return webgraph.Build([]webgraph.Edge{
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C"},
		{Source: "B", Target: "A"},
		{Source: "C", Target: "A"},
	})
}

// cycle returns n0 -> n1 -> ... -> n(k-1) -> n0.
func cycle(k int) *webgraph.Graph {
	b := webgraph.NewBuilder()
	for i := 0; i < k; i++ {
		b.Add(label(i), label((i+1)%k))
	}
	return b.Build()
}

func label(i int) string {
	return string(rune('a'+i%26)) + string(rune('0'+i/26))
}

// mesh is a strongly connected graph without dangling targets, with
// duplicate edges and self-loops.
func mesh() *webgraph.Graph {
	return webgraph.FromMap(map[string][]string{
		"a": {"b", "c", "c"},
		"b": {"a", "d"},
		"c": {"c", "d", "a"},
		"d": {"a", "b", "b", "e"},
		"e": {"a"},
	})
}

func assertScoresInRange(t *testing.T, s Scores) {
	t.Helper()
	for id, v := range s {
		if v < 0 || v > 1 {
			t.Errorf("score[%s] = %v, want within [0, 1]", id, v)
		}
	}
}
