// Package webgraph provides the in-memory directed link graph that the
// rankers operate on. A Graph maps each source page to its ordered list of
// outgoing link targets (duplicates kept) and is immutable once built.
package webgraph

import "slices"

// Dangling marks an adjacency entry whose target has no outgoing edges and
// therefore no node index.
const Dangling = -1

// Graph is an immutable directed multigraph of hyperlinks.
// Only labels that appear as a source are nodes; a label seen solely as a
// target is a dangling target and has no entry.
type Graph struct {
	// nodes holds source labels in order of first appearance.
	nodes []string
	// out maps node label → outgoing targets, duplicates preserved.
	out map[string][]string
	// dangling holds labels that are targets but never sources.
	dangling []string
}

// Stats summarises a graph for diagnostic output.
type Stats struct {
	Nodes           int // source labels with at least one out-edge
	Edges           int // total out-edges, duplicates counted
	DanglingTargets int // labels that are only ever link targets
}

// Nodes returns node labels in first-appearance order. The returned slice
// must not be modified.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// HasNode reports whether id has outgoing edges.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.out[id]
	return ok
}

// Targets returns the outgoing targets of id, or nil if id is not a node.
// The returned slice must not be modified.
func (g *Graph) Targets(id string) []string {
	return g.out[id]
}

// OutDegree returns the number of outgoing edges of id, counting duplicates.
func (g *Graph) OutDegree(id string) int {
	return len(g.out[id])
}

// DanglingTargets returns labels that are linked to but never link out,
// in first-appearance order.
func (g *Graph) DanglingTargets() []string {
	return g.dangling
}

// Stats returns node, edge and dangling-target counts.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.nodes), DanglingTargets: len(g.dangling)}
	for _, id := range g.nodes {
		s.Edges += len(g.out[id])
	}
	return s
}

// Index is an integer-addressed view of a Graph. Out[i] lists the target
// indices of node IDs[i]; targets without outgoing edges are Dangling.
type Index struct {
	IDs []string
	Out [][]int

	labels [][]string
}

// TargetLabel returns the label of the edge-th target of node i.
func (x *Index) TargetLabel(i, edge int) string {
	return x.labels[i][edge]
}

// Index compiles g into integer adjacency lists.
func (g *Graph) Index() *Index {
	pos := make(map[string]int, len(g.nodes))
	for i, id := range g.nodes {
		pos[id] = i
	}
	out := make([][]int, len(g.nodes))
	labels := make([][]string, len(g.nodes))
	for i, id := range g.nodes {
		targets := g.out[id]
		labels[i] = targets
		row := make([]int, len(targets))
		for j, t := range targets {
			if k, ok := pos[t]; ok {
				row[j] = k
			} else {
				row[j] = Dangling
			}
		}
		out[i] = row
	}
	return &Index{IDs: slices.Clone(g.nodes), Out: out, labels: labels}
}

// Option configures a Builder.
type Option func(*Builder)

// WithContiguousRuns makes the Builder group edges only while the source
// label is unchanged from the previous edge. A later run for a label
// replaces the earlier one, so input must be pre-grouped by source to
// avoid losing edges.
func WithContiguousRuns() Option {
	return func(b *Builder) { b.contiguous = true }
}

// Builder accumulates edges into a Graph. By default edges are merged by
// source label regardless of input order.
type Builder struct {
	contiguous bool

	order []string
	out   map[string][]string

	// Pending run, contiguous mode only.
	runSource string
	run       []string
	inRun     bool
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{out: make(map[string][]string)}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Add records an edge from source to target.
func (b *Builder) Add(source, target string) {
	if !b.contiguous {
		if _, ok := b.out[source]; !ok {
			b.order = append(b.order, source)
		}
		b.out[source] = append(b.out[source], target)
		return
	}

	if b.inRun && source == b.runSource {
		b.run = append(b.run, target)
		return
	}
	b.commitRun()
	b.runSource = source
	b.run = []string{target}
	b.inRun = true
}

func (b *Builder) commitRun() {
	if !b.inRun {
		return
	}
	if _, ok := b.out[b.runSource]; !ok {
		b.order = append(b.order, b.runSource)
	}
	b.out[b.runSource] = b.run
	b.run = nil
	b.inRun = false
}

// Build returns a Graph snapshot of the edges added so far. The Builder
// may continue to be used; later additions do not affect the snapshot.
func (b *Builder) Build() *Graph {
	out := make(map[string][]string, len(b.out)+1)
	for id, targets := range b.out {
		out[id] = slices.Clone(targets)
	}
	nodes := slices.Clone(b.order)
	if b.inRun {
		if _, ok := out[b.runSource]; !ok {
			nodes = append(nodes, b.runSource)
		}
		out[b.runSource] = slices.Clone(b.run)
	}

	var dangling []string
	seen := make(map[string]bool)
	for _, id := range nodes {
		for _, t := range out[id] {
			if _, isNode := out[t]; isNode || seen[t] {
				continue
			}
			seen[t] = true
			dangling = append(dangling, t)
		}
	}

	return &Graph{nodes: nodes, out: out, dangling: dangling}
}

// Build constructs a Graph from edges.
func Build(edges []Edge, opts ...Option) *Graph {
	b := NewBuilder(opts...)
	for _, e := range edges {
		b.Add(e.Source, e.Target)
	}
	return b.Build()
}

// FromMap builds a Graph from an adjacency map. Keys are ordered
// lexically; entries with no targets are skipped.
func FromMap(adj map[string][]string) *Graph {
	keys := make([]string, 0, len(adj))
	for k := range adj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	b := NewBuilder()
	for _, k := range keys {
		for _, t := range adj[k] {
			b.Add(k, t)
		}
	}
	return b.Build()
}
