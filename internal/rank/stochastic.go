package rank

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// ctxCheckInterval is how many walks run between context checks.
const ctxCheckInterval = 1024

// StochasticOptions configures Stochastic.
type StochasticOptions struct {
	Repeats int // number of walks; must be >= 1
	Steps   int // steps per walk; must be >= 0
	DeadEnd DeadEndPolicy

	// Chooser supplies randomness for a serial run. When nil, NewChooser(Seed)
	// is used. Parallel runs ignore it and seed each worker with Seed+i.
	Chooser Chooser
	Seed    uint64

	// Workers > 1 splits the walks across goroutines.
	Workers int

	Logger *slog.Logger
}

// Stochastic estimates rank as the fraction of random walks that end on
// each node. Each walk starts at a uniformly random node and follows
// Steps uniformly random out-edges, duplicates weighted by multiplicity.
// The scores sum to 1 whenever the run succeeds.
func Stochastic(ctx context.Context, g *webgraph.Graph, opts StochasticOptions) (*Result, error) {
	if opts.Repeats < 1 {
		return nil, &InvalidParameterError{Name: "repeats", Value: opts.Repeats, Want: ">= 1"}
	}
	if opts.Steps < 0 {
		return nil, &InvalidParameterError{Name: "steps", Value: opts.Steps, Want: ">= 0"}
	}
	if g.Len() == 0 {
		return nil, ErrEmptyGraph
	}
	policy := opts.DeadEnd
	if policy == "" {
		policy = DeadEndFail
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	idx := g.Index()
	w := walker{idx: idx, steps: opts.Steps, policy: policy}

	var (
		hits     []int64
		restarts int
		err      error
	)
	if opts.Workers > 1 && opts.Repeats > 1 {
		hits, restarts, err = w.runParallel(ctx, opts.Repeats, opts.Workers, opts.Seed, logger)
	} else {
		rng := opts.Chooser
		if rng == nil {
			rng = NewChooser(opts.Seed)
		}
		hits = make([]int64, len(idx.IDs))
		restarts, err = w.run(ctx, opts.Repeats, rng, hits)
	}
	if err != nil {
		return nil, err
	}

	vals := make([]float64, len(hits))
	for i, h := range hits {
		vals[i] = float64(h) / float64(opts.Repeats)
	}

	res := &Result{
		Method:   MethodStochastic,
		Scores:   newScores(idx.IDs, vals),
		Repeats:  opts.Repeats,
		Steps:    opts.Steps,
		Restarts: restarts,
		Elapsed:  time.Since(start),
	}
	logger.Debug("stochastic ranking done",
		"nodes", len(idx.IDs), "repeats", opts.Repeats, "steps", opts.Steps,
		"restarts", restarts, "elapsed", res.Elapsed)
	return res, nil
}

// walker simulates random walks over an indexed graph.
type walker struct {
	idx    *webgraph.Index
	steps  int
	policy DeadEndPolicy
}

// run performs n walks, adding one hit per walk to the end node.
func (w walker) run(ctx context.Context, n int, rng Chooser, hits []int64) (int, error) {
	restarts := 0
	for i := 0; i < n; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return restarts, err
			}
		}
		end, r, err := w.walk(rng)
		restarts += r
		if err != nil {
			return restarts, err
		}
		hits[end]++
	}
	return restarts, nil
}

// walk performs one walk and returns the index of the node it ends on and
// the number of restarts taken.
func (w walker) walk(rng Chooser) (int, int, error) {
	nodes := len(w.idx.IDs)
	cur := rng.IntN(nodes)
	prev, edge := -1, -1
	restarts := 0

	for j := 0; j < w.steps; j++ {
		if cur == webgraph.Dangling {
			if err := w.deadEnd(prev, edge); err != nil {
				return 0, restarts, err
			}
			restarts++
			cur = rng.IntN(nodes)
		}
		out := w.idx.Out[cur]
		edge = rng.IntN(len(out))
		prev, cur = cur, out[edge]
	}

	// A walk may only be scored at a node, so landing on a dangling target
	// with the final step is a dead end too.
	if cur == webgraph.Dangling {
		if err := w.deadEnd(prev, edge); err != nil {
			return 0, restarts, err
		}
		restarts++
		cur = rng.IntN(nodes)
	}
	return cur, restarts, nil
}

// deadEnd applies the policy for a walker that followed edge of node from
// into a dangling target. A nil return means restart.
func (w walker) deadEnd(from, edge int) error {
	if w.policy == DeadEndRestart {
		return nil
	}
	return &BrokenLinkError{
		Node: w.idx.TargetLabel(from, edge),
		From: w.idx.IDs[from],
	}
}

// runParallel splits n walks across workers, each with its own Chooser and
// hit vector, and sums the partial counts once all workers finish. The first
// error cancels the remaining workers.
func (w walker) runParallel(ctx context.Context, n, workers int, seed uint64, logger *slog.Logger) ([]int64, int, error) {
	if workers > n {
		workers = n
	}
	partial := make([][]int64, workers)
	restarts := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	per, extra := n/workers, n%workers
	for i := 0; i < workers; i++ {
		count := per
		if i < extra {
			count++
		}
		partial[i] = make([]int64, len(w.idx.IDs))
		g.Go(func() error {
			rng := NewChooser(seed + uint64(i))
			r, err := w.run(gctx, count, rng, partial[i])
			restarts[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	hits := make([]int64, len(w.idx.IDs))
	total := 0
	for i := range partial {
		for j, h := range partial[i] {
			hits[j] += h
		}
		total += restarts[i]
	}
	logger.Debug("merged walker partials", "workers", workers)
	return hits, total, nil
}
