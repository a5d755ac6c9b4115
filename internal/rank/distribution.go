package rank

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// DistributionOptions configures Distribution.
type DistributionOptions struct {
	Repeats  int // propagation rounds; must be >= 0
	Dangling DanglingPolicy

	// Workers > 1 splits the nodes of each round across goroutines.
	Workers int

	Logger *slog.Logger
}

// Distribution computes the probability of a random walker being on each
// node after exactly Repeats rounds, starting from the uniform distribution.
// Each round every node splits its mass evenly over its out-edges.
//
// Mass sent to a dangling target is handled by opts.Dangling. Under
// DanglingDrop the total falls below 1 by Result.LostMass.
func Distribution(ctx context.Context, g *webgraph.Graph, opts DistributionOptions) (*Result, error) {
	if opts.Repeats < 0 {
		return nil, &InvalidParameterError{Name: "repeats", Value: opts.Repeats, Want: ">= 0"}
	}
	policy := opts.Dangling
	if policy == "" {
		policy = DanglingDrop
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	idx := g.Index()
	n := len(idx.IDs)
	res := &Result{Method: MethodDistribution, Repeats: opts.Repeats}
	if n == 0 {
		res.Scores = Scores{}
		res.Elapsed = time.Since(start)
		return res, nil
	}

	prob := make([]float64, n)
	next := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range prob {
		prob[i] = initial
	}

	workers := max(opts.Workers, 1)
	for round := 0; round < opts.Repeats; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clear(next)

		var out spread
		if workers > 1 && n > 1 {
			var err error
			out, err = spreadParallel(ctx, idx, prob, next, workers)
			if err != nil {
				return nil, err
			}
		} else {
			out = spreadRange(idx, prob, next, 0, n)
		}

		if out.lost > 0 {
			switch policy {
			case DanglingFail:
				return nil, &BrokenLinkError{
					Node: idx.TargetLabel(out.from, out.edge),
					From: idx.IDs[out.from],
				}
			case DanglingRedistribute:
				share := out.lost / float64(n)
				for i := range next {
					next[i] += share
				}
			default:
				res.LostMass += out.lost
			}
		}
		prob, next = next, prob
		logger.Debug("propagation round", "round", round+1, "lost", out.lost)
	}

	res.Scores = newScores(idx.IDs, prob)
	res.Elapsed = time.Since(start)
	logger.Debug("distribution ranking done",
		"nodes", n, "rounds", opts.Repeats, "lost_mass", res.LostMass, "elapsed", res.Elapsed)
	return res, nil
}

// spread is the outcome of propagating one round over a range of nodes.
type spread struct {
	lost float64 // mass sent to dangling targets
	// First node and edge index that sent positive mass to a dangling target.
	from, edge int
}

// spreadRange pushes the mass of nodes [lo, hi) along their out-edges into next.
func spreadRange(idx *webgraph.Index, prob, next []float64, lo, hi int) spread {
	s := spread{from: -1, edge: -1}
	for x := lo; x < hi; x++ {
		out := idx.Out[x]
		share := prob[x] / float64(len(out))
		for k, t := range out {
			if t == webgraph.Dangling {
				if share > 0 && s.from < 0 {
					s.from, s.edge = x, k
				}
				s.lost += share
				continue
			}
			next[t] += share
		}
	}
	return s
}

// spreadParallel runs spreadRange over contiguous node chunks, each into a
// private vector, and sums the partials into next. Workers that start after
// ctx is canceled skip their chunk and the round fails.
func spreadParallel(ctx context.Context, idx *webgraph.Index, prob, next []float64, workers int) (spread, error) {
	n := len(prob)
	if workers > n {
		workers = n
	}
	partial := make([][]float64, workers)
	results := make([]spread, workers)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for i := 0; i < workers; i++ {
		lo, hi := i*chunk, min((i+1)*chunk, n)
		partial[i] = make([]float64, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = spreadRange(idx, prob, partial[i], lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return spread{}, err
	}

	total := spread{from: -1, edge: -1}
	for i := range partial {
		for j, v := range partial[i] {
			next[j] += v
		}
		total.lost += results[i].lost
		if total.from < 0 && results[i].from >= 0 {
			total.from, total.edge = results[i].from, results[i].edge
		}
	}
	return total, nil
}
