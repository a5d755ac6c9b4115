package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/linkrank/internal/config"
	"github.com/papapumpkin/linkrank/internal/logging"
	"github.com/papapumpkin/linkrank/internal/rank"
	"github.com/papapumpkin/linkrank/internal/report"
	"github.com/papapumpkin/linkrank/internal/telemetry"
	"github.com/papapumpkin/linkrank/internal/ui"
	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// runEnv carries the collaborators of a ranking run.
type runEnv struct {
	printer *ui.Printer
	logger  *slog.Logger
	events  *telemetry.Emitter
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	in, source, closeInput, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeInput()

	var events *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		events, err = telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return err
		}
		defer events.Close()
	}

	env := runEnv{
		printer: ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColor(cmd.ErrOrStderr())),
		logger:  logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr()),
		events:  events,
	}
	return rankInput(cmd.Context(), cfg, in, source, env)
}

// rankInput loads the graph from in, ranks it with the configured method and
// prints the result. Stats are printed as soon as the graph loads; nothing is
// printed on stdout if ranking fails.
func rankInput(ctx context.Context, cfg config.Config, in io.Reader, source string, env runEnv) error {
	if ctx == nil {
		ctx = context.Background()
	}
	method := rank.Method(cfg.Method)
	env.record(telemetry.KindRunStart, map[string]any{
		"source": source, "method": cfg.Method, "repeats": cfg.Repeats, "steps": cfg.Steps,
	})

	g, err := webgraph.Load(in, graphOptions(cfg.Grouping)...)
	if err != nil {
		env.record(telemetry.KindRankFailed, map[string]any{"stage": "load", "error": err.Error()})
		return fmt.Errorf("loading %s: %w", source, err)
	}
	stats := g.Stats()
	env.printer.Stats(stats)
	env.logger.Debug("graph loaded", "source", source, "nodes", stats.Nodes, "edges", stats.Edges,
		"dangling_targets", stats.DanglingTargets, "grouping", cfg.Grouping)
	env.record(telemetry.KindGraphLoaded, stats)

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	res, err := runMethod(ctx, g, cfg, seed, env.logger)
	if err != nil {
		env.printer.Timing(time.Since(start))
		env.record(telemetry.KindRankFailed, map[string]any{"stage": "rank", "error": err.Error()})
		return fmt.Errorf("%s ranking: %w", method, err)
	}

	env.printer.Ranking(method, res.Scores.Top(cfg.Number))
	env.printer.Summary(res)
	env.printer.Timing(res.Elapsed)

	if cfg.ReportPath != "" {
		r := report.New(res, stats, report.Params{
			Repeats:  cfg.Repeats,
			Steps:    res.Steps,
			Number:   cfg.Number,
			Seed:     seed,
			Workers:  cfg.Workers,
			DeadEnd:  deadEndParam(method, cfg.DeadEnd),
			Dangling: danglingParam(method, cfg.Dangling),
			Grouping: cfg.Grouping,
		})
		r.RunID = env.events.RunID()
		r.Source = source
		if err := report.Write(cfg.ReportPath, r); err != nil {
			return err
		}
		env.printer.ReportWritten(cfg.ReportPath)
	}

	env.record(telemetry.KindRankDone, map[string]any{
		"method":     cfg.Method,
		"elapsed_ms": res.Elapsed.Milliseconds(),
		"score_sum":  res.Scores.Sum(),
		"restarts":   res.Restarts,
		"lost_mass":  res.LostMass,
	})
	return nil
}

// runMethod dispatches to the configured ranker.
func runMethod(ctx context.Context, g *webgraph.Graph, cfg config.Config, seed uint64, logger *slog.Logger) (*rank.Result, error) {
	switch rank.Method(cfg.Method) {
	case rank.MethodDistribution:
		policy, err := rank.ParseDanglingPolicy(cfg.Dangling)
		if err != nil {
			return nil, err
		}
		return rank.Distribution(ctx, g, rank.DistributionOptions{
			Repeats:  cfg.Repeats,
			Dangling: policy,
			Workers:  cfg.Workers,
			Logger:   logger,
		})
	default:
		policy, err := rank.ParseDeadEndPolicy(cfg.DeadEnd)
		if err != nil {
			return nil, err
		}
		return rank.Stochastic(ctx, g, rank.StochasticOptions{
			Repeats: cfg.Repeats,
			Steps:   cfg.Steps,
			DeadEnd: policy,
			Seed:    seed,
			Workers: cfg.Workers,
			Logger:  logger,
		})
	}
}

func (e runEnv) record(kind string, data any) {
	if err := e.events.Record(kind, data); err != nil {
		e.logger.Warn("telemetry write failed", "kind", kind, "error", err)
	}
}

func graphOptions(grouping string) []webgraph.Option {
	if grouping == config.GroupingContiguous {
		return []webgraph.Option{webgraph.WithContiguousRuns()}
	}
	return nil
}

func deadEndParam(m rank.Method, v string) string {
	if m == rank.MethodStochastic {
		return v
	}
	return ""
}

func danglingParam(m rank.Method, v string) string {
	if m == rank.MethodDistribution {
		return v
	}
	return ""
}

// openInput returns the edge-list reader named by args, or stdin when no
// file (or "-") is given.
func openInput(cmd *cobra.Command, args []string) (io.Reader, string, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), "stdin", func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", nil, fmt.Errorf("opening edge list: %w", err)
	}
	return f, args[0], func() { f.Close() }, nil
}

// useColor reports whether w is a terminal that accepts ANSI styling.
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
