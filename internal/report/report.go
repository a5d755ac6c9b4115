// Package report persists the outcome of a ranking run as a TOML document.
package report

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/linkrank/internal/rank"
	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// Report is the TOML-serializable summary of a ranking run.
// Durations are stored as nanoseconds since the TOML library does not
// natively support Go durations.
type Report struct {
	RunID       string    `toml:"run_id,omitempty"`
	Source      string    `toml:"source"`
	Method      string    `toml:"method"`
	CompletedAt time.Time `toml:"completed_at"`
	ElapsedNs   int64     `toml:"elapsed_ns"`

	Params Params  `toml:"params"`
	Graph  Graph   `toml:"graph"`
	Totals Totals  `toml:"totals"`
	Top    []Entry `toml:"top"`
}

// Params records the inputs of the run.
type Params struct {
	Repeats  int    `toml:"repeats"`
	Steps    int    `toml:"steps,omitempty"`
	Number   int    `toml:"number"`
	Seed     uint64 `toml:"seed,omitempty"`
	Workers  int    `toml:"workers"`
	DeadEnd  string `toml:"dead_end,omitempty"`
	Dangling string `toml:"dangling,omitempty"`
	Grouping string `toml:"grouping"`
}

// Graph records the diagnostic counts of the ranked graph.
type Graph struct {
	Nodes           int `toml:"nodes"`
	Edges           int `toml:"edges"`
	DanglingTargets int `toml:"dangling_targets"`
}

// Totals records aggregate properties of the scores.
type Totals struct {
	ScoreSum float64 `toml:"score_sum"`
	LostMass float64 `toml:"lost_mass,omitempty"`
	Restarts int     `toml:"restarts,omitempty"`
}

// Entry is one ranked node.
type Entry struct {
	Rank  int     `toml:"rank"`
	ID    string  `toml:"id"`
	Score float64 `toml:"score"`
}

// New assembles a Report from a finished run. params.Number limits the
// entries kept; zero keeps all.
func New(res *rank.Result, stats webgraph.Stats, params Params) Report {
	r := Report{
		Method:      string(res.Method),
		CompletedAt: time.Now().UTC(),
		ElapsedNs:   res.Elapsed.Nanoseconds(),
		Params:      params,
		Graph: Graph{
			Nodes:           stats.Nodes,
			Edges:           stats.Edges,
			DanglingTargets: stats.DanglingTargets,
		},
		Totals: Totals{
			ScoreSum: res.Scores.Sum(),
			LostMass: res.LostMass,
			Restarts: res.Restarts,
		},
	}
	for i, e := range res.Scores.Top(params.Number) {
		r.Top = append(r.Top, Entry{Rank: i + 1, ID: e.ID, Score: e.Score})
	}
	return r
}

// Write marshals r to path, replacing any existing file atomically.
func Write(path string, r Report) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp report file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming report file: %w", err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := toml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parsing report: %w", err)
	}
	return r, nil
}
