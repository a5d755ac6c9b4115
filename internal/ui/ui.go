// Package ui renders ranking results and run diagnostics. Ranked lines go to
// the output stream; stats, headers, timing and errors go to the diagnostic
// stream so the ranking can be piped on its own.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/papapumpkin/linkrank/internal/ansi"
	"github.com/papapumpkin/linkrank/internal/rank"
	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// Printer writes formatted run output.
type Printer struct {
	out   io.Writer
	diag  io.Writer
	color bool
}

// New returns a Printer writing results to out and diagnostics to diag.
// color enables ANSI styling on diagnostics only.
func New(out, diag io.Writer, color bool) *Printer {
	return &Printer{out: out, diag: diag, color: color}
}

func (p *Printer) style(s string, codes ...string) string {
	return ansi.Style(p.color, s, codes...)
}

// Stats prints node and edge counts of the loaded graph.
func (p *Printer) Stats(s webgraph.Stats) {
	fmt.Fprintf(p.diag, "There are %d nodes in this graph.\n", s.Nodes)
	fmt.Fprintf(p.diag, "There are %d edges in this graph.\n", s.Edges)
	if s.DanglingTargets > 0 {
		fmt.Fprintln(p.diag, p.style(fmt.Sprintf("%d linked pages have no outgoing links.", s.DanglingTargets), ansi.Dim))
	}
}

// Ranking prints the header and the ranked entries. Stochastic scores are
// shown as percentages, distribution scores as raw probabilities.
func (p *Printer) Ranking(method rank.Method, entries []rank.Entry) {
	fmt.Fprintln(p.diag, p.style(fmt.Sprintf("Top %d pages:", len(entries)), ansi.Bold, ansi.Cyan))
	for _, e := range entries {
		fmt.Fprintln(p.out, FormatEntry(method, e))
	}
}

// FormatEntry renders one ranked line as "<score>\t<id>".
func FormatEntry(method rank.Method, e rank.Entry) string {
	if method == rank.MethodStochastic {
		return fmt.Sprintf("%.2f\t%s", 100*e.Score, e.ID)
	}
	return fmt.Sprintf("%.6f\t%s", e.Score, e.ID)
}

// Summary prints run notes that affect how the scores should be read.
func (p *Printer) Summary(res *rank.Result) {
	if res.Restarts > 0 {
		fmt.Fprintln(p.diag, p.style(fmt.Sprintf("%d walk(s) restarted at dead ends.", res.Restarts), ansi.Yellow))
	}
	if res.LostMass > 0 {
		fmt.Fprintln(p.diag, p.style(fmt.Sprintf("%.6f probability mass lost to dangling pages.", res.LostMass), ansi.Yellow))
	}
}

// Timing prints how long ranking took.
func (p *Printer) Timing(d time.Duration) {
	fmt.Fprintf(p.diag, "Calculation took %.2f seconds.\n", d.Seconds())
}

// ReportWritten notes where the TOML report was saved.
func (p *Printer) ReportWritten(path string) {
	fmt.Fprintln(p.diag, p.style("✓ report written to "+path, ansi.Green))
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.diag, "%s%s\n", p.style("error: ", ansi.Red, ansi.Bold), msg)
}
