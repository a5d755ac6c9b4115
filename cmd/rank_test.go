package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papapumpkin/linkrank/internal/config"
	"github.com/papapumpkin/linkrank/internal/logging"
	"github.com/papapumpkin/linkrank/internal/rank"
	"github.com/papapumpkin/linkrank/internal/report"
	"github.com/papapumpkin/linkrank/internal/telemetry"
	"github.com/papapumpkin/linkrank/internal/ui"
	"github.com/papapumpkin/linkrank/internal/webgraph"
)

func testConfig(method rank.Method) config.Config {
	return config.Config{
		Method:    string(method),
		Repeats:   1,
		Steps:     0,
		Number:    0,
		Seed:      1,
		Workers:   1,
		DeadEnd:   string(rank.DeadEndFail),
		Dangling:  string(rank.DanglingDrop),
		Grouping:  config.GroupingMerge,
		LogLevel:  "error",
		LogFormat: "text",
	}
}

type runOutput struct {
	stdout, stderr bytes.Buffer
}

func runInput(t *testing.T, cfg config.Config, input string, events *telemetry.Emitter) (*runOutput, error) {
	t.Helper()
	out := &runOutput{}
	env := runEnv{
		printer: ui.New(&out.stdout, &out.stderr, false),
		logger:  logging.New("text", "error", io.Discard),
		events:  events,
	}
	err := rankInput(context.Background(), cfg, strings.NewReader(input), "test", env)
	return out, err
}

func TestRankInput_Distribution(t *testing.T) {
	t.Parallel()
	out, err := runInput(t, testConfig(rank.MethodDistribution), "A B\nA C\nB A\nC A\n", nil)
	if err != nil {
		t.Fatalf("rankInput: %v", err)
	}

	want := "0.666667\tA\n0.166667\tB\n0.166667\tC\n"
	if out.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", out.stdout.String(), want)
	}
	for _, s := range []string{"There are 3 nodes in this graph.", "There are 4 edges in this graph.", "Top 3 pages:", "Calculation took"} {
		if !strings.Contains(out.stderr.String(), s) {
			t.Errorf("stderr missing %q:\n%s", s, out.stderr.String())
		}
	}
}

func TestRankInput_StochasticPercentages(t *testing.T) {
	t.Parallel()
	cfg := testConfig(rank.MethodStochastic)
	cfg.Repeats = 500
	cfg.Steps = 4
	cfg.Workers = 2

	out, err := runInput(t, cfg, "A A\n", nil)
	if err != nil {
		t.Fatalf("rankInput: %v", err)
	}
	if want := "100.00\tA\n"; out.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", out.stdout.String(), want)
	}
}

func TestRankInput_NumberLimitsOutput(t *testing.T) {
	t.Parallel()
	cfg := testConfig(rank.MethodDistribution)
	cfg.Number = 1

	out, err := runInput(t, cfg, "A B\nA C\nB A\nC A\n", nil)
	if err != nil {
		t.Fatalf("rankInput: %v", err)
	}
	if want := "0.666667\tA\n"; out.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", out.stdout.String(), want)
	}
	if !strings.Contains(out.stderr.String(), "Top 1 pages:") {
		t.Errorf("stderr missing header:\n%s", out.stderr.String())
	}
}

func TestRankInput_MalformedInput(t *testing.T) {
	t.Parallel()
	out, err := runInput(t, testConfig(rank.MethodDistribution), "A B\nA B C\n", nil)
	if !errors.Is(err, webgraph.ErrMalformedLine) {
		t.Fatalf("error = %v, want ErrMalformedLine", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q lacks line context", err)
	}
	if out.stdout.Len() != 0 || out.stderr.Len() != 0 {
		t.Errorf("nothing should be printed on parse failure; stdout=%q stderr=%q", out.stdout.String(), out.stderr.String())
	}
}

func TestRankInput_BrokenLinkPrintsStatsOnly(t *testing.T) {
	t.Parallel()
	cfg := testConfig(rank.MethodStochastic)
	cfg.Repeats = 10
	cfg.Steps = 1

	out, err := runInput(t, cfg, "A Z\n", nil)
	if !errors.Is(err, rank.ErrBrokenLink) {
		t.Fatalf("error = %v, want ErrBrokenLink", err)
	}
	if out.stdout.Len() != 0 {
		t.Errorf("no ranking may be printed on failure, got %q", out.stdout.String())
	}
	if !strings.Contains(out.stderr.String(), "There are 1 nodes in this graph.") {
		t.Errorf("stats should still be printed:\n%s", out.stderr.String())
	}
	if strings.Contains(out.stderr.String(), "Top ") {
		t.Errorf("ranking header printed on failure:\n%s", out.stderr.String())
	}
}

func TestRankInput_RestartPolicyRecovers(t *testing.T) {
	t.Parallel()
	cfg := testConfig(rank.MethodStochastic)
	cfg.Repeats = 10
	cfg.Steps = 1
	cfg.DeadEnd = string(rank.DeadEndRestart)

	out, err := runInput(t, cfg, "A Z\n", nil)
	if err != nil {
		t.Fatalf("rankInput: %v", err)
	}
	if want := "100.00\tA\n"; out.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", out.stdout.String(), want)
	}
	if !strings.Contains(out.stderr.String(), "restarted at dead ends") {
		t.Errorf("stderr missing restart note:\n%s", out.stderr.String())
	}
}

func TestRankInput_ContiguousGrouping(t *testing.T) {
	t.Parallel()
	input := "A B\nB A\nA C\nC A\n"

	merged, err := runInput(t, testConfig(rank.MethodDistribution), input, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(merged.stderr.String(), "There are 4 edges") {
		t.Errorf("merge stderr:\n%s", merged.stderr.String())
	}

	cfg := testConfig(rank.MethodDistribution)
	cfg.Grouping = config.GroupingContiguous
	runs, err := runInput(t, cfg, input, nil)
	if err != nil {
		t.Fatalf("contiguous: %v", err)
	}
	// The second run for A replaces A -> B.
	if !strings.Contains(runs.stderr.String(), "There are 3 edges") {
		t.Errorf("contiguous stderr:\n%s", runs.stderr.String())
	}
}

func TestRankInput_TelemetryAndReport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "events.jsonl")
	reportPath := filepath.Join(dir, "report.toml")

	events, err := telemetry.NewEmitter(eventsPath)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	cfg := testConfig(rank.MethodDistribution)
	cfg.Repeats = 3
	cfg.Number = 2
	cfg.ReportPath = reportPath

	out, err := runInput(t, cfg, "A B\nA C\nB A\nC A\n", events)
	if err != nil {
		t.Fatalf("rankInput: %v", err)
	}
	if err := events.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !strings.Contains(out.stderr.String(), "report written to") {
		t.Errorf("stderr missing report note:\n%s", out.stderr.String())
	}

	r, err := report.Read(reportPath)
	if err != nil {
		t.Fatalf("report.Read: %v", err)
	}
	if r.Method != "distribution" || r.Params.Repeats != 3 || len(r.Top) != 2 {
		t.Errorf("report = %+v", r)
	}
	if r.RunID != events.RunID() {
		t.Errorf("report run ID = %q, want %q", r.RunID, events.RunID())
	}
	if r.Params.Dangling != "drop" || r.Params.DeadEnd != "" {
		t.Errorf("report policies = %q/%q", r.Params.DeadEnd, r.Params.Dangling)
	}

	kinds := readKinds(t, eventsPath)
	want := []string{telemetry.KindRunStart, telemetry.KindGraphLoaded, telemetry.KindRankDone}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Errorf("event kinds = %v, want %v", kinds, want)
	}
}

func TestRankInput_FailureEmitsRankFailed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	events := telemetry.NewWriterEmitter(&buf)

	cfg := testConfig(rank.MethodDistribution)
	cfg.Dangling = string(rank.DanglingFail)
	if _, err := runInput(t, cfg, "A B\nA Z\nB A\n", events); !errors.Is(err, rank.ErrBrokenLink) {
		t.Fatalf("error = %v, want ErrBrokenLink", err)
	}

	var last telemetry.Event
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		if err := json.Unmarshal(scanner.Bytes(), &last); err != nil {
			t.Fatalf("bad event line: %v", err)
		}
	}
	if last.Kind != telemetry.KindRankFailed {
		t.Errorf("last event kind = %q, want %q", last.Kind, telemetry.KindRankFailed)
	}
}

func readKinds(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var kinds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var evt telemetry.Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("bad event line: %v", err)
		}
		kinds = append(kinds, evt.Kind)
	}
	return kinds
}
