package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/linkrank/internal/webgraph"
)

// newTestStatsCmd mirrors statsCmd with its own flag set and streams.
func newTestStatsCmd(input string, stdout, stderr *bytes.Buffer) *cobra.Command {
	c := &cobra.Command{Use: statsCmd.Use, RunE: runStats}
	c.Flags().Bool("list-dangling", false, "")
	c.SetIn(strings.NewReader(input))
	c.SetOut(stdout)
	c.SetErr(stderr)
	return c
}

// Not parallel: config.Load reads the process-wide viper instance.
func TestRunStats(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		listDangling bool
		wantStdout   string
		wantStderr   []string
		wantErr      error
	}{
		{
			name:       "counts only",
			input:      "A B\nA C\nD A\n",
			wantStderr: []string{"There are 2 nodes in this graph.", "There are 3 edges in this graph."},
		},
		{
			name:         "list dangling targets",
			input:        "A B\nA C\nD A\n",
			listDangling: true,
			wantStdout:   "B\nC\n",
			wantStderr:   []string{"There are 2 nodes in this graph.", "2 linked pages have no outgoing links."},
		},
		{
			name:    "malformed line",
			input:   "A B\nA\n",
			wantErr: webgraph.ErrMalformedLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			c := newTestStatsCmd(tt.input, &stdout, &stderr)
			if tt.listDangling {
				if err := c.Flags().Set("list-dangling", "true"); err != nil {
					t.Fatalf("setting flag: %v", err)
				}
			}

			err := runStats(c, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("runStats error = %v, want %v", err, tt.wantErr)
				}
				if stdout.Len() != 0 {
					t.Errorf("stdout = %q, want empty on failure", stdout.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("runStats: %v", err)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			for _, s := range tt.wantStderr {
				if !strings.Contains(stderr.String(), s) {
					t.Errorf("stderr missing %q:\n%s", s, stderr.String())
				}
			}
		})
	}
}
