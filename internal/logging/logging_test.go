package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		logAt      slog.Level
		wantOutput bool
		wantJSON   bool
	}{
		{"text info at info", "text", "info", slog.LevelInfo, true, false},
		{"json info at info", "json", "info", slog.LevelInfo, true, true},
		{"debug suppressed at info", "text", "info", slog.LevelDebug, false, false},
		{"debug shown at debug", "json", "debug", slog.LevelDebug, true, true},
		{"info suppressed at error", "text", "error", slog.LevelInfo, false, false},
		{"unknown level defaults to info", "text", "loud", slog.LevelInfo, true, false},
		{"unknown format defaults to text", "xml", "warn", slog.LevelWarn, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.format, tt.level, &buf)
			logger.Log(t.Context(), tt.logAt, "graph loaded", "nodes", 3)

			out := buf.String()
			if !tt.wantOutput {
				if out != "" {
					t.Errorf("expected no output, got %q", out)
				}
				return
			}
			if !strings.Contains(out, "graph loaded") {
				t.Errorf("output %q missing message", out)
			}
			if tt.wantJSON {
				var m map[string]any
				if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &m); err != nil {
					t.Errorf("output is not JSON: %v\n%s", err, out)
				}
				if m["nodes"] != float64(3) {
					t.Errorf("nodes attr = %v, want 3", m["nodes"])
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
