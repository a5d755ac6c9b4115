package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/linkrank/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry FILE",
	Short: "View JSONL telemetry events written by --telemetry",
	Long: `Reads and formats a JSONL telemetry file written by ranking runs.

With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.ExactArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	telemetryCmd.Flags().String("run", "", "only show events of this run ID")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	runID, _ := cmd.Flags().GetString("run")
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	// Read through bufio.Reader so that --follow resumes exactly where the
	// initial dump stopped.
	tail := &eventTail{r: bufio.NewReader(f), runID: runID}
	if err := tail.printAvailable(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		tail.flush(cmd.OutOrStdout())
		return nil
	}
	return tailFollow(cmd, tail, path)
}

// eventTail reads JSONL events incrementally. A line without its trailing
// newline is held back until the rest of it arrives.
type eventTail struct {
	r       *bufio.Reader
	runID   string
	partial string
}

// printAvailable prints every complete line currently readable.
func (t *eventTail) printAvailable(w io.Writer) error {
	for {
		line, err := t.r.ReadString('\n')
		if err == io.EOF {
			t.partial += line
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(t.partial + line)
		t.partial = ""
		if line != "" {
			printEvent(w, line, t.runID)
		}
	}
}

// flush prints a held-back final line that was never terminated.
func (t *eventTail) flush(w io.Writer) {
	if line := strings.TrimSpace(t.partial); line != "" {
		printEvent(w, line, t.runID)
	}
	t.partial = ""
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until the command context is canceled.
func tailFollow(cmd *cobra.Command, tail *eventTail, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if err := tail.printAvailable(cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// Events of other runs are skipped when runID is set.
func printEvent(w io.Writer, line, runID string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if runID != "" && evt.RunID != runID {
		return
	}

	parts := []string{
		fmt.Sprintf("[%s]", evt.Timestamp.Format(time.TimeOnly)),
		evt.Kind,
	}
	if evt.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", shortID(evt.RunID)))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// shortID trims a UUID to its first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
