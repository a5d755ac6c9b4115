// Package telemetry provides a JSONL event stream for ranking runs. Each run
// gets a unique ID and records when it starts, when the graph is loaded, and
// how ranking finished, so repeated runs over a crawl can be compared.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of telemetry event.
const (
	KindRunStart    = "run_start"
	KindGraphLoaded = "graph_loaded"
	KindRankDone    = "rank_done"
	KindRankFailed  = "rank_failed"
)

// Event represents a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events as JSON lines. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	c     io.Closer
	enc   *json.Encoder
	runID string
	now   func() time.Time
	mu    sync.Mutex
}

// NewEmitter creates an Emitter that appends to the file at path, creating
// it if needed. Every event recorded through it carries a fresh run ID.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	em := NewWriterEmitter(f)
	em.c = f
	return em, nil
}

// NewWriterEmitter creates an Emitter writing to w. Close does not close w.
func NewWriterEmitter(w io.Writer) *Emitter {
	return &Emitter{
		enc:   json.NewEncoder(w),
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

// RunID returns the run identifier stamped on recorded events.
func (e *Emitter) RunID() string {
	if e == nil {
		return ""
	}
	return e.runID
}

// Record emits an event of the given kind stamped with the current time and
// the emitter's run ID.
func (e *Emitter) Record(kind string, data any) error {
	if e == nil {
		return nil
	}
	return e.Emit(Event{Timestamp: e.now().UTC(), Kind: kind, RunID: e.runID, Data: data})
}

// Emit writes a single event as is. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the Emitter owns one. Calling Close
// on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil || e.c == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.c.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
