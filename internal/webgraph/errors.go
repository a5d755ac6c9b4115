package webgraph

import (
	"errors"
	"fmt"
)

// ErrMalformedLine indicates an edge-list line that is not exactly two
// whitespace-separated tokens.
var ErrMalformedLine = errors.New("malformed edge line")

// ParseError records a malformed edge-list line with its position.
type ParseError struct {
	Line int    // 1-based line number
	Text string // raw line content
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q (want \"<source> <target>\")", e.Line, ErrMalformedLine, e.Text)
}

// Unwrap allows errors.Is(err, ErrMalformedLine).
func (e *ParseError) Unwrap() error {
	return ErrMalformedLine
}
