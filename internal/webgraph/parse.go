package webgraph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single edge-list line. URLs can be long.
const maxLineBytes = 1 << 20

// Edge is a directed hyperlink from Source to Target.
type Edge struct {
	Source string
	Target string
}

// ReadEdges reads one "<source> <target>" pair per line from r. Blank lines
// and lines starting with '#' are skipped. Any other line that does not split
// into exactly two fields returns a *ParseError.
func ReadEdges(r io.Reader) ([]Edge, error) {
	var edges []Edge
	err := scanEdges(r, func(e Edge) {
		edges = append(edges, e)
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// Load reads an edge list from r and builds a Graph from it.
func Load(r io.Reader, opts ...Option) (*Graph, error) {
	b := NewBuilder(opts...)
	if err := scanEdges(r, func(e Edge) { b.Add(e.Source, e.Target) }); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func scanEdges(r io.Reader, fn func(Edge)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 2 {
			return &ParseError{Line: lineNo, Text: line}
		}
		fn(Edge{Source: fields[0], Target: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading edge list after line %d: %w", lineNo, err)
	}
	return nil
}
