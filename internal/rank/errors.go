package rank

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the rankers.
var (
	// ErrBrokenLink indicates a walk or propagation reached a node with no
	// outgoing edges under a policy that does not tolerate it.
	ErrBrokenLink = errors.New("broken link")
	// ErrInvalidParameter indicates a repeat or step count out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptyGraph indicates a ranking that needs at least one node.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

// BrokenLinkError identifies the dead end that stopped a ranking run.
type BrokenLinkError struct {
	Node string // label with no outgoing edges
	From string // node whose edge led to Node
}

func (e *BrokenLinkError) Error() string {
	return fmt.Sprintf("%s: %q (linked from %q) has no outgoing edges", ErrBrokenLink, e.Node, e.From)
}

// Unwrap allows errors.Is(err, ErrBrokenLink).
func (e *BrokenLinkError) Unwrap() error {
	return ErrBrokenLink
}

// InvalidParameterError records a rejected ranking parameter.
type InvalidParameterError struct {
	Name  string
	Value int
	Want  string // human description of the accepted range
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %d, must be %s", ErrInvalidParameter, e.Name, e.Value, e.Want)
}

// Unwrap allows errors.Is(err, ErrInvalidParameter).
func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}
