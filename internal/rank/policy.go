package rank

import "fmt"

// DeadEndPolicy decides what a random walk does when it stands on a label
// with no outgoing edges.
type DeadEndPolicy string

const (
	// DeadEndFail aborts the run with a *BrokenLinkError.
	DeadEndFail DeadEndPolicy = "fail"
	// DeadEndRestart jumps to a fresh random start node and continues with
	// the remaining steps.
	DeadEndRestart DeadEndPolicy = "restart"
)

// ParseDeadEndPolicy converts a policy name. The empty string selects DeadEndFail.
func ParseDeadEndPolicy(s string) (DeadEndPolicy, error) {
	switch DeadEndPolicy(s) {
	case "", DeadEndFail:
		return DeadEndFail, nil
	case DeadEndRestart:
		return DeadEndRestart, nil
	}
	return "", fmt.Errorf("unknown dead-end policy %q (want fail or restart)", s)
}

// DanglingPolicy decides what happens to probability mass that flows into a
// label with no outgoing edges during propagation.
type DanglingPolicy string

const (
	// DanglingDrop lets the mass leave the system, so the total falls below 1.
	DanglingDrop DanglingPolicy = "drop"
	// DanglingRedistribute spreads the lost mass of each round uniformly
	// over all nodes, keeping the total at 1.
	DanglingRedistribute DanglingPolicy = "redistribute"
	// DanglingFail aborts the run with a *BrokenLinkError.
	DanglingFail DanglingPolicy = "fail"
)

// ParseDanglingPolicy converts a policy name. The empty string selects DanglingDrop.
func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch DanglingPolicy(s) {
	case "", DanglingDrop:
		return DanglingDrop, nil
	case DanglingRedistribute:
		return DanglingRedistribute, nil
	case DanglingFail:
		return DanglingFail, nil
	}
	return "", fmt.Errorf("unknown dangling policy %q (want drop, redistribute or fail)", s)
}
