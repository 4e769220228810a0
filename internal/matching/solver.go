package matching

import (
	"fmt"
	"sort"
)

// Solver strategies selectable via configuration.
const (
	StrategyBlossom = "blossom"
	StrategyGreedy  = "greedy"
)

// Solver selects a set of vertex-disjoint edges from the candidate graph.
// Implementations must be deterministic for a fixed employee set and edge
// order, and must tolerate isolated vertices.
type Solver interface {
	// Solve returns disjoint pairs; no employee id appears twice in the
	// output and the output size is at most floor(len(employeeIDs)/2).
	Solve(employeeIDs []string, edges []Edge) ([]Edge, error)
	// Name identifies the strategy for logs and diagnostics.
	Name() string
}

// NewSolver resolves a strategy name to a solver. Unknown names are a
// configuration error.
func NewSolver(strategy string) (Solver, error) {
	switch strategy {
	case StrategyBlossom, "":
		return BlossomSolver{}, nil
	case StrategyGreedy:
		return GreedySolver{}, nil
	default:
		return nil, fmt.Errorf("unknown matching solver strategy %q", strategy)
	}
}

// GreedySolver accepts edges first-fit in build order, skipping any edge
// touching an already-used employee. It is deterministic but does not
// guarantee maximum cardinality; it exists as the documented degraded mode
// when the exact solver is unavailable or fails, never as a silent default.
type GreedySolver struct{}

// Name implements Solver.
func (GreedySolver) Name() string { return StrategyGreedy }

// Solve implements Solver.
func (GreedySolver) Solve(employeeIDs []string, edges []Edge) ([]Edge, error) {
	used := make(map[string]struct{}, len(employeeIDs))
	var pairs []Edge
	for _, e := range edges {
		if _, ok := used[e.A]; ok {
			continue
		}
		if _, ok := used[e.B]; ok {
			continue
		}
		used[e.A] = struct{}{}
		used[e.B] = struct{}{}
		pairs = append(pairs, normalizeEdge(e))
	}
	sortEdges(pairs)
	return pairs, nil
}

func normalizeEdge(e Edge) Edge {
	if e.A > e.B {
		e.A, e.B = e.B, e.A
	}
	return e
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}
