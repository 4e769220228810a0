package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSolver(t *testing.T) {
	solver, err := NewSolver("")
	require.NoError(t, err)
	assert.Equal(t, StrategyBlossom, solver.Name())

	solver, err = NewSolver(StrategyGreedy)
	require.NoError(t, err)
	assert.Equal(t, StrategyGreedy, solver.Name())

	_, err = NewSolver("hungarian")
	assert.Error(t, err)
}

func TestBlossomSolverCompleteGraphOfFour(t *testing.T) {
	ids := []string{"emp-a", "emp-b", "emp-c", "emp-d"}
	edges := BuildEdges(ids, nil, nil, NewPairSet(nil))

	pairs, err := BlossomSolver{}.Solve(ids, edges)
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assertDisjoint(t, pairs)
}

func TestBlossomSolverBeatsGreedyOnPathGraph(t *testing.T) {
	// Path a-b-c-d with the middle edge first: greedy stops at one pair,
	// the exact solver augments to two.
	ids := []string{"emp-a", "emp-b", "emp-c", "emp-d"}
	edges := []Edge{
		{A: "emp-b", B: "emp-c"},
		{A: "emp-a", B: "emp-b"},
		{A: "emp-c", B: "emp-d"},
	}

	greedy, err := GreedySolver{}.Solve(ids, edges)
	require.NoError(t, err)
	assert.Len(t, greedy, 1)

	exact, err := BlossomSolver{}.Solve(ids, edges)
	require.NoError(t, err)
	require.Len(t, exact, 2)
	assert.Equal(t, []Edge{{A: "emp-a", B: "emp-b"}, {A: "emp-c", B: "emp-d"}}, exact)
}

func TestBlossomSolverOddCycle(t *testing.T) {
	// Triangle with a pendant vertex: the optimal matching pairs the
	// pendant into the cycle. A bipartite-only augmenting search without
	// blossom contraction can miss this structure.
	ids := []string{"emp-a", "emp-b", "emp-c", "emp-d"}
	edges := []Edge{
		{A: "emp-a", B: "emp-b"},
		{A: "emp-b", B: "emp-c"},
		{A: "emp-a", B: "emp-c"},
		{A: "emp-c", B: "emp-d"},
	}

	pairs, err := BlossomSolver{}.Solve(ids, edges)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assertDisjoint(t, pairs)

	matched := map[string]bool{}
	for _, p := range pairs {
		matched[p.A] = true
		matched[p.B] = true
	}
	assert.True(t, matched["emp-d"], "pendant vertex must be matched in the maximum matching")
}

func TestBlossomSolverIsolatedVerticesStayUnmatched(t *testing.T) {
	ids := []string{"emp-a", "emp-b", "emp-c"}
	edges := []Edge{{A: "emp-a", B: "emp-b"}}

	pairs, err := BlossomSolver{}.Solve(ids, edges)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{A: "emp-a", B: "emp-b"}}, pairs)
}

func TestBlossomSolverEmptyGraph(t *testing.T) {
	pairs, err := BlossomSolver{}.Solve([]string{"emp-a"}, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestBlossomSolverDeterministic(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("emp-%02d", i)
	}
	edges := BuildEdges(ids, nil, nil, NewPairSet(nil))

	first, err := BlossomSolver{}.Solve(ids, edges)
	require.NoError(t, err)
	second, err := BlossomSolver{}.Solve(ids, edges)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 6)
}

func TestGreedySolverDisjointAndDeterministic(t *testing.T) {
	ids := []string{"emp-a", "emp-b", "emp-c", "emp-d"}
	edges := BuildEdges(ids, nil, nil, NewPairSet(nil))

	first, err := GreedySolver{}.Solve(ids, edges)
	require.NoError(t, err)
	second, err := GreedySolver{}.Solve(ids, edges)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assertDisjoint(t, first)
	assert.Len(t, first, 2)
}

func assertDisjoint(t *testing.T, pairs []Edge) {
	t.Helper()
	seen := map[string]bool{}
	for _, p := range pairs {
		require.NotEqual(t, p.A, p.B, "self pair in solver output")
		require.False(t, seen[p.A], "employee %s matched twice", p.A)
		require.False(t, seen[p.B], "employee %s matched twice", p.B)
		seen[p.A] = true
		seen[p.B] = true
	}
}
