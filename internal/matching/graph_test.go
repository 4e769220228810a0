package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEdgesNoCriteriaIsCompleteGraphMinusExisting(t *testing.T) {
	ids := []string{"emp-c", "emp-a", "emp-b"}
	existing := NewPairSet([][2]string{{"emp-a", "emp-b"}})

	edges := BuildEdges(ids, nil, nil, existing)

	require.Len(t, edges, 2)
	assert.Equal(t, []Edge{{A: "emp-a", B: "emp-c"}, {A: "emp-b", B: "emp-c"}}, edges)
}

func TestBuildEdgesAppliesCriteria(t *testing.T) {
	ids := []string{"emp-a", "emp-b", "emp-c", "emp-d"}
	attrs := map[string]map[string]string{
		"emp-a": {"department": "Sales"},
		"emp-b": {"department": "Sales"},
		"emp-c": {"department": "Engineering"},
		"emp-d": {"department": "Engineering"},
	}
	criteria := []Criterion{{Key: "department", Rule: RuleSame}}

	edges := BuildEdges(ids, attrs, criteria, NewPairSet(nil))

	assert.Equal(t, []Edge{{A: "emp-a", B: "emp-b"}, {A: "emp-c", B: "emp-d"}}, edges)
}

func TestBuildEdgesStableOrderRegardlessOfInputOrder(t *testing.T) {
	shuffled := []string{"emp-d", "emp-b", "emp-a", "emp-c"}
	ordered := []string{"emp-a", "emp-b", "emp-c", "emp-d"}

	first := BuildEdges(shuffled, nil, nil, NewPairSet(nil))
	second := BuildEdges(ordered, nil, nil, NewPairSet(nil))

	assert.Equal(t, second, first)
}

func TestBuildEdgesNilExistingSet(t *testing.T) {
	edges := BuildEdges([]string{"emp-a", "emp-b"}, nil, nil, nil)
	assert.Equal(t, []Edge{{A: "emp-a", B: "emp-b"}}, edges)
}

func TestTotalPossiblePairs(t *testing.T) {
	assert.Equal(t, 6, TotalPossiblePairs(4, 0))
	assert.Equal(t, 5, TotalPossiblePairs(4, 1))
	assert.Equal(t, 0, TotalPossiblePairs(2, 1))
}
