package matching

import "sort"

// Edge is an unordered candidate pairing between two employees.
type Edge struct {
	A string
	B string
}

// BuildEdges enumerates every unordered combination of distinct employees
// once, drops combinations already present in the existing-pair index and
// keeps only those that satisfy the criteria. Employees are sorted by id
// before enumeration so the edge order (and therefore the matching result)
// never depends on the iteration order of the data layer.
//
// Candidate generation is O(n²) in the roster size and dominates the cost of
// a matching run on large campaigns; the orchestration layer bounds the
// roster before calling in.
func BuildEdges(employeeIDs []string, attrs map[string]map[string]string, criteria []Criterion, existing *PairSet) []Edge {
	ids := make([]string, len(employeeIDs))
	copy(ids, employeeIDs)
	sort.Strings(ids)

	unconstrained := len(criteria) == 0

	var edges []Edge
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			if existing != nil && existing.Contains(a, b) {
				continue
			}
			// Without criteria the candidate graph is the complete graph
			// minus existing pairs.
			if unconstrained || Eligible(a, b, attrs, criteria) {
				edges = append(edges, Edge{A: a, B: b})
			}
		}
	}

	return edges
}

// TotalPossiblePairs returns C(n,2) minus the number of existing pairs. The
// figure deliberately ignores criteria: it is the reporting denominator the
// HR preview has always shown, not the constrained capacity.
func TotalPossiblePairs(employeeCount, existingCount int) int {
	return employeeCount*(employeeCount-1)/2 - existingCount
}
