package matching

import "sort"

// BlossomSolver computes an exact maximum-cardinality matching on a general
// undirected graph using Edmonds' blossom algorithm (the breadth-first
// formulation with base contraction). General graphs are required here: the
// roster has no bipartition, and a bipartite-only routine would undercount.
// Complexity is O(V³), comfortably inside the roster ceilings the
// orchestration layer enforces.
type BlossomSolver struct{}

// Name implements Solver.
func (BlossomSolver) Name() string { return StrategyBlossom }

// Solve implements Solver. Employees are indexed in sorted-id order and the
// adjacency lists preserve edge build order, so the result is deterministic
// for identical inputs. Isolated vertices simply stay unmatched.
func (BlossomSolver) Solve(employeeIDs []string, edges []Edge) ([]Edge, error) {
	ids := make([]string, len(employeeIDs))
	copy(ids, employeeIDs)
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	n := len(ids)
	adj := make([][]int, n)
	for _, e := range edges {
		u, okU := index[e.A]
		v, okV := index[e.B]
		if !okU || !okV || u == v {
			continue
		}
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
	}

	match := maximumMatching(n, adj)

	var pairs []Edge
	for u, v := range match {
		if v > u {
			pairs = append(pairs, Edge{A: ids[u], B: ids[v]})
		}
	}
	sortEdges(pairs)
	return pairs, nil
}

// maximumMatching runs Edmonds' algorithm over an adjacency-list graph and
// returns match[v] = partner index or -1.
func maximumMatching(n int, adj [][]int) []int {
	match := make([]int, n)
	parent := make([]int, n)
	base := make([]int, n)
	used := make([]bool, n)
	blossom := make([]bool, n)
	for i := range match {
		match[i] = -1
	}

	// lca walks both alternating paths up to their common blossom base.
	lca := func(a, b int) int {
		seen := make([]bool, n)
		for {
			a = base[a]
			seen[a] = true
			if match[a] == -1 {
				break
			}
			a = parent[match[a]]
		}
		for {
			b = base[b]
			if seen[b] {
				return b
			}
			b = parent[match[b]]
		}
	}

	// markPath flags every blossom base on the path from v down to b and
	// rethreads parents through the discovered odd cycle.
	markPath := func(v, b, child int) {
		for base[v] != b {
			blossom[base[v]] = true
			blossom[base[match[v]]] = true
			parent[v] = child
			child = match[v]
			v = parent[match[v]]
		}
	}

	// findAugmentingPath searches for an exposed vertex reachable from root
	// along an alternating path, contracting blossoms as they appear.
	findAugmentingPath := func(root int) int {
		for i := 0; i < n; i++ {
			used[i] = false
			parent[i] = -1
			base[i] = i
		}
		used[root] = true
		queue := []int{root}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]

			for _, to := range adj[v] {
				if base[v] == base[to] || match[v] == to {
					continue
				}
				if to == root || (match[to] != -1 && parent[match[to]] != -1) {
					// Odd cycle: contract the blossom around its base.
					curBase := lca(v, to)
					for i := range blossom {
						blossom[i] = false
					}
					markPath(v, curBase, to)
					markPath(to, curBase, v)
					for i := 0; i < n; i++ {
						if blossom[base[i]] {
							base[i] = curBase
							if !used[i] {
								used[i] = true
								queue = append(queue, i)
							}
						}
					}
				} else if parent[to] == -1 {
					parent[to] = v
					if match[to] == -1 {
						return to
					}
					used[match[to]] = true
					queue = append(queue, match[to])
				}
			}
		}
		return -1
	}

	for v := 0; v < n; v++ {
		if match[v] != -1 {
			continue
		}
		u := findAugmentingPath(v)
		// Flip matched/unmatched edges along the augmenting path.
		for u != -1 {
			pv := parent[u]
			ppv := match[pv]
			match[u] = pv
			match[pv] = u
			u = ppv
		}
	}

	return match
}
