// SPDX-License-Identifier: Apache-2.0

package sort

import "sort"

// stableTopoSort runs Kahn's algorithm over n nodes (0..n-1) and the
// given edges, breaking ties among simultaneously-ready nodes by
// original index so the result is deterministic regardless of map or
// slice iteration order upstream. ok is false when a cycle makes a full
// ordering impossible.
func stableTopoSort(n int, edges []Constraint) (order []int, ok bool) {
	indegree := make([]int, n)
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		indegree[e.To]++
	}

	var ready []int
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	order = make([]int, 0, n)
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)

		neighbors := append([]int{}, adj[cur]...)
		sort.Ints(neighbors)
		for _, nb := range neighbors {
			indegree[nb]--
			if indegree[nb] == 0 {
				ready = append(ready, nb)
				sort.Ints(ready)
			}
		}
	}
	return order, len(order) == n
}

// findCycle locates one cycle among the nodes stableTopoSort couldn't
// place, via a plain DFS with a three-color visited set. Returns the
// cycle's node indices in traversal order (first == last's successor,
// i.e. the edge from the last index back to the first closes the loop).
func findCycle(n int, edges []Constraint) []int {
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	for i := range adj {
		sort.Ints(adj[i])
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var visit func(u int) bool
	visit = func(u int) bool {
		color[u] = gray
		for _, v := range adj[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if visit(v) {
					return true
				}
			case gray:
				// found a back edge u -> v; unwind parent chain from u to v
				cycle = []int{v}
				for x := u; x != v; x = parent[x] {
					cycle = append(cycle, x)
				}
				reverseInts(cycle)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			if visit(i) {
				return cycle
			}
		}
	}
	return nil
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
