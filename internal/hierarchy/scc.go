package hierarchy

import (
	"github.com/google/uuid"
)

// findComponents classifies lineages with Tarjan's strongly connected
// components over the full sibling-expanded parent graph.
//
// Every component with more than one lineage is a cycle; all of its members
// are flagged with the shortest cycle through the member that comes first in
// the snapshot. Components are
// emitted after everything reachable from them, so a lineage that reaches a
// flagged or tainted component is tainted in the same pass.
func findComponents(f *forest) *classifier {
	c := newClassifier()
	edges := make(map[uuid.UUID][]uuid.UUID, len(f.order))
	for _, l := range f.order {
		edges[l] = f.parents(l, TraversalUpAndSiblings)
	}

	for _, scc := range tarjanSCC(f.order, edges) {
		member := make(map[uuid.UUID]bool, len(scc))
		for _, l := range scc {
			member[l] = true
		}

		if len(scc) > 1 || hasSelfLoop(scc[0], edges) {
			first := scc[0]
			for _, l := range scc[1:] {
				if f.index[l] < f.index[first] {
					first = l
				}
			}
			cycle, trail := shortestCycle(first, edges, member)
			for _, l := range scc {
				c.flag(l, cycle, trail)
			}
			continue
		}

		l := scc[0]
		c.class[l] = acyclic
		for _, p := range edges[l] {
			if c.troubled(p) {
				c.taint(l)
				break
			}
		}
	}
	return c
}

func hasSelfLoop(node uuid.UUID, edges map[uuid.UUID][]uuid.UUID) bool {
	for _, p := range edges[node] {
		if p == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components. Nodes are visited in the
// given order so the output is deterministic. Iterative: each stack frame
// remembers how many of its edges have been explored.
func tarjanSCC(nodes []uuid.UUID, edges map[uuid.UUID][]uuid.UUID) [][]uuid.UUID {
	type frame struct {
		node uuid.UUID
		next int
	}

	var (
		index   = 0
		stack   []uuid.UUID
		indices = make(map[uuid.UUID]int)
		lowlink = make(map[uuid.UUID]int)
		onStack = make(map[uuid.UUID]bool)
		sccs    [][]uuid.UUID
	)

	visit := func(v uuid.UUID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true
	}

	for _, root := range nodes {
		if _, seen := indices[root]; seen {
			continue
		}
		visit(root)
		calls := []frame{{node: root}}

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.node

			if top.next < len(edges[v]) {
				w := edges[v][top.next]
				top.next++
				if _, seen := indices[w]; !seen {
					visit(w)
					calls = append(calls, frame{node: w})
				} else if onStack[w] {
					lowlink[v] = min(lowlink[v], indices[w])
				}
				continue
			}

			// All successors explored: v is finished.
			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				caller := calls[len(calls)-1].node
				lowlink[caller] = min(lowlink[caller], lowlink[v])
			}

			if lowlink[v] == indices[v] {
				var scc []uuid.UUID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}

	return sccs
}

// shortestCycle finds the shortest closed path from start back to start using
// only edges between members of its component. The trail maps each reached
// lineage to the lineage it was first reached from.
func shortestCycle(start uuid.UUID, edges map[uuid.UUID][]uuid.UUID, member map[uuid.UUID]bool) ([]uuid.UUID, map[uuid.UUID]uuid.UUID) {
	trail := make(map[uuid.UUID]uuid.UUID)
	queue := []uuid.UUID{start}
	reached := map[uuid.UUID]bool{start: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range edges[cur] {
			if !member[p] {
				continue
			}
			if p == start {
				trail[start] = cur
				return unwindCycle(start, trail), trail
			}
			if reached[p] {
				continue
			}
			reached[p] = true
			trail[p] = cur
			queue = append(queue, p)
		}
	}

	// Unreachable for a real component; report the lineage on its own.
	return []uuid.UUID{start, start}, trail
}

// unwindCycle rebuilds start -> ... -> start from the BFS trail.
func unwindCycle(start uuid.UUID, trail map[uuid.UUID]uuid.UUID) []uuid.UUID {
	rev := []uuid.UUID{start}
	for cur := trail[start]; cur != start; cur = trail[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, start)

	path := make([]uuid.UUID, len(rev))
	for i, l := range rev {
		path[len(rev)-1-i] = l
	}
	return path
}
