package depgraph

import (
	"fmt"
	"strings"
)

// bfs runs a breadth-first search from start, following out-edges.
// keep filters the traversal: a vertex rejected by keep is neither
// visited nor traversed through. visit is invoked once per discovered
// vertex, layer k before layer k+1; intra-layer order follows edge
// insertion order, so the walk is deterministic for a given insertion
// history. Returning false from visit stops the search.
func (g *Graph[ID, V, L]) bfs(start *Vertex[ID, V, L], keep func(*Vertex[ID, V, L]) bool, visit func(*Vertex[ID, V, L]) bool) {
	if keep != nil && !keep(start) {
		return
	}

	discovered := make(map[ID]bool, len(g.vertices))
	discovered[start.id] = true
	queue := []*Vertex[ID, V, L]{start}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		if !visit(v) {
			return
		}

		for _, childID := range v.children {
			if discovered[childID] {
				continue
			}
			child := g.vertices[childID]
			if keep != nil && !keep(child) {
				continue
			}
			discovered[childID] = true
			queue = append(queue, child)
		}
	}
}

// reaches reports whether to is reachable from from by following
// out-edges. Every vertex reaches itself. The search stops as soon as
// the target is discovered.
func (g *Graph[ID, V, L]) reaches(from, to ID) bool {
	start, ok := g.vertices[from]
	if !ok {
		return false
	}
	found := false
	g.bfs(start, nil, func(v *Vertex[ID, V, L]) bool {
		if v.id == to {
			found = true
			return false
		}
		return true
	})
	return found
}

// ReachableFrom returns all vertices reachable from id in BFS order,
// starting with id itself. Each vertex appears at most once.
// Returns ErrUnknownVertex if id is not registered.
func (g *Graph[ID, V, L]) ReachableFrom(id ID) ([]*Vertex[ID, V, L], error) {
	return g.ReachableFunc(id, nil)
}

// ReachableFunc is ReachableFrom restricted to vertices accepted by
// keep: rejected vertices are excluded from the result and are not
// traversed through. A nil keep accepts everything. If the start
// vertex itself is rejected the result is empty.
func (g *Graph[ID, V, L]) ReachableFunc(id ID, keep func(*Vertex[ID, V, L]) bool) ([]*Vertex[ID, V, L], error) {
	start, ok := g.vertices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownVertex, id)
	}
	var result []*Vertex[ID, V, L]
	g.bfs(start, keep, func(v *Vertex[ID, V, L]) bool {
		result = append(result, v)
		return true
	})
	return result, nil
}

// Roots returns all vertices with no incoming edges, in registration
// order.
func (g *Graph[ID, V, L]) Roots() []*Vertex[ID, V, L] {
	var roots []*Vertex[ID, V, L]
	for _, id := range g.order {
		v := g.vertices[id]
		if len(v.parents) == 0 {
			roots = append(roots, v)
		}
	}
	return roots
}

// CheckAcyclic verifies that the graph contains no directed cycle,
// using DFS with a recursion stack. AddEdge already rejects cycles, so
// a failure here indicates graph corruption; the error wraps
// ErrWouldCycle and spells out the offending path.
// Time complexity: O(V + E).
func (g *Graph[ID, V, L]) CheckAcyclic() error {
	visited := make(map[ID]bool, len(g.vertices))
	recStack := make(map[ID]bool, len(g.vertices))

	var dfs func(ID, []ID) error
	dfs = func(id ID, path []ID) error {
		visited[id] = true
		recStack[id] = true
		path = append(path, id)

		for _, childID := range g.vertices[id].children {
			if !visited[childID] {
				if err := dfs(childID, path); err != nil {
					return err
				}
			} else if recStack[childID] {
				cyclePath := append(path, childID)
				pathStr := make([]string, len(cyclePath))
				for i, pid := range cyclePath {
					pathStr[i] = fmt.Sprintf("%v", pid)
				}
				return fmt.Errorf("%w: %s", ErrWouldCycle, strings.Join(pathStr, " -> "))
			}
		}

		recStack[id] = false
		return nil
	}

	// Walk in registration order so disconnected components are
	// covered and error messages are stable.
	for _, id := range g.order {
		if !visited[id] {
			if err := dfs(id, nil); err != nil {
				return err
			}
		}
	}

	return nil
}
