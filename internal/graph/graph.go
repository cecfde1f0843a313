// Package graph provides a generic directed-acyclic-graph with a
// deterministic topological sort. It is used twice by the driver: once
// over targets, once over invocations within a target.
package graph

import "fmt"

// Graph holds a set of nodes of type N and, per node, the set of
// predecessors it depends on. N must be comparable so nodes can key a map.
//
// Ordering ties are broken by insertion order: the first call to Insert
// that introduces a node, either as the node itself or as one of its
// predecessors, fixes its relative position among nodes with no path
// between them.
type Graph[N comparable] struct {
	order []N
	index map[N]int
	preds map[N]map[N]struct{}
}

// New returns an empty Graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{
		index: make(map[N]int),
		preds: make(map[N]map[N]struct{}),
	}
}

// Insert records node and that it depends on every element of preds. If
// node was already present its predecessor set is unioned with preds
// rather than replaced.
func (g *Graph[N]) Insert(node N, preds []N) {
	g.ensure(node)
	for _, p := range preds {
		g.ensure(p)
		g.preds[node][p] = struct{}{}
	}
}

func (g *Graph[N]) ensure(node N) {
	if _, ok := g.index[node]; ok {
		return
	}
	g.index[node] = len(g.order)
	g.order = append(g.order, node)
	g.preds[node] = make(map[N]struct{})
}

// Len returns the number of nodes inserted so far.
func (g *Graph[N]) Len() int {
	return len(g.order)
}

// CycleError is returned by Ordered when the graph contains a cycle. Nodes
// lists every node found to still be unresolved when the cycle was
// detected, which includes the cycle itself plus anything depending on it.
type CycleError[N comparable] struct {
	Nodes []N
}

func (e *CycleError[N]) Error() string {
	return fmt.Sprintf("cycle detected among %d node(s)", len(e.Nodes))
}

// Ordered returns every node exactly once such that every predecessor
// appears before its dependent. Among nodes with no path between them
// (true ties), the one introduced earlier by Insert comes first: this is
// a stable Kahn's algorithm where the ready set always yields its
// earliest-inserted member. Returns a *CycleError if the graph is not a
// DAG.
func (g *Graph[N]) Ordered() ([]N, error) {
	inDegree := make(map[N]int, len(g.order))
	for _, n := range g.order {
		inDegree[n] = len(g.preds[n])
	}
	// successors is derived by scanning g.order rather than ranging over a
	// map, so that decrementing in-degrees happens in a deterministic order.
	successors := orderedSuccessors(g.order, g.preds)

	resolved := make(map[N]struct{}, len(g.order))
	result := make([]N, 0, len(g.order))

	for len(result) < len(g.order) {
		next, found := -1, false
		for i, n := range g.order {
			if _, done := resolved[n]; done {
				continue
			}
			if inDegree[n] == 0 {
				next, found = i, true
				break
			}
		}
		if !found {
			var stuck []N
			for _, n := range g.order {
				if _, done := resolved[n]; !done {
					stuck = append(stuck, n)
				}
			}
			return nil, &CycleError[N]{Nodes: stuck}
		}

		n := g.order[next]
		resolved[n] = struct{}{}
		result = append(result, n)
		for _, succ := range successors[n] {
			inDegree[succ]--
		}
	}

	return result, nil
}

func orderedSuccessors[N comparable](order []N, preds map[N]map[N]struct{}) map[N][]N {
	successors := make(map[N][]N, len(order))
	for _, n := range order {
		for _, p := range order {
			if _, ok := preds[n][p]; ok {
				successors[p] = append(successors[p], n)
			}
		}
	}
	return successors
}
