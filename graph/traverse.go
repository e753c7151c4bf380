// ABOUTME: Graph primitives: iterative pre/post order DFS, predecessor inversion, reversal
// ABOUTME: All traversal here is explicit-stack; no function recurses into the graph's own shape

package graph

import "github.com/prateek/cfgreduce/cfgerr"

// Preorder returns the nodes of g reachable from the entry in DFS preorder.
// Ties are broken by successor list order: each stack frame carries a
// successor cursor, so the first unvisited successor is visited first.
func Preorder(g CFG) []NodeID {
	visited := make(map[NodeID]bool, len(g.Order))
	var order []NodeID

	type frame struct {
		node NodeID
		next int
	}
	stack := []frame{{node: g.Entry()}}
	visited[g.Entry()] = true
	order = append(order, g.Entry())

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Succ[top.node]
		advanced := false
		for top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				order = append(order, s)
				stack = append(stack, frame{node: s})
				advanced = true
				break
			}
		}
		if advanced {
			continue
		}
		if top.next >= len(succs) {
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// Postorder returns the nodes of g reachable from the entry in DFS
// postorder, using the same explicit-stack traversal and tie-breaking as
// Preorder.
func Postorder(g CFG) []NodeID {
	visited := make(map[NodeID]bool, len(g.Order))
	var order []NodeID

	type frame struct {
		node NodeID
		next int
	}
	stack := []frame{{node: g.Entry()}}
	visited[g.Entry()] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Succ[top.node]
		advanced := false
		for top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, frame{node: s})
				advanced = true
				break
			}
		}
		if advanced {
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order
}

// Predecessors inverts g's successor map. The entry node always maps to an
// empty predecessor list, even if some back edge targets it. The result is a
// plain map and carries no key order; the entry is not distinguished by
// position.
func Predecessors(g CFG) map[NodeID][]NodeID {
	preds := make(map[NodeID][]NodeID, len(g.Order))
	for _, n := range g.Order {
		preds[n] = nil
	}
	preds[g.Entry()] = []NodeID{}
	for _, n := range g.Order {
		for _, s := range g.Succ[n] {
			if s == g.Entry() {
				continue
			}
			preds[s] = append(preds[s], n)
		}
	}
	return preds
}

// Reverse returns the reverse of g: every edge u->v becomes v->u, and the
// unique sink of g (a node with no successors) becomes the new entry.
// Reverse fails with ErrAmbiguousReversal if g has zero or more than one
// sink.
func Reverse(g CFG) (CFG, error) {
	var sinks []NodeID
	for _, n := range g.Order {
		if len(g.Succ[n]) == 0 {
			sinks = append(sinks, n)
		}
	}
	if len(sinks) != 1 {
		return CFG{}, cfgerr.Wrap("graph.Reverse", cfgerr.ErrAmbiguousReversal, "")
	}
	sink := sinks[0]

	rsucc := make(map[NodeID][]NodeID, len(g.Order))
	for _, n := range g.Order {
		rsucc[n] = nil
	}
	for _, n := range g.Order {
		for _, s := range g.Succ[n] {
			rsucc[s] = append(rsucc[s], n)
		}
	}

	order := make([]NodeID, 0, len(g.Order))
	order = append(order, sink)
	for _, n := range g.Order {
		if n != sink {
			order = append(order, n)
		}
	}
	return CFG{Order: order, Succ: rsucc}, nil
}
