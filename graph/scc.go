// ABOUTME: Strongly connected components via iterative Tarjan
// ABOUTME: Explicit work stack with a successor cursor per frame, no recursion

package graph

// TarjanSCC returns the strongly connected components of g in discovery
// order. Within an SCC, element order is unspecified. A self-loop produces
// its own singleton SCC, per Tarjan's classical definition; callers that
// need to distinguish a trivially-reducible self-loop from a genuine cycle
// do so themselves (the reducer's T1 pass is exactly that caller).
func TarjanSCC(g CFG) [][]NodeID {
	return tarjanSCC(g.Order, func(n NodeID) []NodeID { return g.Succ[n] })
}

// TarjanSCCRegion is TarjanSCC restricted to a region: only nodes for which
// include returns true are visited, and only edges whose target also passes
// include are followed. This is the region-restricted SCC the ONS driver
// needs (handle_ir_children runs SCC only over undone nodes at a given
// dominator depth).
func TarjanSCCRegion(nodes []NodeID, succ func(NodeID) []NodeID, include func(NodeID) bool) [][]NodeID {
	var filtered []NodeID
	for _, n := range nodes {
		if include(n) {
			filtered = append(filtered, n)
		}
	}
	filteredSucc := func(n NodeID) []NodeID {
		var out []NodeID
		for _, s := range succ(n) {
			if include(s) {
				out = append(out, s)
			}
		}
		return out
	}
	return tarjanSCC(filtered, filteredSucc)
}

type tarjanFrame struct {
	node NodeID
	next int
}

// tarjanSCC is the shared iterative Tarjan core: for each unvisited node,
// push a frame (node, successor-cursor); maintain discovery index, low-link,
// the Tarjan stack, and an on-stack set. On finishing a node, if its
// low-link equals its index, pop an SCC off the stack.
func tarjanSCC(nodes []NodeID, succ func(NodeID) []NodeID) [][]NodeID {
	index := make(map[NodeID]int, len(nodes))
	lowlink := make(map[NodeID]int, len(nodes))
	onStack := make(map[NodeID]bool, len(nodes))
	var tstack []NodeID
	var sccs [][]NodeID
	next := 0

	for _, root := range nodes {
		if _, seen := index[root]; seen {
			continue
		}

		work := []tarjanFrame{{node: root}}
		index[root] = next
		lowlink[root] = next
		next++
		tstack = append(tstack, root)
		onStack[root] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			succs := succ(top.node)

			if top.next < len(succs) {
				w := succs[top.next]
				top.next++
				if _, seen := index[w]; !seen {
					index[w] = next
					lowlink[w] = next
					next++
					tstack = append(tstack, w)
					onStack[w] = true
					work = append(work, tarjanFrame{node: w})
				} else if onStack[w] {
					if index[w] < lowlink[top.node] {
						lowlink[top.node] = index[w]
					}
				}
				continue
			}

			// Done with top.node's successors.
			v := top.node
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[v] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[v]
				}
			}
			if lowlink[v] == index[v] {
				var scc []NodeID
				for {
					w := tstack[len(tstack)-1]
					tstack = tstack[:len(tstack)-1]
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
