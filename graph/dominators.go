// ABOUTME: Lengauer-Tarjan dominators: preorder numbering, semidominators, immediate dominators
// ABOUTME: Iterative DFS numbering, two-pass semidominators, explicit-walk DSU path compression

package graph

import "github.com/prateek/cfgreduce/cfgerr"

// ltNode is a single node's bookkeeping in preorder index space: preorder
// index, successor/predecessor lists in preorder-index space, DFS-tree
// parent, semidominator, immediate dominator, and the DSU fields used by
// eval/link.
type ltNode struct {
	pre    int
	orig   NodeID
	succs  []int
	preds  []int
	parent int // -1 for the entry
	semi   int
	idom   int // -1 until resolved
	anc    int // -1 means a DSU forest root
	best   int // DSU path-compression label
	bucket []int
}

// LTGraph is the immutable (once built) relabelled graph the Lengauer-Tarjan
// algorithm operates on, plus the bijection back to the caller's NodeIDs.
type LTGraph struct {
	nodes []*ltNode
	preOf map[NodeID]int
	revOf []NodeID
}

// PreorderIndex returns the preorder index assigned to n, and whether n was
// reachable from the entry.
func (lt *LTGraph) PreorderIndex(n NodeID) (int, bool) {
	i, ok := lt.preOf[n]
	return i, ok
}

// NumNodes returns the number of nodes in the LT-graph (reachable nodes).
func (lt *LTGraph) NumNodes() int { return len(lt.nodes) }

// buildLTGraph performs the numbering phase: an iterative DFS from the entry,
// numbering nodes 0..n-1 in preorder and recording each node's DFS-tree
// parent. Predecessor lists are populated in ascending preorder-index order
// of the predecessor, which fixes the visit order for the semidominator pass.
func buildLTGraph(g CFG) *LTGraph {
	preOf := make(map[NodeID]int, len(g.Order))
	var revOf []NodeID
	var nodes []*ltNode

	type frame struct {
		idx  int // preorder index of the node owning this frame
		next int
	}
	entry := g.Entry()
	preOf[entry] = 0
	revOf = append(revOf, entry)
	nodes = append(nodes, &ltNode{pre: 0, orig: entry, parent: -1, anc: -1, best: 0})

	stack := []frame{{idx: 0}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Succ[revOf[top.idx]]
		advanced := false
		for top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if _, seen := preOf[s]; !seen {
				idx := len(nodes)
				preOf[s] = idx
				revOf = append(revOf, s)
				nodes = append(nodes, &ltNode{pre: idx, orig: s, parent: top.idx, anc: -1, best: idx, semi: idx})
				stack = append(stack, frame{idx: idx})
				advanced = true
				break
			}
		}
		if advanced {
			continue
		}
		stack = stack[:len(stack)-1]
	}

	for _, n := range nodes {
		n.succs = make([]int, 0, len(g.Succ[n.orig]))
		for _, s := range g.Succ[n.orig] {
			if idx, ok := preOf[s]; ok {
				n.succs = append(n.succs, idx)
			}
		}
		n.idom = -1
	}
	// Predecessor lists in ascending index order: scan nodes 0..n-1 and
	// append each as a predecessor of its successors.
	for i, n := range nodes {
		for _, s := range n.succs {
			nodes[s].preds = append(nodes[s].preds, i)
		}
	}

	return &LTGraph{nodes: nodes, preOf: preOf, revOf: revOf}
}

// eval is the Lengauer-Tarjan EVAL function, rewritten as an explicit
// two-phase walk: first follow ancestor pointers up to (but not including)
// the DSU forest root, then re-traverse that chain top-down applying path
// compression and propagating the minimum-semi label. Each node therefore
// always sees an already-compressed parent.
func (lt *LTGraph) eval(v int) int {
	n := lt.nodes[v]
	if n.anc == -1 {
		return n.best
	}

	var chain []int
	cur := v
	for lt.nodes[lt.nodes[cur].anc].anc != -1 {
		chain = append(chain, cur)
		cur = lt.nodes[cur].anc
	}
	for i := len(chain) - 1; i >= 0; i-- {
		node := chain[i]
		anc := lt.nodes[node].anc
		ancBest := lt.nodes[anc].best
		if lt.nodes[ancBest].semi < lt.nodes[lt.nodes[node].best].semi {
			lt.nodes[node].best = ancBest
		}
		lt.nodes[node].anc = lt.nodes[anc].anc
	}
	return lt.nodes[v].best
}

func (lt *LTGraph) link(v, w int) {
	lt.nodes[w].anc = v
}

// computeIdom runs the semidominator and idom passes over the LT-graph, filling in idom for
// every node but the entry.
func (lt *LTGraph) computeIdom() {
	n := len(lt.nodes)
	for i := n - 1; i >= 1; i-- {
		w := lt.nodes[i]
		for _, j := range w.preds {
			u := lt.eval(j)
			if lt.nodes[u].semi < w.semi {
				w.semi = lt.nodes[u].semi
			}
		}
		lt.nodes[w.semi].bucket = append(lt.nodes[w.semi].bucket, i)
		lt.link(w.parent, i)

		pb := &lt.nodes[w.parent].bucket
		for len(*pb) > 0 {
			b := (*pb)[len(*pb)-1]
			*pb = (*pb)[:len(*pb)-1]
			u := lt.eval(b)
			if lt.nodes[u].semi < lt.nodes[b].semi {
				lt.nodes[b].idom = u
			} else {
				lt.nodes[b].idom = w.parent
			}
		}
	}
	for i := 1; i < n; i++ {
		w := lt.nodes[i]
		if w.idom != w.semi {
			w.idom = lt.nodes[w.idom].idom
		}
	}
	lt.nodes[0].idom = -1
}

// Dominators computes the immediate dominator of every reachable node but
// the entry, per the Lengauer-Tarjan algorithm.
func Dominators(g CFG) (map[NodeID]NodeID, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	lt := buildLTGraph(g)
	lt.computeIdom()

	idom := make(map[NodeID]NodeID, len(lt.nodes)-1)
	for i := 1; i < len(lt.nodes); i++ {
		n := lt.nodes[i]
		if n.idom < 0 {
			return nil, cfgerr.Wrap("graph.Dominators", cfgerr.ErrInvariantBroken, "unresolved immediate dominator")
		}
		idom[n.orig] = lt.revOf[n.idom]
	}
	return idom, nil
}
