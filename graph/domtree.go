// ABOUTME: Dominance utilities: dominator tree, dominance frontier, post-dominance frontier
// ABOUTME: The dominator tree is the idom map inverted; frontiers follow Cytron

package graph

// DomTree is the dominator tree: the inversion of the immediate-dominator
// map, rooted at the entry.
type DomTree struct {
	Root     NodeID
	Idom     map[NodeID]NodeID   // excludes Root
	Children map[NodeID][]NodeID // Root included as a key
}

// BuildDomTree inverts idom (as produced by Dominators) into a tree rooted
// at entry.
func BuildDomTree(entry NodeID, idom map[NodeID]NodeID) DomTree {
	children := make(map[NodeID][]NodeID, len(idom)+1)
	children[entry] = nil
	for n := range idom {
		if _, ok := children[n]; !ok {
			children[n] = nil
		}
	}
	ids := make([]NodeID, 0, len(idom))
	for n := range idom {
		ids = append(ids, n)
	}
	SortNodeIDs(ids)
	for _, n := range ids {
		d := idom[n]
		children[d] = append(children[d], n)
	}
	return DomTree{Root: entry, Idom: idom, Children: children}
}

// DominatorTree computes the dominator tree of g directly.
func DominatorTree(g CFG) (DomTree, error) {
	idom, err := Dominators(g)
	if err != nil {
		return DomTree{}, err
	}
	return BuildDomTree(g.Entry(), idom), nil
}

// Dominates reports whether d dominates n (inclusive: every node dominates
// itself) under tree.
func (t DomTree) Dominates(d, n NodeID) bool {
	for cur := n; ; {
		if cur == d {
			return true
		}
		parent, ok := t.Idom[cur]
		if !ok {
			return false
		}
		cur = parent
	}
}

// DominanceFrontier computes the dominance frontier of every node in g per
// the classical Cytron definition: for every node x with >=2 predecessors
// (or x is the entry), for each predecessor p of x, walk upward via idom
// from p until idom(x) is reached, adding x to each visited node's frontier.
func DominanceFrontier(g CFG) (map[NodeID][]NodeID, error) {
	idom, err := Dominators(g)
	if err != nil {
		return nil, err
	}
	preds := Predecessors(g)
	return dominanceFrontier(g.Order, g.Entry(), idom, preds), nil
}

func dominanceFrontier(order []NodeID, entry NodeID, idom map[NodeID]NodeID, preds map[NodeID][]NodeID) map[NodeID][]NodeID {
	df := make(map[NodeID][]NodeID, len(order))
	seen := make(map[NodeID]map[NodeID]bool, len(order))
	for _, n := range order {
		df[n] = nil
		seen[n] = make(map[NodeID]bool)
	}

	for _, x := range order {
		p := preds[x]
		if len(p) < 2 && x != entry {
			continue
		}
		idomX, hasIdomX := idom[x]
		for _, pred := range p {
			runner := pred
			for {
				if hasIdomX && runner == idomX {
					break
				}
				if !hasIdomX && runner == entry {
					// x is the entry: idom(entry) doesn't exist, so the
					// walk has nowhere to stop other than never reaching
					// here in practice (entry's predecessor list is always
					// empty per the invariant), kept for defensiveness.
					break
				}
				if !seen[runner][x] {
					seen[runner][x] = true
					df[runner] = append(df[runner], x)
				}
				next, ok := idom[runner]
				if !ok {
					break
				}
				runner = next
			}
		}
	}
	return df
}

// PostDominanceFrontier computes the dominance frontier of the reverse
// graph: a synthetic sink is added with an edge from every real sink, the
// graph is reversed (the synthetic sink becomes the new entry), the ordinary
// dominance frontier is computed on that reversed graph, and the synthetic
// node is stripped from the result.
func PostDominanceFrontier(g CFG) (map[NodeID][]NodeID, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}

	var maxID NodeID
	first := true
	for _, n := range g.Order {
		if first || n > maxID {
			maxID = n
			first = false
		}
	}
	synthetic := maxID + 1

	augOrder := append([]NodeID(nil), g.Order...)
	augOrder = append(augOrder, synthetic)
	augSucc := make(map[NodeID][]NodeID, len(augOrder))
	for _, n := range g.Order {
		augSucc[n] = append([]NodeID(nil), g.Succ[n]...)
		if len(g.Succ[n]) == 0 {
			augSucc[n] = append(augSucc[n], synthetic)
		}
	}
	augSucc[synthetic] = nil
	augmented := CFG{Order: augOrder, Succ: augSucc}

	reversed, err := Reverse(augmented)
	if err != nil {
		return nil, err
	}

	pdf, err := DominanceFrontier(reversed)
	if err != nil {
		return nil, err
	}
	delete(pdf, synthetic)
	for n, set := range pdf {
		out := set[:0]
		for _, m := range set {
			if m != synthetic {
				out = append(out, m)
			}
		}
		pdf[n] = out
	}
	return pdf, nil
}
