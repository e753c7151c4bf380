// ABOUTME: Core CFG data types: node identifiers, ordered successor maps, weights
// ABOUTME: CFG is the single representation shared by every analysis and driver

package graph

import (
	"sort"

	"github.com/prateek/cfgreduce/cfgerr"
)

// NodeID is an opaque node identifier. Only equality is meaningful.
type NodeID int64

// CFG is an ordered mapping from node identifier to an ordered list of
// successor identifiers. Order[0] is the distinguished entry node.
type CFG struct {
	Order []NodeID
	Succ  map[NodeID][]NodeID
}

// Entry returns the distinguished entry node.
func (g CFG) Entry() NodeID {
	return g.Order[0]
}

// NumNodes returns the number of nodes in the graph.
func (g CFG) NumNodes() int {
	return len(g.Order)
}

// Clone returns a deep copy of g; mutating the result never affects g.
func (g CFG) Clone() CFG {
	order := append([]NodeID(nil), g.Order...)
	succ := make(map[NodeID][]NodeID, len(g.Succ))
	for k, v := range g.Succ {
		succ[k] = append([]NodeID(nil), v...)
	}
	return CFG{Order: order, Succ: succ}
}

// WeightedCFG is a CFG plus a mapping of node to positive integer weight.
type WeightedCFG struct {
	CFG
	Weight map[NodeID]int64
}

// Clone returns a deep copy of g.
func (g WeightedCFG) Clone() WeightedCFG {
	w := make(map[NodeID]int64, len(g.Weight))
	for k, v := range g.Weight {
		w[k] = v
	}
	return WeightedCFG{CFG: g.CFG.Clone(), Weight: w}
}

// UnitWeights builds a WeightedCFG over g where every node has weight 1.
func UnitWeights(g CFG) WeightedCFG {
	w := make(map[NodeID]int64, len(g.Order))
	for _, n := range g.Order {
		w[n] = 1
	}
	return WeightedCFG{CFG: g, Weight: w}
}

// Validate checks well-formedness: every node referenced by
// Order has a successor list (possibly empty), no successor list contains a
// duplicate entry, and every successor refers to a node present in Order.
// A graph with an empty Order (including the zero CFG) fails with ErrNoEntry.
func Validate(g CFG) error {
	if len(g.Order) == 0 {
		return cfgerr.Wrap("graph.Validate", cfgerr.ErrNoEntry, "")
	}
	known := make(map[NodeID]bool, len(g.Order))
	for _, n := range g.Order {
		known[n] = true
	}
	for _, n := range g.Order {
		succs, ok := g.Succ[n]
		if !ok {
			return cfgerr.Wrap("graph.Validate", cfgerr.ErrMalformedGraph, "missing successor list")
		}
		seen := make(map[NodeID]bool, len(succs))
		for _, s := range succs {
			if seen[s] {
				return cfgerr.Wrap("graph.Validate", cfgerr.ErrMalformedGraph, "duplicate successor entry")
			}
			seen[s] = true
			if !known[s] {
				return cfgerr.Wrap("graph.Validate", cfgerr.ErrMalformedGraph, "successor references unknown node")
			}
		}
	}
	return nil
}

// SortNodeIDs sorts ids in place by ascending numeric value; used wherever a
// deterministic but order-independent output needs a canonical ordering
// (e.g. test harnesses that set-compare SCCs).
func SortNodeIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
