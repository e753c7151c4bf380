// ABOUTME: CNS splittability strategies: a closed registry of name -> predicate,
// ABOUTME: resolved once per driver call, with unknown names rejected up front.

package reduce

import (
	"github.com/prateek/cfgreduce/cfgerr"
	"github.com/prateek/cfgreduce/graph"
)

// Strategy selects which nodes Controlled Node Splitting is willing to
// duplicate.
type Strategy int

const (
	// StrategyNormalNode admits only nodes that are not themselves the
	// immediate dominator of some other node.
	StrategyNormalNode Strategy = iota
	// StrategyBackEdge additionally admits a dominator node when none of
	// its predecessors is the immediate dominator of anything; a dominator
	// node fed directly by an immediate dominator is still refused.
	StrategyBackEdge
)

func (s Strategy) String() string {
	switch s {
	case StrategyNormalNode:
		return "normal_node"
	case StrategyBackEdge:
		return "back_edge"
	default:
		return "unknown"
	}
}

// splitPredicate decides whether n, with current predecessor list preds, is
// eligible for duplication given the set of nodes that are the immediate
// dominator of at least one other node. The driver consults it only for
// nodes in that set; nodes dominating nothing are eligible under every
// strategy.
type splitPredicate func(n graph.NodeID, preds []graph.NodeID, idomOf map[graph.NodeID]bool) bool

var strategyRegistry = map[Strategy]splitPredicate{
	StrategyNormalNode: func(n graph.NodeID, _ []graph.NodeID, idomOf map[graph.NodeID]bool) bool {
		return !idomOf[n]
	},
	StrategyBackEdge: func(_ graph.NodeID, preds []graph.NodeID, idomOf map[graph.NodeID]bool) bool {
		for _, p := range preds {
			if idomOf[p] {
				return false
			}
		}
		return true
	},
}

// ParseStrategy looks up a strategy by its registry name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "normal_node":
		return StrategyNormalNode, nil
	case "back_edge":
		return StrategyBackEdge, nil
	default:
		return 0, cfgerr.Wrap("reduce.ParseStrategy", cfgerr.ErrUnknownStrategy, name)
	}
}

func (s Strategy) predicate() (splitPredicate, error) {
	p, ok := strategyRegistry[s]
	if !ok {
		return nil, cfgerr.Wrap("reduce.Strategy", cfgerr.ErrUnknownStrategy, s.String())
	}
	return p, nil
}

// idomSet builds the set of nodes that are the immediate dominator of at
// least one other node in g.
func idomSet(g graph.CFG) (map[graph.NodeID]bool, error) {
	idom, err := graph.Dominators(g)
	if err != nil {
		return nil, err
	}
	set := make(map[graph.NodeID]bool, len(idom))
	for _, d := range idom {
		set[d] = true
	}
	return set, nil
}
