// ABOUTME: Controlled Node Splitting driver (Janssen & Corporaal): repeatedly reduces with
// ABOUTME: T1/T2, then duplicates the cheapest splittable join node, until one node remains.

package reduce

import (
	"github.com/prateek/cfgreduce/cfgerr"
	"github.com/prateek/cfgreduce/graph"
)

// SplitRecord pairs a duplicate's identifier with the node it was cloned
// from. The clone that reuses the original identifier still gets a record,
// with Duplicate == Original.
type SplitRecord struct {
	Duplicate graph.NodeID
	Original  graph.NodeID
}

// CNSStep is one entry of the history CNSReduce returns: the state of the
// graph after a T1/T2 reduction to fixpoint, and the splits (empty for the
// first entry) that produced the graph handed to that reduction.
type CNSStep struct {
	CFG     graph.CFG
	Weights graph.WeightedCFG
	Log     []LogEntry
	Splits  []SplitRecord
}

// CNSReduce drives Controlled Node Splitting to completion: reduce, and
// while more than one node remains, pick the lowest-score splittable node
// under strategy, duplicate it once per predecessor, and reduce again.
func CNSReduce(g graph.CFG, weights graph.WeightedCFG, strategy Strategy, opts ...Option) ([]CNSStep, error) {
	o := buildOptions(opts)
	predicate, err := strategy.predicate()
	if err != nil {
		return nil, err
	}

	s, err := Reduce(g, weights)
	if err != nil {
		return nil, err
	}
	history := []CNSStep{{CFG: s.CFG(), Weights: s.WeightedCFG(), Log: s.Log, Splits: nil}}
	o.debugw("cns: initial reduction", "nodes", s.NumNodes())

	nextID := maxNodeID(g.Order) + 1

	for s.NumNodes() > 1 {
		cur := s.CFG()
		idomOf, err := idomSet(cur)
		if err != nil {
			return nil, err
		}
		order := graph.Preorder(cur)

		target, found := graph.NodeID(0), false
		bestScore := int64(0)
		for _, n := range order {
			if n == s.Entry() {
				continue
			}
			preds := s.Preds(n)
			if len(preds) < 2 {
				continue
			}
			// A node that dominates nothing is always eligible: it cannot
			// hide a domain. The strategy predicate only gates nodes that
			// are themselves immediate dominators.
			if idomOf[n] && !predicate(n, preds, idomOf) {
				continue
			}
			score := s.Weight(n) * int64(len(preds)-1)
			if !found || score < bestScore {
				target, bestScore, found = n, score, true
			}
		}
		if !found {
			return nil, cfgerr.Wrap("reduce.CNSReduce", cfgerr.ErrInvariantBroken, "no splittable node remains above one node")
		}

		newCFG, newWeights, splits := duplicateNode(s, target, &nextID)
		o.debugw("cns: split", "node", target, "fanout", len(splits), "score", bestScore)

		s, err = Reduce(newCFG, newWeights)
		if err != nil {
			return nil, err
		}
		history = append(history, CNSStep{CFG: s.CFG(), Weights: s.WeightedCFG(), Log: s.Log, Splits: splits})
	}
	return history, nil
}

func maxNodeID(ids []graph.NodeID) graph.NodeID {
	var max graph.NodeID
	for i, id := range ids {
		if i == 0 || id > max {
			max = id
		}
	}
	return max
}

// duplicateNode duplicates node n, currently
// fed by predecessors p0..pk-1, is replaced by k clones each fed by exactly
// one predecessor. p0's clone reuses n's identifier; the rest get fresh
// identifiers drawn from *nextID, which is advanced past every id handed
// out. Every clone keeps n's pre-split successor list and weight.
func duplicateNode(s *State, n graph.NodeID, nextID *graph.NodeID) (graph.CFG, graph.WeightedCFG, []SplitRecord) {
	preds := s.Preds(n)
	succs := s.Succ(n)
	weight := s.Weight(n)

	order := s.Order()
	succ := make(map[graph.NodeID][]graph.NodeID, len(order)+len(preds))
	w := make(map[graph.NodeID]int64, len(order)+len(preds))
	for _, id := range order {
		succ[id] = s.Succ(id)
		w[id] = s.Weight(id)
	}

	splits := make([]SplitRecord, 0, len(preds))
	splits = append(splits, SplitRecord{Duplicate: n, Original: n})

	for i := 1; i < len(preds); i++ {
		clone := *nextID
		*nextID++
		order = append(order, clone)
		succ[clone] = append([]graph.NodeID(nil), succs...)
		w[clone] = weight

		p := preds[i]
		succ[p] = replaceNode(succ[p], n, clone)
		splits = append(splits, SplitRecord{Duplicate: clone, Original: n})
	}

	newCFG := graph.CFG{Order: order, Succ: succ}
	return newCFG, graph.WeightedCFG{CFG: newCFG, Weight: w}, splits
}

func replaceNode(list []graph.NodeID, from, to graph.NodeID) []graph.NodeID {
	out := make([]graph.NodeID, len(list))
	for i, x := range list {
		if x == from {
			out[i] = to
		} else {
			out[i] = x
		}
	}
	return out
}
