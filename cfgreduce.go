// ABOUTME: Root package providing version information and package documentation
// ABOUTME: Also re-exports the small external-interface surface over graph/ and reduce/

// Package cfgreduce turns an arbitrary directed control-flow graph into an
// equivalent reducible one, exposing the classical compiler-front-end
// analyses along the way: dominator tree, dominance frontier, strongly
// connected components, and Hecht-Ullman T1/T2 reduction with an inverse
// log. Its most valuable output is a sequence of node duplications that
// make a graph reducible while minimising duplicated weight, following
// either Janssen & Corporaal's Controlled Node Splitting or Unger's
// Optimised Node Splitting.
package cfgreduce

import (
	"github.com/prateek/cfgreduce/graph"
	"github.com/prateek/cfgreduce/reduce"
)

// Version is the semantic version of this module.
const Version = "0.1.0-dev"

// Reduce runs the T1/T2 fixpoint over graph, returning the reducer state
// from which the original graph can be recovered via Recover.
func Reduce(g graph.CFG, weights graph.WeightedCFG) (*reduce.State, error) {
	return reduce.Reduce(g, weights)
}

// Recover restores the graph Reduce was given, by replaying its log in
// reverse. The state is consumed: afterward it reflects the pre-reduction
// graph and its log is empty.
func Recover(s *reduce.State) (graph.CFG, graph.WeightedCFG, error) {
	return reduce.Recover(s)
}

// DominatorTree computes the dominator tree of g.
func DominatorTree(g graph.CFG) (graph.DomTree, error) {
	return graph.DominatorTree(g)
}

// DominanceFrontier computes the dominance frontier of every node in g.
func DominanceFrontier(g graph.CFG) (map[graph.NodeID][]graph.NodeID, error) {
	return graph.DominanceFrontier(g)
}

// PostDominanceFrontier computes the post-dominance frontier of every node
// in g.
func PostDominanceFrontier(g graph.CFG) (map[graph.NodeID][]graph.NodeID, error) {
	return graph.PostDominanceFrontier(g)
}

// TarjanSCC returns the strongly connected components of g.
func TarjanSCC(g graph.CFG) [][]graph.NodeID {
	return graph.TarjanSCC(g)
}

// CNSReduce drives Controlled Node Splitting to completion under strategy,
// returning the full (reduced-state, split-records) history.
func CNSReduce(g graph.CFG, weights graph.WeightedCFG, strategy reduce.Strategy, opts ...reduce.Option) ([]reduce.CNSStep, error) {
	return reduce.CNSReduce(g, weights, strategy, opts...)
}

// ONSReduce drives Optimised Node Splitting to completion, returning the
// now-reducible graph and the ordered list of splits that produced it.
func ONSReduce(g graph.CFG, weights graph.WeightedCFG, opts ...reduce.Option) (reduce.ONSResult, error) {
	return reduce.ONSReduce(g, weights, opts...)
}
