// ABOUTME: Tests for Optimised Node Splitting against an already-reducible diamond
// ABOUTME: and the classical two-node irreducible loop entered from two distinct predecessors

package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/cfgreduce/graph"
)

func TestONSReduceLeavesAlreadyReducibleGraphUntouched(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2, 3),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1, 2), 1: n(3), 2: n(3), 3: {},
		},
	}
	result, err := ONSReduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	assert.Empty(t, result.Splits)
	assert.ElementsMatch(t, n(0, 1, 2, 3), result.CFG.Order)
}

func TestONSReduceSplitsIrreducibleDiamond(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2, 3),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1, 2), 1: n(2, 3), 2: n(1, 3), 3: {},
		},
	}
	result, err := ONSReduce(g, graph.WeightedCFG{})
	require.NoError(t, err)

	require.Len(t, result.Splits, 1)
	assert.Equal(t, graph.NodeID(1), result.Splits[0].Original)
	clone := result.Splits[0].Duplicate
	assert.NotEqual(t, graph.NodeID(1), clone)

	require.Len(t, result.CFG.Order, 5)
	// node 1 keeps its original edges; only node 2's edge into the split
	// member is redirected to the clone.
	assert.ElementsMatch(t, n(2, 3), result.CFG.Succ[1])
	assert.ElementsMatch(t, []graph.NodeID{clone, 3}, result.CFG.Succ[2])
	assert.ElementsMatch(t, n(2, 3), result.CFG.Succ[clone])

	var total int64
	for _, id := range result.CFG.Order {
		total += result.Weights.Weight[id]
	}
	assert.Equal(t, int64(5), total)

	// The result is reducible: the only remaining cycle (2 <-> clone) is
	// entered solely through node 2, so the T1/T2 reducer should collapse
	// it to a single node.
	reduced, err := Reduce(result.CFG, result.Weights)
	require.NoError(t, err)
	assert.Equal(t, 1, reduced.NumNodes())
}

func TestONSReduceKeepsHeaviestHeaderDomain(t *testing.T) {
	// Node 1's domain weighs 5, node 2's weighs 1: the header must be 1,
	// so only node 2 gets duplicated.
	g := graph.CFG{
		Order: n(0, 1, 2, 3),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1, 2), 1: n(2, 3), 2: n(1, 3), 3: {},
		},
	}
	weights := graph.WeightedCFG{CFG: g, Weight: map[graph.NodeID]int64{
		0: 1, 1: 5, 2: 1, 3: 1,
	}}
	result, err := ONSReduce(g, weights)
	require.NoError(t, err)

	require.Len(t, result.Splits, 1)
	assert.Equal(t, graph.NodeID(2), result.Splits[0].Original)
	clone := result.Splits[0].Duplicate

	// External entry 0->2 stays on the original; node 1's in-loop edge is
	// redirected to the clone.
	assert.ElementsMatch(t, []graph.NodeID{clone, 3}, result.CFG.Succ[1])
	assert.ElementsMatch(t, n(1, 3), result.CFG.Succ[2])
	assert.ElementsMatch(t, n(1, 3), result.CFG.Succ[clone])
	assert.Equal(t, int64(1), result.Weights.Weight[clone])

	reduced, err := Reduce(result.CFG, result.Weights)
	require.NoError(t, err)
	assert.Equal(t, 1, reduced.NumNodes())
}
