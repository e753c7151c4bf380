// ABOUTME: Tests for the Hecht-Ullman reducer: boundary graphs and literal log expectations

package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/cfgreduce/graph"
)

func n(ids ...int64) []graph.NodeID {
	out := make([]graph.NodeID, len(ids))
	for i, id := range ids {
		out[i] = graph.NodeID(id)
	}
	return out
}

func TestReduceTrivial(t *testing.T) {
	g := graph.CFG{Order: n(0), Succ: map[graph.NodeID][]graph.NodeID{0: {}}}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumNodes())
	assert.Empty(t, s.Log)
	assert.Equal(t, int64(1), s.Weight(0))
}

func TestReduceSelfLoop(t *testing.T) {
	g := graph.CFG{Order: n(0), Succ: map[graph.NodeID][]graph.NodeID{0: {0}}}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	require.Len(t, s.Log, 1)
	assert.Equal(t, KindT1, s.Log[0].Kind)
	assert.Empty(t, s.Succ(0))
}

func TestReduceLinearChain(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1), 1: n(2), 2: {},
		},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumNodes())
	assert.Equal(t, int64(3), s.Weight(0))
	require.Len(t, s.Log, 2)

	assert.Equal(t, KindT2, s.Log[0].Kind)
	assert.Equal(t, graph.NodeID(1), s.Log[0].Subject)
	assert.Equal(t, n(1), s.Log[0].ParentSuccsBefore)
	assert.Empty(t, s.Log[0].ParentPredsBefore)
	assert.Equal(t, n(2), s.Log[0].SubjectSuccsBefore)
	assert.Equal(t, n(0), s.Log[0].SubjectPredsBefore)
	assert.Equal(t, int64(1), s.Log[0].SubjectWeight)

	assert.Equal(t, KindT2, s.Log[1].Kind)
	assert.Equal(t, graph.NodeID(2), s.Log[1].Subject)
	assert.Equal(t, n(2), s.Log[1].ParentSuccsBefore)
	assert.Empty(t, s.Log[1].ParentPredsBefore)
	assert.Empty(t, s.Log[1].SubjectSuccsBefore)
	assert.Equal(t, n(0), s.Log[1].SubjectPredsBefore)
}

func TestReduceTwoCycle(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1),
		Succ:  map[graph.NodeID][]graph.NodeID{0: n(1), 1: n(0)},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumNodes())
	assert.Equal(t, int64(2), s.Weight(0))
	require.Len(t, s.Log, 2)

	assert.Equal(t, KindT2, s.Log[0].Kind)
	assert.Equal(t, n(1), s.Log[0].ParentSuccsBefore)
	assert.Equal(t, n(1), s.Log[0].ParentPredsBefore)
	assert.Equal(t, n(0), s.Log[0].SubjectSuccsBefore)
	assert.Equal(t, n(0), s.Log[0].SubjectPredsBefore)

	assert.Equal(t, KindT1, s.Log[1].Kind)
	assert.Equal(t, int64(2), s.Log[1].SubjectWeight)
}

func TestReduceIrreducibleDiamondLeavesMultipleNodes(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2, 3),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1, 2), 1: n(2, 3), 2: n(1, 3), 3: {},
		},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.NumNodes(), 2)
}

func TestRecoverRoundTripLinearChain(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1), 1: n(2), 2: {},
		},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)

	origCFG, origW, err := Recover(s)
	require.NoError(t, err)

	assert.Equal(t, n(0, 1, 2), origCFG.Order)
	assert.Equal(t, []graph.NodeID{1}, origCFG.Succ[0])
	assert.Equal(t, []graph.NodeID{2}, origCFG.Succ[1])
	assert.Empty(t, origCFG.Succ[2])
	assert.Equal(t, int64(1), origW.Weight[0])
	assert.Equal(t, int64(1), origW.Weight[1])
	assert.Equal(t, int64(1), origW.Weight[2])
	assert.Empty(t, s.Log)
}

func TestRecoverRoundTripTwoCycle(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1),
		Succ:  map[graph.NodeID][]graph.NodeID{0: n(1), 1: n(0)},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)

	origCFG, origW, err := Recover(s)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeID{1}, origCFG.Succ[0])
	assert.Equal(t, []graph.NodeID{0}, origCFG.Succ[1])
	assert.Equal(t, int64(1), origW.Weight[0])
	assert.Equal(t, int64(1), origW.Weight[1])
}

func TestRecoverRoundTripIrreducibleDiamond(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2, 3),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1, 2), 1: n(2, 3), 2: n(1, 3), 3: {},
		},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)

	origCFG, origW, err := Recover(s)
	require.NoError(t, err)
	assert.Equal(t, n(0, 1, 2, 3), origCFG.Order)
	assert.ElementsMatch(t, n(1, 2), origCFG.Succ[0])
	assert.ElementsMatch(t, n(2, 3), origCFG.Succ[1])
	assert.ElementsMatch(t, n(1, 3), origCFG.Succ[2])
	assert.Empty(t, origCFG.Succ[3])
	for _, id := range n(0, 1, 2, 3) {
		assert.Equal(t, int64(1), origW.Weight[id])
	}
}

func TestSumOfWeightsEqualsNodeCount(t *testing.T) {
	g := graph.CFG{
		Order: n(0, 1, 2, 3, 4),
		Succ: map[graph.NodeID][]graph.NodeID{
			0: n(1), 1: n(2), 2: n(3), 3: n(4), 4: {},
		},
	}
	s, err := Reduce(g, graph.WeightedCFG{})
	require.NoError(t, err)
	var total int64
	for _, id := range s.Order() {
		total += s.Weight(id)
	}
	assert.Equal(t, int64(5), total)
}
