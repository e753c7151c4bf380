// ABOUTME: Tests for dominator tree, dominance frontier, post-dominance frontier

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominanceFrontierJoin(t *testing.T) {
	// expected frontier: {1:{3}, 2:{3}, 3:{}, 0:{}}
	g := CFG{
		Order: []NodeID{0, 1, 2, 3},
		Succ: map[NodeID][]NodeID{
			0: {1, 2},
			1: {3},
			2: {3},
			3: {},
		},
	}
	df, err := DominanceFrontier(g)
	require.NoError(t, err)

	assert.ElementsMatch(t, []NodeID{3}, df[1])
	assert.ElementsMatch(t, []NodeID{3}, df[2])
	assert.Empty(t, df[3])
	assert.Empty(t, df[0])
}

func TestDominanceFrontierLoop(t *testing.T) {
	g := CFG{
		Order: []NodeID{0, 1, 2, 3},
		Succ: map[NodeID][]NodeID{
			0: {1},
			1: {2, 3},
			2: {1},
			3: {},
		},
	}
	df, err := DominanceFrontier(g)
	require.NoError(t, err)
	assert.ElementsMatch(t, []NodeID{1}, df[2])
}

func TestBuildDomTreeChildren(t *testing.T) {
	g := CFG{
		Order: []NodeID{0, 1, 2, 3},
		Succ: map[NodeID][]NodeID{
			0: {1, 2},
			1: {3},
			2: {3},
			3: {},
		},
	}
	tree, err := DominatorTree(g)
	require.NoError(t, err)
	assert.ElementsMatch(t, []NodeID{1, 2, 3}, tree.Children[0])
	assert.True(t, tree.Dominates(0, 3))
	assert.False(t, tree.Dominates(1, 3))
}

func TestPostDominanceFrontier(t *testing.T) {
	// Two exits reached from one branch: the branch node is in each exit's
	// post-dominance frontier.
	g := CFG{
		Order: []NodeID{0, 1, 2},
		Succ: map[NodeID][]NodeID{
			0: {1, 2},
			1: {},
			2: {},
		},
	}
	pdf, err := PostDominanceFrontier(g)
	require.NoError(t, err)
	assert.ElementsMatch(t, []NodeID{0}, pdf[1])
	assert.ElementsMatch(t, []NodeID{0}, pdf[2])
	assert.Empty(t, pdf[0])
}
