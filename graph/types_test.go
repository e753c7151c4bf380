// ABOUTME: Tests for CFG well-formedness validation and deep-copy semantics

package graph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/cfgreduce/cfgerr"
)

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	g := CFG{
		Order: []NodeID{0, 1},
		Succ:  map[NodeID][]NodeID{0: {1}, 1: {0}},
	}
	assert.NoError(t, Validate(g))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		g    CFG
		want error
	}{
		{
			name: "empty graph",
			g:    CFG{},
			want: cfgerr.ErrNoEntry,
		},
		{
			name: "missing successor list",
			g:    CFG{Order: []NodeID{0, 1}, Succ: map[NodeID][]NodeID{0: {1}}},
			want: cfgerr.ErrMalformedGraph,
		},
		{
			name: "duplicate successor entry",
			g:    CFG{Order: []NodeID{0, 1}, Succ: map[NodeID][]NodeID{0: {1, 1}, 1: {}}},
			want: cfgerr.ErrMalformedGraph,
		},
		{
			name: "unknown successor",
			g:    CFG{Order: []NodeID{0}, Succ: map[NodeID][]NodeID{0: {7}}},
			want: cfgerr.ErrMalformedGraph,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := CFG{
		Order: []NodeID{0, 1},
		Succ:  map[NodeID][]NodeID{0: {1}, 1: {}},
	}
	c := g.Clone()
	c.Succ[0][0] = 99
	c.Order[0] = 99
	assert.Equal(t, NodeID(1), g.Succ[0][0])
	assert.Equal(t, NodeID(0), g.Order[0])
}

func TestUnitWeights(t *testing.T) {
	g := CFG{
		Order: []NodeID{0, 1, 2},
		Succ:  map[NodeID][]NodeID{0: {1}, 1: {2}, 2: {}},
	}
	w := UnitWeights(g)
	for _, id := range g.Order {
		assert.Equal(t, int64(1), w.Weight[id])
	}
}
