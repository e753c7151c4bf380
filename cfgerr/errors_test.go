// ABOUTME: Tests that OpError wrapping still round-trips through errors.Is/As

package cfgerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesSentinelIdentity(t *testing.T) {
	err := Wrap("graph.Validate", ErrMalformedGraph, "duplicate successor entry")
	assert.True(t, errors.Is(err, ErrMalformedGraph))
	assert.False(t, errors.Is(err, ErrNoEntry))

	var opErr *OpError
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, "graph.Validate", opErr.Op)
}

func TestWrapWithoutDetailStillWraps(t *testing.T) {
	err := Wrap("graph.Reverse", ErrAmbiguousReversal, "")
	assert.True(t, errors.Is(err, ErrAmbiguousReversal))
	assert.Contains(t, err.Error(), "graph.Reverse")
}
