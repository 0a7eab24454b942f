package catalog

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

func TestInduceMissingVertex(t *testing.T) {
	X := pattern.MustParse("(1)-[]-(2)-[]-(3)")
	vtx := append(append([]pattern.Vertex(nil), X.Vertices()...), pattern.Vertex{ID: 9})

	sub, err := induce(X, vtx, bitset.New(4).Set(0).Set(1))
	require.Nil(t, sub)
	require.True(t, errors.Is(err, gplan.ErrInvariantViolation))

	sub, err = induce(X, vtx[:3], bitset.New(3).Set(0).Set(1))
	require.NoError(t, err)
	require.Equal(t, 2, sub.VertexCount())
	require.Equal(t, 1, sub.EdgeCount())
}
