package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/dedup"
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

func arc(vtx pattern.VtxID, weight float64) *gplan.ExtendArc {
	return &gplan.ExtendArc{
		TargetVtx: vtx,
		Step: gplan.ExtendStep{
			Weight: weight,
		},
	}
}

func TestSortArcs(t *testing.T) {
	arcs := []*gplan.ExtendArc{
		arc(1, 2.0),
		arc(2, 1.0),
		arc(3, 2.0),
		arc(4, 0.5),
		arc(5, 1.0),
	}
	dedup.SortArcs(arcs)
	require.True(t, dedup.IsSorted(arcs))

	var order []pattern.VtxID
	for _, a := range arcs {
		order = append(order, a.TargetVtx)
	}
	require.Equal(t, []pattern.VtxID{4, 5, 2, 3, 1}, order)
}

func TestArcLess(t *testing.T) {
	require.True(t, dedup.ArcLess(arc(1, 1), arc(9, 2)))
	require.True(t, dedup.ArcLess(arc(9, 1), arc(1, 1)))
	require.False(t, dedup.ArcLess(arc(1, 1), arc(9, 1)))
	require.False(t, dedup.ArcLess(arc(3, 1), arc(3, 1)))
}
