package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/dedup"
	"github.com/2x3systems/gplan/pattern"
)

func TestPatternSet(t *testing.T) {
	ps := dedup.NewPatternSet(dedup.DedupOpts{})
	require.True(t, ps.TryAdd(pattern.MustParse("(1:1)-[:2]->(2:3)")))
	require.False(t, ps.TryAdd(pattern.MustParse("(8:3)<-[:2]-(5:1)")))
	require.True(t, ps.TryAdd(pattern.MustParse("(1:1)<-[:2]-(2:3)")))
	require.True(t, ps.TryAdd(pattern.MustParse("(1:1)-[:2]-(2:3)")))
	require.False(t, ps.TryAdd(pattern.MustParse("(2:3)-[:2]-(1:1)")))
	require.Equal(t, 3, ps.Len())
	require.Len(t, ps.Patterns(), 3)

	ps.Reset()
	require.Equal(t, 0, ps.Len())
	require.True(t, ps.TryAdd(pattern.MustParse("(1:1)-[:2]->(2:3)")))
}

func TestPairSet(t *testing.T) {
	ps := dedup.NewPairSet(dedup.DedupOpts{PoolSz: 16})

	edge := pattern.MustParse("(1)-[]-(2)")
	path := pattern.MustParse("(1)-[]-(2)-[]-(3)")
	require.True(t, ps.TryAdd(edge, path))
	require.False(t, ps.TryAdd(pattern.MustParse("(7)-[]-(4)"), pattern.MustParse("(3)-[]-(9)-[]-(4)")))

	// Each side is compared separately
	require.True(t, ps.TryAdd(path, edge))
	require.True(t, ps.TryAdd(edge, pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(1)")))
	require.False(t, ps.TryAdd(pattern.MustParse("(4)-[]-(2)"), pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(1)")))
	require.Equal(t, 3, ps.Len())
}

func TestPairSetManyEntries(t *testing.T) {
	ps := dedup.NewPairSet(dedup.DedupOpts{PoolSz: 64})

	// Paths of every length up to 12, as both probe and build
	paths := make([]*pattern.Pattern, 12)
	for n := range paths {
		X := pattern.New()
		for v := 0; v <= n; v++ {
			require.NoError(t, X.AddVertex(pattern.VtxID(v)))
			if v > 0 {
				_, err := X.AddEdge(pattern.Edge{Src: pattern.VtxID(v - 1), Dst: pattern.VtxID(v)})
				require.NoError(t, err)
			}
		}
		paths[n] = X
	}
	for _, a := range paths {
		for _, b := range paths {
			require.True(t, ps.TryAdd(a, b))
		}
	}
	for _, a := range paths {
		for _, b := range paths {
			require.False(t, ps.TryAdd(a.Clone(), b.Clone()))
		}
	}
	require.Equal(t, len(paths)*len(paths), ps.Len())
}

// Three disjoint 5-cycles have too many automorphisms for an exact canonical code
const (
	threeFiveCycles = "(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)-[]-(1), " +
		"(6)-[]-(7)-[]-(8)-[]-(9)-[]-(10)-[]-(6), " +
		"(11)-[]-(12)-[]-(13)-[]-(14)-[]-(15)-[]-(11)"
	threeFiveCyclesRelabeled = "(31)-[]-(17)-[]-(44)-[]-(12)-[]-(29)-[]-(31), " +
		"(50)-[]-(23)-[]-(38)-[]-(11)-[]-(46)-[]-(50), " +
		"(19)-[]-(35)-[]-(27)-[]-(41)-[]-(14)-[]-(19)"
)

func TestInexactPatterns(t *testing.T) {
	X := pattern.MustParse(threeFiveCycles)
	_, exact := X.CanonicalCode()
	require.False(t, exact)

	ps := dedup.NewPatternSet(dedup.DedupOpts{})
	require.True(t, ps.TryAdd(X))
	require.False(t, ps.TryAdd(pattern.MustParse(threeFiveCyclesRelabeled)))

	// An exact pattern sharing X's vertex and edge counts and degrees
	require.True(t, ps.TryAdd(pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)-[]-(1), "+
		"(6)-[]-(7)-[]-(8)-[]-(9)-[]-(10)-[]-(11)-[]-(12)-[]-(13)-[]-(14)-[]-(15)-[]-(6)")))

	W := X.Clone()
	_, err := W.AddEdge(pattern.Edge{Src: 5, Dst: 6})
	require.NoError(t, err)
	require.True(t, ps.TryAdd(W))
	require.Equal(t, 3, ps.Len())

	pairs := dedup.NewPairSet(dedup.DedupOpts{PoolSz: 16})
	edge := pattern.MustParse("(1)-[]-(2)")
	require.True(t, pairs.TryAdd(edge, X))
	require.False(t, pairs.TryAdd(pattern.MustParse("(8)-[]-(3)"), pattern.MustParse(threeFiveCyclesRelabeled)))
	require.True(t, pairs.TryAdd(X, edge))
	require.True(t, pairs.TryAdd(edge, W))
	require.False(t, pairs.TryAdd(pattern.MustParse("(2)-[]-(1)"), W.Clone()))
	require.Equal(t, 3, pairs.Len())
}
