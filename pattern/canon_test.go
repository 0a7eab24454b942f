package pattern_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/pattern"
)

// relabel returns a copy of X where each vertex ID v is replaced by perm[v].
func relabel(t *testing.T, X *pattern.Pattern, perm map[pattern.VtxID]pattern.VtxID) *pattern.Pattern {
	t.Helper()
	Y := pattern.New()
	for _, v := range X.Vertices() {
		require.NoError(t, Y.AddVertex(perm[v.ID], v.Types...))
	}
	for _, e := range X.Edges() {
		e.ID = 0
		e.Src, e.Dst = perm[e.Src], perm[e.Dst]
		_, err := Y.AddEdge(e)
		require.NoError(t, err)
	}
	return Y
}

func shuffledPerm(X *pattern.Pattern, rng *rand.Rand) map[pattern.VtxID]pattern.VtxID {
	vtx := X.Vertices()
	ids := rng.Perm(len(vtx))
	perm := make(map[pattern.VtxID]pattern.VtxID, len(vtx))
	for i, v := range vtx {
		perm[v.ID] = pattern.VtxID(100 + ids[i])
	}
	return perm
}

var canonSamples = []string{
	"(1)",
	"(1:4)-[:2]->(2:5)",
	"(1)-[]-(2)-[]-(3)-[]-(1)",
	"(1:1)-[:2]->(2:1)-[:2]->(3:1)-[:2]->(1)",
	"(1)-[]-(2), (1)-[]-(3), (1)-[]-(4), (1)-[]-(5), (2)-[]-(3), (2)-[]-(4), (2)-[]-(5), (3)-[]-(4), (3)-[]-(5), (4)-[]-(5)",
	"(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)-[]-(6)-[]-(1)",
	"(1:2)-[:1]->(2:3)<-[:1]-(3:2), (2)-[:8|9]-(4:5), (4)-[]->(4)",
	"(1)-[:3]->(2), (1)-[:3]->(2), (2)-[:4]->(1)",
	"(1)-[]-(2)-[]-(3)-[]-(4)-[]-(1), (5)-[]-(6)-[]-(7)-[]-(8)-[]-(5), (1)-[]-(5), (2)-[]-(6), (3)-[]-(7), (4)-[]-(8)",
}

func TestCanonicalCodeIgnoresLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for _, expr := range canonSamples {
		X := pattern.MustParse(expr)
		code, exact := X.CanonicalCode()
		require.True(t, exact, expr)

		for trial := 0; trial < 5; trial++ {
			Y := relabel(t, X, shuffledPerm(X, rng))
			codeY, exactY := Y.CanonicalCode()
			require.True(t, exactY)
			require.True(t, bytes.Equal(code, codeY), "%s relabeled as %s", X, Y)
			require.Equal(t, X.Fingerprint(), Y.Fingerprint())
			require.True(t, X.IsIsomorphicTo(Y))
		}
	}
}

func TestCanonicalOrderMapsToCanonicalOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, expr := range canonSamples {
		X := pattern.MustParse(expr)
		Y := relabel(t, X, shuffledPerm(X, rng))

		// Matching canonical orders give an isomorphism: every edge of X maps onto an edge of Y
		toY := make(map[pattern.VtxID]pattern.VtxID)
		for i := 0; i < X.VertexCount(); i++ {
			vx, _ := X.VertexByOrder(i)
			vy, _ := Y.VertexByOrder(i)
			toY[vx] = vy
		}
		Z := relabel(t, X, toY)
		codeY, _ := Y.CanonicalCode()
		codeZ, _ := Z.CanonicalCode()
		require.Equal(t, codeY, codeZ)
		require.Equal(t, edgeMultiset(Y), edgeMultiset(Z), expr)
	}
}

func edgeMultiset(X *pattern.Pattern) map[string]int {
	ms := make(map[string]int)
	for _, e := range X.Edges() {
		a, b := e.Src, e.Dst
		if !e.Directed && a > b {
			a, b = b, a
		}
		ms[fmt.Sprintf("%d %d %v %v", a, b, e.Directed, e.Types)]++
	}
	return ms
}

func TestNonIsomorphic(t *testing.T) {
	pairs := [][2]string{
		{"(1)-[]->(2)-[]->(3)", "(1)-[]->(2)<-[]-(3)"},
		{"(1)-[]-(2)-[]-(3)", "(1)-[]->(2)-[]-(3)"},
		{"(1:1)-[]-(2)", "(1:2)-[]-(2)"},
		{"(1)-[:1]-(2)", "(1)-[:1|2]-(2)"},
		{"(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)-[]-(6)-[]-(1)", "(1)-[]-(2)-[]-(3)-[]-(1), (4)-[]-(5)-[]-(6)-[]-(4)"},
		{"(1)-[]-(2), (1)-[]-(2)", "(1)-[]-(2), (2)-[]-(2)"},
	}
	for _, pair := range pairs {
		X, Y := pattern.MustParse(pair[0]), pattern.MustParse(pair[1])
		require.False(t, X.IsIsomorphicTo(Y), "%s vs %s", X, Y)
		require.False(t, Y.IsIsomorphicTo(X))
		codeX, _ := X.CanonicalCode()
		codeY, _ := Y.CanonicalCode()
		require.NotEqual(t, codeX, codeY)
	}
}

func TestIsomorphicReversedArc(t *testing.T) {
	X := pattern.MustParse("(1:3)-[:5]->(2:4)")
	Y := pattern.MustParse("(7:4)<-[:5]-(9:3)")
	require.True(t, X.IsIsomorphicTo(Y))
}

func TestFromCode(t *testing.T) {
	for _, expr := range canonSamples {
		X := pattern.MustParse(expr)
		code, _ := X.CanonicalCode()

		Y, err := pattern.FromCode(code)
		require.NoError(t, err)
		require.True(t, X.IsIsomorphicTo(Y))
		codeY, _ := Y.CanonicalCode()
		require.Equal(t, code, codeY)
	}

	code, _ := pattern.MustParse("(1)-[]-(2)").CanonicalCode()
	_, err := pattern.FromCode(code[:len(code)-1])
	require.Error(t, err)
	_, err = pattern.FromCode(append(code, 0))
	require.Error(t, err)
}

func TestFrozen(t *testing.T) {
	X := pattern.MustParse("(1)-[]->(2)-[]->(3)")
	F := pattern.Freeze(X)

	_, err := X.RemoveVertex(3)
	require.NoError(t, err)
	require.Equal(t, 3, F.VertexCount())
	require.True(t, F.ContainsVertex(3))

	Y := F.Thaw()
	require.NotEqual(t, F.UID(), Y.UID())
	require.True(t, F.IsIsomorphicTo(pattern.Freeze(Y)))
	for i := 0; i < F.VertexCount(); i++ {
		v, ok := F.VertexByOrder(i)
		require.True(t, ok)
		ord, _ := F.Order(v)
		require.Equal(t, i, ord)
	}
}

func TestFrozenCopiesTypes(t *testing.T) {
	F := pattern.Freeze(pattern.MustParse("(1:4)-[:2]->(2:5)"))

	vtx := F.Vertices()
	vtx[0].Types[0] = 9
	edges := F.Edges()
	edges[0].Types[0] = 9

	require.Equal(t, pattern.TypeSet{4}, F.Vertices()[0].Types)
	require.Equal(t, pattern.TypeSet{2}, F.Edges()[0].Types)
	Y := F.Thaw()
	v, _ := Y.Vertex(1)
	require.Equal(t, pattern.TypeSet{4}, v.Types)
	require.Equal(t, pattern.TypeSet{2}, Y.Edges()[0].Types)
}

// disjointCycles returns the expression of k disjoint undirected cycles, each of length n.
func disjointCycles(k, n int) string {
	var b strings.Builder
	for c := 0; c < k; c++ {
		if c > 0 {
			b.WriteString(", ")
		}
		first := c*n + 1
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "(%d)-[]-", first+i)
		}
		fmt.Fprintf(&b, "(%d)", first)
	}
	return b.String()
}

func TestInexactCanonicalCode(t *testing.T) {
	// 5-cycles have 10 automorphisms each, so the search for 3 of them runs past MaxCanonLeaves
	X := pattern.MustParse(disjointCycles(3, 5))
	require.Equal(t, 15, X.VertexCount())
	require.Equal(t, 15, X.EdgeCount())
	_, exact := X.CanonicalCode()
	require.False(t, exact)

	_, exact = pattern.MustParse(disjointCycles(2, 5)).CanonicalCode()
	require.True(t, exact)

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 4; i++ {
		Y := relabel(t, X, shuffledPerm(X, rng))
		require.True(t, X.IsIsomorphicTo(Y))
		require.True(t, Y.IsIsomorphicTo(X))
		require.Equal(t, X.Fingerprint(), Y.Fingerprint())
	}

	// Same vertex and edge counts and the same degrees, yet not isomorphic
	Z := pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)-[]-(1), " +
		"(6)-[]-(7)-[]-(8)-[]-(9)-[]-(10)-[]-(11)-[]-(12)-[]-(13)-[]-(14)-[]-(15)-[]-(6)")
	require.False(t, X.IsIsomorphicTo(Z))
	require.False(t, Z.IsIsomorphicTo(X))

	W := X.Clone()
	_, err := W.AddEdge(pattern.Edge{Src: 1, Dst: 6})
	require.NoError(t, err)
	require.False(t, X.IsIsomorphicTo(W))

	// Same counts as X, but an edge typed differently
	V := X.Clone()
	_, err = V.RemoveVertex(15)
	require.NoError(t, err)
	require.NoError(t, V.AddVertex(15))
	_, err = V.AddEdge(pattern.Edge{Src: 14, Dst: 15})
	require.NoError(t, err)
	_, err = V.AddEdge(pattern.Edge{Src: 15, Dst: 11, Types: pattern.TypeSet{3}})
	require.NoError(t, err)
	require.Equal(t, X.EdgeCount(), V.EdgeCount())
	require.False(t, X.IsIsomorphicTo(V))
}
