package join_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/join"
	"github.com/2x3systems/gplan/pattern"
)

// requireDecompositionValid checks the structural properties every returned decomposition must have.
func requireDecompositionValid(t *testing.T, X *pattern.Pattern, jd *gplan.JoinDecomposition) {
	t.Helper()
	probe, build := jd.Probe, jd.Build
	require.LessOrEqual(t, probe.VertexCount(), build.VertexCount())
	require.True(t, build.IsConnected())

	// Every vertex is probe-only, build-only, or joint, exactly once
	joints := jd.JointIDs()
	seen := make(map[pattern.VtxID]int)
	for _, v := range probe.Vertices() {
		seen[v.ID]++
	}
	for _, v := range build.Vertices() {
		if !joints.Contains(v.ID) {
			seen[v.ID]++
		}
	}
	require.Len(t, seen, X.VertexCount())
	for v, n := range seen {
		require.True(t, X.ContainsVertex(v))
		require.Equal(t, 1, n, "vertex %d", v)
	}

	// Joints are recorded in each side's canonical order
	require.Len(t, jd.Joints, len(joints))
	require.NotZero(t, len(joints))
	require.Less(t, len(joints), probe.VertexCount())
	require.Less(t, len(joints), build.VertexCount())
	for _, jv := range jd.Joints {
		pv, ok := probe.VertexByOrder(jv.ProbeOrder)
		require.True(t, ok)
		bv, ok := build.VertexByOrder(jv.BuildOrder)
		require.True(t, ok)
		require.Equal(t, pv, bv)
	}

	// Each side maps back into the target by vertex identity
	for _, side := range []struct {
		p *pattern.Pattern
		m gplan.OrderMap
	}{{probe, jd.ProbeMap}, {build, jd.BuildMap}} {
		require.Len(t, side.m, side.p.VertexCount())
		require.True(t, side.m.IsInjective(X.VertexCount()))
		for i, ti := range side.m {
			v, _ := side.p.VertexByOrder(i)
			tv, _ := X.VertexByOrder(ti)
			require.Equal(t, v, tv)
		}
	}

	// Every target edge lies on exactly one side
	require.Equal(t, X.EdgeCount(), probe.EdgeCount()+build.EdgeCount())
	for _, e := range X.Edges() {
		require.NotEqual(t, probe.ContainsEdge(e.ID), build.ContainsEdge(e.ID), "edge %v", e)
	}
}

func requireNoIsomorphicPairs(t *testing.T, decomps []*gplan.JoinDecomposition) {
	t.Helper()
	for i, a := range decomps {
		for _, b := range decomps[i+1:] {
			require.False(t, a.Probe.IsIsomorphicTo(b.Probe) && a.Build.IsIsomorphicTo(b.Build),
				"%v | %v  ~  %v | %v", a.Probe, a.Build, b.Probe, b.Build)
		}
	}
}

func TestPathDecomposition(t *testing.T) {
	X := pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(4)")

	seeds, err := join.Seeds(X)
	require.NoError(t, err)
	require.Len(t, seeds, 4)

	en := join.Enumerator{MinPatternSize: 2}
	decomps, err := en.Enumerate(X)
	require.NoError(t, err)
	require.NotEmpty(t, decomps)
	for _, jd := range decomps {
		require.Greater(t, jd.Probe.VertexCount(), 1, "seeds are never returned")
		requireDecompositionValid(t, X, jd)
	}
	requireNoIsomorphicPairs(t, decomps)

	// An end edge against the remaining three-vertex path is the only split up to isomorphism
	require.Len(t, decomps, 1)
	require.True(t, decomps[0].Probe.IsIsomorphicTo(pattern.MustParse("(1)-[]-(2)")))
	require.True(t, decomps[0].Build.IsIsomorphicTo(pattern.MustParse("(1)-[]-(2)-[]-(3)")))
}

func TestBelowMinSize(t *testing.T) {
	en := join.Enumerator{MinPatternSize: 4}
	for _, expr := range []string{
		"(1)-[]-(2)-[]-(3)",
		"(1)-[]-(2), (3)",
		"(1)",
	} {
		decomps, err := en.Enumerate(pattern.MustParse(expr))
		require.NoError(t, err)
		require.Empty(t, decomps, expr)
	}

	decomps, err := en.Enumerate(pattern.New())
	require.NoError(t, err)
	require.Empty(t, decomps)
}

func TestFrontierInvariant(t *testing.T) {
	// Diamond: 2 and 3 share an edge and are both adjacent to 1 and 4
	X := pattern.MustParse("(1)-[]-(2), (1)-[]-(3), (2)-[]-(3), (2)-[]-(4), (3)-[]-(4)")

	seeds, err := join.Seeds(X)
	require.NoError(t, err)

	var seed1 *gplan.JoinDecomposition
	for _, seed := range seeds {
		if seed.Probe.ContainsVertex(1) {
			seed1 = seed
		}
	}
	require.NotNil(t, seed1)

	jd, err := join.Grow(X, seed1, 1)
	require.NoError(t, err)
	require.NotNil(t, jd)
	require.Equal(t, pattern.VtxSet{2, 3}, jd.JointIDs())
	require.Equal(t, 3, jd.Probe.VertexCount())
	require.Equal(t, 3, jd.Build.VertexCount())
	requireDecompositionValid(t, X, jd)

	// Joints 2 and 3 are adjacent on the build side, so neither can be absorbed
	for _, j := range jd.JointIDs() {
		next, err := join.Grow(X, jd, j)
		require.NoError(t, err)
		require.Nil(t, next, "growth through %d", j)
	}

	_, err = join.Grow(X, jd, 1)
	require.Error(t, err, "1 is probe-only")
}

func TestDisconnectedBuildRejected(t *testing.T) {
	X := pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)")
	seeds, err := join.Seeds(X)
	require.NoError(t, err)
	for _, seed := range seeds {
		j := seed.JointIDs()[0]
		next, err := join.Grow(X, seed, j)
		require.NoError(t, err)
		if j == 1 || j == 5 {
			require.NotNil(t, next)
			requireDecompositionValid(t, X, next)
		} else {
			require.Nil(t, next, "removing %d splits the path", j)
		}
	}
}

func TestIdempotence(t *testing.T) {
	for _, expr := range []string{
		"(1)-[]-(2)-[]-(3)-[]-(4)-[]-(5)-[]-(6)-[]-(1)",
		"(1)-[]-(2)-[]-(3), (4)-[]-(5)-[]-(6), (1)-[]-(4), (2)-[]-(5), (3)-[]-(6)",
		"(1:1)-[:1]->(2:2)-[:2]->(3:3)-[:3]->(4:1)-[:1]->(5:2), (1)-[:4]-(3), (3)-[:4]-(5)",
		"(1)-[]-(2), (1)-[]-(3), (1)-[]-(4), (1)-[]-(5), (2)-[]-(3), (3)-[]-(4), (4)-[]-(5)",
	} {
		X := pattern.MustParse(expr)
		en := join.Enumerator{MinPatternSize: 2}

		first, err := en.Enumerate(X)
		require.NoError(t, err)
		second, err := en.Enumerate(X)
		require.NoError(t, err)

		require.NotEmpty(t, first, expr)
		require.Len(t, second, len(first))
		requireNoIsomorphicPairs(t, first)
		for _, jd := range first {
			requireDecompositionValid(t, X, jd)
		}

		for _, a := range first {
			found := false
			for _, b := range second {
				if a.Probe.IsIsomorphicTo(b.Probe) && a.Build.IsIsomorphicTo(b.Build) {
					found = true
					break
				}
			}
			require.True(t, found, "%v | %v", a.Probe, a.Build)
		}
	}
}

func TestInputUntouched(t *testing.T) {
	X := pattern.MustParse("(1)-[]-(2)-[]-(3)-[]-(4)-[]-(1)")
	before := X.String()
	en := join.Enumerator{MinPatternSize: 2}
	_, err := en.Enumerate(X)
	require.NoError(t, err)
	require.Equal(t, before, X.String())
}
