package pattern

import (
	"bytes"
)

// IsIsomorphicTo returns true if X and Y are equal up to a relabeling of vertices:
// same structure, edge directions, and candidate vertex and edge types.
func (X *Pattern) IsIsomorphicTo(Y *Pattern) bool {
	if X == Y {
		return true
	}
	if len(X.vtx) != len(Y.vtx) || len(X.edges) != len(Y.edges) {
		return false
	}
	X.canonize()
	Y.canonize()
	if X.canon.exact() && Y.canon.exact() {
		return bytes.Equal(X.canon.code, Y.canon.code)
	}

	m := isoMatcher{
		X:      X,
		Y:      Y,
		fwd:    make([]int32, len(X.vtx)),
		mapped: make([]bool, len(Y.vtx)),
	}
	return m.match(0)
}

// isoMatcher is a backtracking matcher used when a canonical search was cut short.
// X's vertices are visited in canonical order so that neighbours tend to be mapped early.
type isoMatcher struct {
	X, Y   *Pattern
	fwd    []int32 // X vertex index => Y vertex index
	mapped []bool  // Y vertex index is already an image
}

func (m *isoMatcher) match(depth int) bool {
	if depth == len(m.fwd) {
		return true
	}
	a := m.X.canon.order[depth]
	for b := range m.Y.vtx {
		if m.mapped[b] || !m.compatible(a, int32(b), depth) {
			continue
		}
		m.fwd[a] = int32(b)
		m.mapped[b] = true
		if m.match(depth + 1) {
			return true
		}
		m.mapped[b] = false
	}
	return false
}

func (m *isoMatcher) compatible(a, b int32, depth int) bool {
	Xc, Yc := &m.X.canon, &m.Y.canon
	if !m.X.vtx[a].Types.Equal(m.Y.vtx[b].Types) {
		return false
	}
	if len(m.X.adj[a]) != len(m.Y.adj[b]) {
		return false
	}
	if Xc.pairKey[a][a] != Yc.pairKey[b][b] {
		return false
	}
	for _, prev := range Xc.order[:depth] {
		if Xc.pairKey[a][prev] != Yc.pairKey[b][m.fwd[prev]] {
			return false
		}
	}
	return true
}
