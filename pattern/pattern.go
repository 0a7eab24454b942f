package pattern

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Pattern is a small typed multigraph describing the shape of a subgraph to match.
//
// Vertices and edges live in flat per-pattern arrays addressed by index, with an adjacency index that is rebuilt
// whenever the membership changes.  Nothing is shared between two Patterns, so a Pattern behaves as a value:
// mutating one is never observable through another.
//
// The canonical order is derived state: any mutation marks it dirty and the next order read recomputes it.
type Pattern struct {
	uid        uint64
	vtx        []Vertex // sorted by ID
	edges      []Edge   // sorted by ID
	vtxIdx     map[VtxID]int32
	adj        [][]int32 // vertex index => indexes into edges
	nextEdgeID EdgeID

	dirty bool
	canon canonState
}

// VtxSet is a sorted set of vertex IDs.
type VtxSet []VtxID

func (vs VtxSet) Contains(v VtxID) bool {
	i := sort.Search(len(vs), func(i int) bool { return vs[i] >= v })
	return i < len(vs) && vs[i] == v
}

var patternSeq atomic.Uint64

// New returns an empty Pattern.
func New() *Pattern {
	X := &Pattern{
		uid: patternSeq.Add(1),
	}
	X.onPatternChanged()
	return X
}

// UID returns this Pattern's internal identity, unique to this instance and never shared by a clone.
func (X *Pattern) UID() uint64 {
	return X.uid
}

// Clone returns a fully independent copy of X with a fresh UID.
func (X *Pattern) Clone() *Pattern {
	Y := &Pattern{
		uid:        patternSeq.Add(1),
		vtx:        make([]Vertex, len(X.vtx)),
		edges:      make([]Edge, len(X.edges)),
		nextEdgeID: X.nextEdgeID,
	}
	for i, v := range X.vtx {
		Y.vtx[i] = Vertex{
			ID:    v.ID,
			Types: v.Types.Clone(),
		}
	}
	for i, e := range X.edges {
		e.Types = e.Types.Clone()
		Y.edges[i] = e
	}
	Y.onPatternChanged()
	return Y
}

func (X *Pattern) onPatternChanged() {
	X.reindex()

	// Reset derived state since the pattern changed
	X.dirty = true
}

func (X *Pattern) reindex() {
	Nv := len(X.vtx)
	if X.vtxIdx == nil {
		X.vtxIdx = make(map[VtxID]int32, Nv)
	} else {
		for k := range X.vtxIdx {
			delete(X.vtxIdx, k)
		}
	}
	for i, v := range X.vtx {
		X.vtxIdx[v.ID] = int32(i)
	}

	if cap(X.adj) >= Nv {
		X.adj = X.adj[:Nv]
	} else {
		X.adj = make([][]int32, Nv)
	}
	for i := range X.adj {
		X.adj[i] = X.adj[i][:0]
	}
	for ei := range X.edges {
		e := &X.edges[ei]
		a := X.vtxIdx[e.Src]
		b := X.vtxIdx[e.Dst]
		X.adj[a] = append(X.adj[a], int32(ei))
		if b != a {
			X.adj[b] = append(X.adj[b], int32(ei))
		}
	}
}

// AddVertex adds a vertex with the given candidate types.
func (X *Pattern) AddVertex(id VtxID, types ...TypeID) error {
	if _, exists := X.vtxIdx[id]; exists {
		return errors.Wrapf(ErrDuplicateVtx, "vertex %d", id)
	}
	i := sort.Search(len(X.vtx), func(i int) bool { return X.vtx[i].ID >= id })
	X.vtx = append(X.vtx, Vertex{})
	copy(X.vtx[i+1:], X.vtx[i:])
	X.vtx[i] = Vertex{
		ID:    id,
		Types: NewTypeSet(types...),
	}
	X.onPatternChanged()
	return nil
}

// AddEdge adds the given edge, assigning it an ID if e.ID is zero, and returns the edge's ID.
// Both endpoints must already be in X.
func (X *Pattern) AddEdge(e Edge) (EdgeID, error) {
	if !X.ContainsVertex(e.Src) {
		return 0, errors.Wrapf(ErrMissingVtx, "edge source %d", e.Src)
	}
	if !X.ContainsVertex(e.Dst) {
		return 0, errors.Wrapf(ErrMissingVtx, "edge destination %d", e.Dst)
	}
	if e.ID < 0 {
		return 0, errors.Wrapf(ErrBadEdge, "edge ID %d", e.ID)
	}
	if e.ID == 0 {
		e.ID = X.nextEdgeID + 1
	} else if X.ContainsEdge(e.ID) {
		return 0, errors.Wrapf(ErrDuplicateEdge, "edge %d", e.ID)
	}
	if e.ID > X.nextEdgeID {
		X.nextEdgeID = e.ID
	}
	e.Types = NewTypeSet(e.Types...)

	i := sort.Search(len(X.edges), func(i int) bool { return X.edges[i].ID >= e.ID })
	X.edges = append(X.edges, Edge{})
	copy(X.edges[i+1:], X.edges[i:])
	X.edges[i] = e

	X.onPatternChanged()
	return e.ID, nil
}

// RemoveVertex removes v and its incident edges and returns the connected components of what remains.
func (X *Pattern) RemoveVertex(v VtxID) ([]VtxSet, error) {
	vi, exists := X.vtxIdx[v]
	if !exists {
		return nil, errors.Wrapf(ErrMissingVtx, "vertex %d", v)
	}

	D := 0
	for _, e := range X.edges {
		if !e.Touches(v) {
			X.edges[D] = e
			D++
		}
	}
	X.edges = X.edges[:D]

	copy(X.vtx[vi:], X.vtx[vi+1:])
	X.vtx = X.vtx[:len(X.vtx)-1]

	X.onPatternChanged()
	return X.Components(), nil
}

// Components returns the connected components of X, each sorted by VtxID, in order of their lowest VtxID.
func (X *Pattern) Components() []VtxSet {

	// Start by assuming each vertex is its own component.
	// Each time we connect two vertices with an edge, propagate their connectedness.
	Nv := len(X.vtx)
	part := make([]int32, Nv)
	for i := range part {
		part[i] = int32(i)
	}
	for _, e := range X.edges {
		lo := part[X.vtxIdx[e.Src]]
		hi := part[X.vtxIdx[e.Dst]]
		if lo == hi {
			continue
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		for i, pi := range part {
			if pi == hi {
				part[i] = lo
			}
		}
	}

	var comps []VtxSet
	compOf := make(map[int32]int, Nv)
	for i, pi := range part {
		ci, exists := compOf[pi]
		if !exists {
			ci = len(comps)
			compOf[pi] = ci
			comps = append(comps, nil)
		}
		comps[ci] = append(comps[ci], X.vtx[i].ID)
	}
	return comps
}

// IsConnected returns true if X has exactly one connected component.
func (X *Pattern) IsConnected() bool {
	return len(X.vtx) > 0 && len(X.Components()) == 1
}

func (X *Pattern) VertexCount() int {
	return len(X.vtx)
}

func (X *Pattern) EdgeCount() int {
	return len(X.edges)
}

// Vertices returns X's vertices sorted by ID.  The slice should be considered read-only.
func (X *Pattern) Vertices() []Vertex {
	return X.vtx
}

// Edges returns X's edges sorted by ID.  The slice should be considered read-only.
func (X *Pattern) Edges() []Edge {
	return X.edges
}

func (X *Pattern) Vertex(v VtxID) (Vertex, bool) {
	vi, exists := X.vtxIdx[v]
	if !exists {
		return Vertex{}, false
	}
	return X.vtx[vi], true
}

func (X *Pattern) ContainsVertex(v VtxID) bool {
	_, exists := X.vtxIdx[v]
	return exists
}

func (X *Pattern) ContainsEdge(id EdgeID) bool {
	i := sort.Search(len(X.edges), func(i int) bool { return X.edges[i].ID >= id })
	return i < len(X.edges) && X.edges[i].ID == id
}

// Degree returns the number of edges incident to v (a loop counts once).
func (X *Pattern) Degree(v VtxID) int {
	vi, exists := X.vtxIdx[v]
	if !exists {
		return 0
	}
	return len(X.adj[vi])
}

// EdgesOf returns a copy of the edges incident to v, in ID order.
func (X *Pattern) EdgesOf(v VtxID) []Edge {
	vi, exists := X.vtxIdx[v]
	if !exists {
		return nil
	}
	edges := make([]Edge, len(X.adj[vi]))
	for i, ei := range X.adj[vi] {
		edges[i] = X.edges[ei]
	}
	return edges
}

// Neighbors returns the distinct vertices adjacent to v (excluding v itself), sorted by ID.
func (X *Pattern) Neighbors(v VtxID) VtxSet {
	vi, exists := X.vtxIdx[v]
	if !exists {
		return nil
	}
	var nbrs VtxSet
	for _, ei := range X.adj[vi] {
		if w := X.edges[ei].Other(v); w != v && !nbrs.Contains(w) {
			i := sort.Search(len(nbrs), func(i int) bool { return nbrs[i] >= w })
			nbrs = append(nbrs, 0)
			copy(nbrs[i+1:], nbrs[i:])
			nbrs[i] = w
		}
	}
	return nbrs
}

// Reorder recomputes X's canonical order over its current membership.
func (X *Pattern) Reorder() {
	X.dirty = true
	X.canonize()
}

func (X *Pattern) canonize() {
	if X.dirty {
		X.canon.assign(X)
		X.dirty = false
	}
}

// Order returns the canonical order of v, in [0, VertexCount()).
func (X *Pattern) Order(v VtxID) (int, bool) {
	vi, exists := X.vtxIdx[v]
	if !exists {
		return -1, false
	}
	X.canonize()
	return int(X.canon.rank[vi]), true
}

// VertexByOrder returns the vertex having the given canonical order.
func (X *Pattern) VertexByOrder(order int) (VtxID, bool) {
	if order < 0 || order >= len(X.vtx) {
		return 0, false
	}
	X.canonize()
	return X.vtx[X.canon.order[order]].ID, true
}

// String returns X in pattern expression form, e.g. "(1:7)-[:3]->(2:8), (2)-[:4]-(3:7)"
func (X *Pattern) String() string {
	b := strings.Builder{}
	X.WriteExpr(&b)
	return b.String()
}

// WriteExpr writes X in pattern expression form.  Vertex types are written on the first mention of each vertex.
func (X *Pattern) WriteExpr(b *strings.Builder) {
	mentioned := make(map[VtxID]struct{}, len(X.vtx))
	vtxStr := func(v VtxID) string {
		if _, seen := mentioned[v]; seen {
			return Vertex{ID: v}.String()
		}
		mentioned[v] = struct{}{}
		vtx, _ := X.Vertex(v)
		return vtx.String()
	}

	needsBreak := false
	for ei := range X.edges {
		if needsBreak {
			b.WriteString(", ")
		}
		X.edges[ei].writeExpr(b, vtxStr)
		needsBreak = true
	}

	// Write out isolated verts
	for _, v := range X.vtx {
		if _, seen := mentioned[v.ID]; !seen {
			if needsBreak {
				b.WriteString(", ")
			}
			b.WriteString(vtxStr(v.ID))
			needsBreak = true
		}
	}
}
