package pattern

// Frozen is an immutable Pattern, as handed to the surrounding plan framework.
//
// A Frozen owns a private, already canonized clone, so its reads never mutate anything and it is safe to share.
type Frozen struct {
	p *Pattern
}

// Freeze returns an immutable snapshot of X.  Later changes to X are not observable through the snapshot.
func Freeze(X *Pattern) Frozen {
	Y := X.Clone()
	Y.canonize()
	return Frozen{p: Y}
}

func (F Frozen) IsNil() bool                       { return F.p == nil }
func (F Frozen) UID() uint64                       { return F.p.UID() }
func (F Frozen) VertexCount() int                  { return F.p.VertexCount() }
func (F Frozen) EdgeCount() int                    { return F.p.EdgeCount() }
func (F Frozen) ContainsVertex(v VtxID) bool       { return F.p.ContainsVertex(v) }
func (F Frozen) Order(v VtxID) (int, bool)         { return F.p.Order(v) }
func (F Frozen) VertexByOrder(i int) (VtxID, bool) { return F.p.VertexByOrder(i) }
func (F Frozen) Fingerprint() uint64               { return F.p.Fingerprint() }
func (F Frozen) String() string                    { return F.p.String() }

// Vertices returns a copy of the vertices; each Types is cloned so the frozen pattern is never aliased.
func (F Frozen) Vertices() []Vertex {
	vtx := append([]Vertex(nil), F.p.Vertices()...)
	for i := range vtx {
		vtx[i].Types = vtx[i].Types.Clone()
	}
	return vtx
}

// Edges returns a copy of the edges, cloning each Types like Vertices.
func (F Frozen) Edges() []Edge {
	edges := append([]Edge(nil), F.p.Edges()...)
	for i := range edges {
		edges[i].Types = edges[i].Types.Clone()
	}
	return edges
}

func (F Frozen) CanonicalCode() ([]byte, bool) {
	return F.p.CanonicalCode()
}

func (F Frozen) IsIsomorphicTo(other Frozen) bool {
	return F.p.IsIsomorphicTo(other.p)
}

// Thaw returns a mutable copy of this snapshot.
func (F Frozen) Thaw() *Pattern {
	return F.p.Clone()
}
