package pattern

import (
	"strings"
)

// Edge connects two pattern vertices.  Src and Dst are only meaningful as a direction when Directed is set.
type Edge struct {
	ID       EdgeID
	Src      VtxID
	Dst      VtxID
	Types    TypeSet
	Directed bool
}

// Other returns the endpoint of this edge that is not v (or v itself for a loop).
func (e *Edge) Other(v VtxID) VtxID {
	if e.Src == v {
		return e.Dst
	}
	return e.Src
}

func (e *Edge) IsLoop() bool {
	return e.Src == e.Dst
}

func (e *Edge) Touches(v VtxID) bool {
	return e.Src == v || e.Dst == v
}

// DirFrom returns the direction of this edge as seen from endpoint v.
// A directed loop is reported as DirOut.
func (e *Edge) DirFrom(v VtxID) Direction {
	switch {
	case !e.Directed:
		return DirBoth
	case e.Src == v:
		return DirOut
	default:
		return DirIn
	}
}

func (e *Edge) appendArcKey(buf []byte, from VtxID) []byte {
	buf = append(buf, byte(e.DirFrom(from)))
	return e.Types.AppendTo(buf)
}

// String writes the edge in pattern expression form, e.g. "(1)-[:3]->(2)"
func (e Edge) String() string {
	b := strings.Builder{}
	e.writeExpr(&b, nil)
	return b.String()
}

func (e *Edge) writeExpr(b *strings.Builder, vtxStr func(VtxID) string) {
	if vtxStr == nil {
		vtxStr = func(v VtxID) string { return Vertex{ID: v}.String() }
	}
	b.WriteString(vtxStr(e.Src))
	b.WriteString("-[")
	if !e.Types.IsAny() {
		b.WriteByte(':')
		b.WriteString(e.Types.String())
	}
	if e.Directed {
		b.WriteString("]->")
	} else {
		b.WriteString("]-")
	}
	b.WriteString(vtxStr(e.Dst))
}
