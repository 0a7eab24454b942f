package pattern

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Code format (under a given vertex order):
//
//	uvarint(NumVerts)
//	<0..NumVerts-1>
//	    TypeSet of the vertex at that order
//	uvarint(NumEdges)
//	<edges, sorted>
//	    uvarint(order A), uvarint(order B), byte(directed), TypeSet
//
// Undirected edges are written with A <= B; directed edges are written source first.
func appendCode(buf []byte, X *Pattern, order []int32) []byte {
	Nv := len(order)
	rank := make([]int32, Nv)
	for i, vi := range order {
		rank[vi] = int32(i)
	}

	buf = binary.AppendUvarint(buf, uint64(Nv))
	for _, vi := range order {
		buf = X.vtx[vi].Types.AppendTo(buf)
	}

	type codeEdge struct {
		a, b     int32
		directed bool
		types    TypeSet
	}
	edges := make([]codeEdge, len(X.edges))
	for i, e := range X.edges {
		ce := codeEdge{
			a:        rank[X.vtxIdx[e.Src]],
			b:        rank[X.vtxIdx[e.Dst]],
			directed: e.Directed,
			types:    e.Types,
		}
		if !ce.directed && ce.a > ce.b {
			ce.a, ce.b = ce.b, ce.a
		}
		edges[i] = ce
	}
	sort.Slice(edges, func(i, j int) bool {
		ei, ej := &edges[i], &edges[j]
		if ei.a != ej.a {
			return ei.a < ej.a
		}
		if ei.b != ej.b {
			return ei.b < ej.b
		}
		if ei.directed != ej.directed {
			return !ei.directed
		}
		return ei.types.Compare(ej.types) < 0
	})

	buf = binary.AppendUvarint(buf, uint64(len(edges)))
	for _, ce := range edges {
		buf = binary.AppendUvarint(buf, uint64(ce.a))
		buf = binary.AppendUvarint(buf, uint64(ce.b))
		if ce.directed {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = ce.types.AppendTo(buf)
	}
	return buf
}

// CanonicalCode returns the encoding of X under its canonical order.
// If exact is set, two Patterns have equal codes if and only if they are isomorphic.
func (X *Pattern) CanonicalCode() (code []byte, exact bool) {
	X.canonize()
	return append([]byte(nil), X.canon.code...), X.canon.exact()
}

// AppendCanonicalCode appends X's canonical code to the given buffer.
func (X *Pattern) AppendCanonicalCode(buf []byte) []byte {
	X.canonize()
	return append(buf, X.canon.code...)
}

// Fingerprint returns an isomorphism-invariant hash of X: isomorphic patterns always share a Fingerprint.
func (X *Pattern) Fingerprint() uint64 {
	X.canonize()

	h := xxhash.New()
	if X.canon.exact() {
		h.Write(X.canon.code)
		return h.Sum64()
	}

	// Without an exact code, fall back to the sorted multiset of vertex types and degrees
	keys := make([]string, len(X.vtx))
	for a, v := range X.vtx {
		keys[a] = string(binary.AppendUvarint(v.Types.AppendTo(nil), uint64(len(X.adj[a]))))
	}
	sort.Strings(keys)
	var buf [2 * binary.MaxVarintLen64]byte
	hdr := binary.AppendUvarint(buf[:0], uint64(len(X.vtx)))
	hdr = binary.AppendUvarint(hdr, uint64(len(X.edges)))
	h.Write(hdr)
	for _, k := range keys {
		h.WriteString(k)
	}
	return h.Sum64()
}

// FromCode reconstructs a Pattern from a code written by CanonicalCode().
// Each vertex is given the VtxID equal to its order in the code.
func FromCode(code []byte) (*Pattern, error) {
	rd := codeReader{buf: code}

	X := New()
	Nv := rd.uvarint()
	for i := uint64(0); i < Nv && rd.err == nil; i++ {
		X.vtx = append(X.vtx, Vertex{
			ID:    VtxID(i),
			Types: rd.typeSet(),
		})
	}
	X.onPatternChanged()

	Ne := rd.uvarint()
	for i := uint64(0); i < Ne && rd.err == nil; i++ {
		a := rd.uvarint()
		b := rd.uvarint()
		directed := rd.byte() != 0
		types := rd.typeSet()
		if rd.err != nil {
			break
		}
		if a >= Nv || b >= Nv {
			return nil, errors.Wrapf(ErrBadCode, "edge %d references vertex %d", i, max(a, b))
		}
		X.edges = append(X.edges, Edge{
			ID:       EdgeID(i + 1),
			Src:      VtxID(a),
			Dst:      VtxID(b),
			Types:    types,
			Directed: directed,
		})
	}
	if rd.err != nil {
		return nil, rd.err
	}
	if len(rd.buf) != 0 {
		return nil, errors.Wrap(ErrBadCode, "trailing bytes")
	}
	X.nextEdgeID = EdgeID(len(X.edges))
	X.onPatternChanged()
	return X, nil
}

type codeReader struct {
	buf []byte
	err error
}

func (rd *codeReader) uvarint() uint64 {
	if rd.err != nil {
		return 0
	}
	v, n := binary.Uvarint(rd.buf)
	if n <= 0 {
		rd.err = errors.Wrap(ErrBadCode, "truncated uvarint")
		return 0
	}
	rd.buf = rd.buf[n:]
	return v
}

func (rd *codeReader) varint() int64 {
	if rd.err != nil {
		return 0
	}
	v, n := binary.Varint(rd.buf)
	if n <= 0 {
		rd.err = errors.Wrap(ErrBadCode, "truncated varint")
		return 0
	}
	rd.buf = rd.buf[n:]
	return v
}

func (rd *codeReader) byte() byte {
	if rd.err != nil {
		return 0
	}
	if len(rd.buf) == 0 {
		rd.err = errors.Wrap(ErrBadCode, "truncated code")
		return 0
	}
	b := rd.buf[0]
	rd.buf = rd.buf[1:]
	return b
}

func (rd *codeReader) typeSet() TypeSet {
	N := rd.uvarint()
	if N == 0 || rd.err != nil {
		return nil
	}
	if N > uint64(len(rd.buf)) {
		rd.err = errors.Wrap(ErrBadCode, "bad type count")
		return nil
	}
	ts := make(TypeSet, 0, N)
	for i := uint64(0); i < N; i++ {
		ts = append(ts, TypeID(rd.varint()))
	}
	return ts
}
