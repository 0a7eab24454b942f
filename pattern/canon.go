package pattern

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// canonState is the derived canonical labeling of a Pattern.
//
// Vertices are first partitioned by colour refinement (seeded by candidate types and directed degree), then the
// remaining ties are resolved by individualising each member of the first non-singleton cell in turn, keeping the
// ordering that yields the lexicographically least code.  Vertices that can be swapped by an automorphism ("twins")
// lead to identical subtrees, so only one of each twin class is individualised.
type canonState struct {
	n         int
	pairKey   [][]string // pairKey[a][b]: the multiset of edges between a and b, as seen from a
	order     []int32    // canonical order => vertex index
	rank      []int32    // vertex index => canonical order
	code      []byte
	leaves    int
	truncated bool
	scratch   []byte
	keys      []string
}

func (cs *canonState) assign(X *Pattern) {
	Nv := len(X.vtx)
	cs.n = Nv
	cs.leaves = 0
	cs.truncated = false
	cs.code = cs.code[:0]
	cs.order = cs.order[:0]
	if cap(cs.rank) < Nv {
		cs.rank = make([]int32, Nv)
	}
	cs.rank = cs.rank[:Nv]
	if cap(cs.keys) < Nv {
		cs.keys = make([]string, Nv)
	}
	cs.keys = cs.keys[:Nv]

	cs.buildPairKeys(X)
	colors := cs.initialColors(X)
	numColors := cs.refine(colors)
	cs.search(X, colors, numColors)

	for i, vi := range cs.order {
		cs.rank[vi] = int32(i)
	}
}

// exact reports whether the search visited every distinct ordering, making the code a true canonical form.
func (cs *canonState) exact() bool {
	return !cs.truncated
}

func (cs *canonState) buildPairKeys(X *Pattern) {
	Nv := cs.n
	cs.pairKey = make([][]string, Nv)
	for a := range cs.pairKey {
		cs.pairKey[a] = make([]string, Nv)
	}

	arcs := make(map[[2]int32][]string)
	for ei := range X.edges {
		e := &X.edges[ei]
		a := X.vtxIdx[e.Src]
		b := X.vtxIdx[e.Dst]
		arcs[[2]int32{a, b}] = append(arcs[[2]int32{a, b}], string(e.appendArcKey(nil, e.Src)))
		if a != b {
			arcs[[2]int32{b, a}] = append(arcs[[2]int32{b, a}], string(e.appendArcKey(nil, e.Dst)))
		}
	}

	// Arc keys are self-delimiting, so a sorted concatenation is an unambiguous multiset key
	for ab, keys := range arcs {
		sort.Strings(keys)
		n := 0
		for _, k := range keys {
			n += len(k)
		}
		buf := make([]byte, 0, n)
		for _, k := range keys {
			buf = append(buf, k...)
		}
		cs.pairKey[ab[0]][ab[1]] = string(buf)
	}
}

func (cs *canonState) initialColors(X *Pattern) []int32 {
	for a, v := range X.vtx {
		var deg [3]uint32
		for _, ei := range X.adj[a] {
			deg[X.edges[ei].DirFrom(v.ID)]++
		}
		buf := v.Types.AppendTo(cs.scratch[:0])
		for _, d := range deg {
			buf = binary.BigEndian.AppendUint32(buf, d)
		}
		cs.scratch = buf
		cs.keys[a] = string(buf)
	}
	colors := make([]int32, cs.n)
	rankKeys(cs.keys, colors)
	return colors
}

// refine splits colour classes until the partition is equitable and returns the number of colours.
// Every key starts with the vertex's current colour (big endian), so the relative order of existing cells is kept.
func (cs *canonState) refine(colors []int32) int {
	numColors := countColors(colors)
	for {
		for a := range colors {
			cs.keys[a] = cs.neighborhoodKey(a, colors)
		}
		next := rankKeys(cs.keys, colors)
		if next == numColors {
			return numColors
		}
		numColors = next
	}
}

func (cs *canonState) neighborhoodKey(a int, colors []int32) string {
	row := cs.pairKey[a]
	var items []string
	for b, pk := range row {
		if len(pk) == 0 {
			continue
		}
		item := binary.BigEndian.AppendUint32(make([]byte, 0, 4+len(pk)), uint32(colors[b]))
		items = append(items, string(append(item, pk...)))
	}
	sort.Strings(items)

	buf := binary.BigEndian.AppendUint32(cs.scratch[:0], uint32(colors[a]))
	for _, item := range items {
		buf = append(buf, item...)
	}
	cs.scratch = buf
	return string(buf)
}

// rankKeys assigns colors[i] the rank of keys[i] among the distinct keys and returns the number of distinct keys.
func rankKeys(keys []string, colors []int32) int {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	D := 0
	for L := range sorted {
		if L == 0 || sorted[L] != sorted[D-1] {
			sorted[D] = sorted[L]
			D++
		}
	}
	sorted = sorted[:D]
	for i, k := range keys {
		colors[i] = int32(sort.SearchStrings(sorted, k))
	}
	return D
}

func countColors(colors []int32) int {
	seen := make(map[int32]struct{}, len(colors))
	for _, c := range colors {
		seen[c] = struct{}{}
	}
	return len(seen)
}

func (cs *canonState) search(X *Pattern, colors []int32, numColors int) {
	if numColors == cs.n {
		cs.leaf(X, colors)
		return
	}

	// Individualise within the first (lowest colour) non-singleton cell
	cellSz := make([]int, cs.n)
	for _, c := range colors {
		cellSz[c]++
	}
	cellColor := int32(0)
	for cellSz[cellColor] < 2 {
		cellColor++
	}
	var cell []int32
	for a, c := range colors {
		if c == cellColor {
			cell = append(cell, int32(a))
		}
	}

	tried := make([]int32, 0, len(cell))
	for _, u := range cell {
		if cs.hasTwin(X, u, tried) {
			continue
		}
		if cs.leaves >= MaxCanonLeaves {
			cs.truncated = true
			return
		}
		tried = append(tried, u)

		next := make([]int32, len(colors))
		for a, c := range colors {
			if c > cellColor {
				c++
			}
			next[a] = c
		}
		for _, w := range cell {
			if w != u {
				next[w] = cellColor + 1
			}
		}
		cs.search(X, next, cs.refine(next))
	}
}

// hasTwin returns true if u can be swapped with one of the given vertices by an automorphism of X.
func (cs *canonState) hasTwin(X *Pattern, u int32, others []int32) bool {
	for _, w := range others {
		if cs.isTwin(X, u, w) {
			return true
		}
	}
	return false
}

func (cs *canonState) isTwin(X *Pattern, u, w int32) bool {
	if !X.vtx[u].Types.Equal(X.vtx[w].Types) {
		return false
	}
	pu, pw := cs.pairKey[u], cs.pairKey[w]
	if pu[u] != pw[w] || pu[w] != pw[u] {
		return false
	}
	for x := range pu {
		if int32(x) == u || int32(x) == w {
			continue
		}
		if pu[x] != pw[x] {
			return false
		}
	}
	return true
}

func (cs *canonState) leaf(X *Pattern, colors []int32) {
	cs.leaves++

	order := make([]int32, cs.n)
	for a, c := range colors {
		order[c] = int32(a)
	}
	code := appendCode(cs.scratch[:0], X, order)
	cs.scratch = code

	if cs.leaves == 1 || bytes.Compare(code, cs.code) < 0 {
		cs.code = append(cs.code[:0], code...)
		cs.order = append(cs.order[:0], order...)
	}
}
