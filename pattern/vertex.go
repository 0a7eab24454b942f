package pattern

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"
)

// TypeSet is a sorted set of candidate type IDs.  An empty TypeSet matches any type.
type TypeSet []TypeID

// NewTypeSet returns the sorted, de-duplicated set of the given IDs.
func NewTypeSet(ids ...TypeID) TypeSet {
	if len(ids) == 0 {
		return nil
	}
	ts := make(TypeSet, len(ids))
	copy(ts, ids)
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	// Drop dupes in place
	D := 1
	for L := 1; L < len(ts); L++ {
		if ts[L] != ts[D-1] {
			ts[D] = ts[L]
			D++
		}
	}
	return ts[:D]
}

func (ts TypeSet) Len() int { return len(ts) }

func (ts TypeSet) IsAny() bool { return len(ts) == 0 }

func (ts TypeSet) Contains(id TypeID) bool {
	i := sort.Search(len(ts), func(i int) bool { return ts[i] >= id })
	return i < len(ts) && ts[i] == id
}

// Compare orders TypeSets by length then element-wise.
func (ts TypeSet) Compare(other TypeSet) int {
	if d := len(ts) - len(other); d != 0 {
		return d
	}
	for i, ti := range ts {
		if ti != other[i] {
			if ti < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (ts TypeSet) Equal(other TypeSet) bool {
	return ts.Compare(other) == 0
}

func (ts TypeSet) Clone() TypeSet {
	if ts == nil {
		return nil
	}
	return append(TypeSet(nil), ts...)
}

// AppendTo appends a self-delimiting binary encoding of this TypeSet.
func (ts TypeSet) AppendTo(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(ts)))
	for _, ti := range ts {
		buf = binary.AppendVarint(buf, int64(ti))
	}
	return buf
}

// String returns the "|" separated list of IDs, or "" for the any-type set.
func (ts TypeSet) String() string {
	b := strings.Builder{}
	for i, ti := range ts {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatInt(int64(ti), 10))
	}
	return b.String()
}

// Vertex is a pattern vertex and its candidate vertex types.
type Vertex struct {
	ID    VtxID
	Types TypeSet
}

func (v Vertex) String() string {
	if v.Types.IsAny() {
		return "(" + strconv.FormatInt(int64(v.ID), 10) + ")"
	}
	return "(" + strconv.FormatInt(int64(v.ID), 10) + ":" + v.Types.String() + ")"
}
