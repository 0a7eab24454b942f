package pattern

import (
	"errors"
)

// VtxID is the stable identifier of a pattern vertex, as assigned by the query that produced the pattern.
type VtxID int32

// EdgeID identifies an edge within a pattern.  Zero denotes an unassigned ID.
type EdgeID int32

// TypeID is a vertex label or edge label ID.
type TypeID int32

// Direction is the direction of an edge as seen from one of its endpoints.
type Direction int8

const (
	DirOut  Direction = 0 // edge leaves the vertex
	DirIn   Direction = 1 // edge enters the vertex
	DirBoth Direction = 2 // edge is undirected
)

func (dir Direction) Reverse() Direction {
	switch dir {
	case DirOut:
		return DirIn
	case DirIn:
		return DirOut
	}
	return dir
}

func (dir Direction) String() string {
	switch dir {
	case DirOut:
		return "out"
	case DirIn:
		return "in"
	case DirBoth:
		return "both"
	}
	return "?"
}

const (

	// MaxCanonLeaves bounds the number of orderings visited while searching for a pattern's canonical code.
	// Past this bound the order is still deterministic but the code is no longer guaranteed canonical.
	MaxCanonLeaves = 1 << 12
)

// Errors
var (
	ErrMissingVtx    = errors.New("vertex not in pattern")
	ErrDuplicateVtx  = errors.New("vertex already in pattern")
	ErrDuplicateEdge = errors.New("edge already in pattern")
	ErrBadEdge       = errors.New("bad pattern edge")
	ErrBadCode       = errors.New("bad pattern code")
	ErrBadExpr       = errors.New("bad pattern expression")
)
