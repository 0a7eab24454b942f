package gplan

import (
	"github.com/2x3systems/gplan/pattern"
)

const (

	// SelfLoop is the ExtendEdge.SrcOrder of an edge looping on the newly added vertex.
	SelfLoop = -1

	// DefaultMaxPatternSizeInGlogue is the largest pattern (in vertices) whose extend arcs are looked up in a catalog.
	DefaultMaxPatternSizeInGlogue = 3

	// DefaultMinPatternSize is the smallest pattern (in vertices) that is join decomposed.
	DefaultMinPatternSize = 2
)

// ExtendEdge is one edge joining the vertex added by an ExtendStep to the source pattern.
type ExtendEdge struct {
	SrcOrder int               // order of the other endpoint in the source pattern (or SelfLoop)
	Types    pattern.TypeSet   // candidate edge types
	Dir      pattern.Direction // direction as seen from the new vertex
	Weight   float64           // estimated cost of expanding along this edge alone
}

// ExtendStep describes adding exactly one vertex to a source pattern to reach a target pattern.
type ExtendStep struct {
	TargetTypes pattern.TypeSet // candidate types of the new vertex
	TargetOrder int             // order of the new vertex in the target pattern
	Edges       []ExtendEdge    // sorted by SrcOrder
	Weight      float64         // aggregate cost of the step
}

// OrderMap maps each canonical order of a smaller pattern to the canonical order of the same vertex in a larger pattern.
type OrderMap []int

// ExtendArc connects a source pattern to the one-vertex-larger Target pattern it extends to.
type ExtendArc struct {
	Source    *pattern.Pattern
	Target    *pattern.Pattern
	TargetVtx pattern.VtxID // vertex of Target that Step adds
	Step      ExtendStep
	Mapping   OrderMap // Source order => Target order
}

// JointVertex is a vertex shared by both sides of a JoinDecomposition, given in each side's canonical order.
type JointVertex struct {
	ProbeOrder int
	BuildOrder int
}

// JoinDecomposition splits a target pattern into a probe (driving) side and a build side sharing joint vertices.
type JoinDecomposition struct {
	Probe    *pattern.Pattern
	Build    *pattern.Pattern
	Joints   []JointVertex // sorted by ProbeOrder
	ProbeMap OrderMap      // Probe order => target order
	BuildMap OrderMap      // Build order => target order
}

// CardinalityOracle estimates the number of matches of a pattern.
type CardinalityOracle interface {
	RowCount(p *pattern.Pattern) float64
}

// WeightEstimator assigns comparable cost weights to extend steps.  Implementations must be free of side effects.
type WeightEstimator interface {

	// EdgeWeight weighs expanding from src along a single edge to reach the new vertex.
	EdgeWeight(src *pattern.Pattern, edge ExtendEdge, target pattern.Vertex) float64

	// StepWeight weighs adding the new vertex to src through all of the given edges at once.
	StepWeight(src *pattern.Pattern, edges []ExtendEdge, target pattern.Vertex) float64
}

// ArcSource returns precomputed extend arcs for a pattern.
// An empty result is valid and means the pattern has no recorded arcs.
type ArcSource interface {
	ExtendArcs(p *pattern.Pattern) ([]*ExtendArc, error)
}

// OnPatternHit is used to return patterns meeting a set of selection criteria.
// Ownership of a Pattern also travels through the channel.
type OnPatternHit chan<- *pattern.Pattern

// PatternSelector selects catalog patterns by size.
type PatternSelector struct {
	MinSize int // lower vertex count bound
	MaxSize int // upper vertex count bound (0 denotes no bound)
}

// SelectsSize returns true if a pattern having the given vertex count is selected.
func (sel *PatternSelector) SelectsSize(Nv int) bool {
	if Nv < sel.MinSize {
		return false
	}
	return sel.MaxSize <= 0 || Nv <= sel.MaxSize
}

// PatternAdder adds patterns (and their extend arcs) to a catalog.
type PatternAdder interface {

	// Tries to add the given pattern to this catalog.
	// If true is returned, p was not yet present and was added.
	TryAddPattern(p *pattern.Pattern, est WeightEstimator) (bool, error)
}

// Catalog wraps a database of patterns and the extend arcs that reach them ("glogue").
type Catalog interface {
	ArcSource
	PatternAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// MaxPatternSize returns the largest vertex count this catalog accepts.
	MaxPatternSize() int

	// NumPatterns returns the number of patterns stored for a given vertex count.
	NumPatterns(forVtxCount int) int64

	// Select sends each stored pattern meeting the selection criteria to onHit and returns once all have been sent.
	Select(sel PatternSelector, onHit OnPatternHit)

	Close() error
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a Catalog
type CatalogOpts struct {
	DbPathName     string // omit for in-memory db
	ReadOnly       bool   // open in read-only mode
	MaxPatternSize int    // largest vertex count accepted (0 denotes DefaultMaxPatternSizeInGlogue)
}
