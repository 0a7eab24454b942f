package gplan

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/2x3systems/gplan/pattern"
)

// NewOrderMap maps each vertex of src, by canonical order, to the canonical order of the same vertex in target.
// Every vertex of src must be present in target.
func NewOrderMap(src, target *pattern.Pattern) (OrderMap, error) {
	Nv := src.VertexCount()
	m := make(OrderMap, Nv)
	for i := 0; i < Nv; i++ {
		v, ok := src.VertexByOrder(i)
		if !ok {
			return nil, errors.Wrapf(ErrInvariantViolation, "no vertex at order %d", i)
		}
		m[i], ok = target.Order(v)
		if !ok {
			return nil, errors.Wrapf(ErrInvariantViolation, "vertex %d missing from target", v)
		}
	}
	return m, nil
}

// Lookup returns the target order for the given source order.
func (m OrderMap) Lookup(srcOrder int) (int, bool) {
	if srcOrder < 0 || srcOrder >= len(m) {
		return -1, false
	}
	return m[srcOrder], true
}

// IsInjective returns true if no two source orders map to the same target order and all target orders are in [0, targetSize).
func (m OrderMap) IsInjective(targetSize int) bool {
	seen := make([]bool, targetSize)
	for _, ti := range m {
		if ti < 0 || ti >= targetSize || seen[ti] {
			return false
		}
		seen[ti] = true
	}
	return true
}

// Weight returns the aggregate weight of this arc's step.
func (arc *ExtendArc) Weight() float64 {
	return arc.Step.Weight
}

// JointIDs returns the IDs of the vertices shared by both sides.
func (jd *JoinDecomposition) JointIDs() pattern.VtxSet {
	var ids pattern.VtxSet
	for _, v := range jd.Probe.Vertices() {
		if jd.Build.ContainsVertex(v.ID) {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// NewCatalogContext returns a CatalogContext whose Done channel closes once Close has been called and every attached
// Catalog has detached.
func NewCatalogContext() CatalogContext {
	return &catalogContext{
		open:   make(map[Catalog]struct{}),
		closed: make(chan struct{}),
	}
}

type catalogContext struct {
	mu        sync.Mutex
	open      map[Catalog]struct{}
	closing   bool
	closed    chan struct{}
	closeOnce sync.Once
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.mu.Lock()
	ctx.open[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	delete(ctx.open, cat)
	ctx.checkDone()
	ctx.mu.Unlock()
}

// checkDone signals Done when closing and no catalogs remain; ctx.mu must be held.
func (ctx *catalogContext) checkDone() {
	if ctx.closing && len(ctx.open) == 0 {
		ctx.closeOnce.Do(func() {
			close(ctx.closed)
		})
	}
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

// Close asks each attached catalog to close.  Subsequent calls have no effect.
func (ctx *catalogContext) Close() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.closing {
		return
	}
	ctx.closing = true
	for cat := range ctx.open {
		go cat.Close()
	}
	ctx.checkDone()
}
