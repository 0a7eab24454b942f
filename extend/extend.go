package extend

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/gplan/dedup"
	"github.com/2x3systems/gplan/estimate"
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// Enumerator produces every way to reach a pattern by adding one vertex to a connected, one-vertex-smaller pattern.
//
// Patterns having no more than MaxCatalogSize vertices are answered by Catalog alone.  A nil Catalog always computes
// arcs directly, and a nil Estimator weighs arcs with estimate.Uniform.
type Enumerator struct {
	Catalog        gplan.ArcSource
	Estimator      gplan.WeightEstimator
	MaxCatalogSize int
}

// Enumerate returns the extend arcs reaching p, sorted by ascending weight then by descending ID of the added vertex.
// p is not modified and the returned arcs share no mutable state with it.
//
// An error is only returned if an internal invariant was found broken, in which case no arcs are returned.
func (en *Enumerator) Enumerate(p *pattern.Pattern) ([]*gplan.ExtendArc, error) {
	if p == nil {
		return nil, gplan.ErrNilPattern
	}
	Nv := p.VertexCount()
	if Nv <= 1 {
		return nil, nil
	}

	if en.Catalog != nil && Nv <= en.MaxCatalogSize {
		arcs, err := en.Catalog.ExtendArcs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog lookup of %v", p)
		}
		dedup.SortArcs(arcs)
		klog.V(2).Infof("extend %v: %d catalog arcs", p, len(arcs))
		return arcs, nil
	}

	est := en.Estimator
	if est == nil {
		est = estimate.Uniform{}
	}

	target := p.Clone()
	var arcs []*gplan.ExtendArc
	for _, vtx := range target.Vertices() {
		arc, err := Direct(target, vtx.ID, est)
		if err != nil {
			return nil, err
		}
		if arc != nil {
			arcs = append(arcs, arc)
		}
	}
	dedup.SortArcs(arcs)

	klog.V(2).Infof("extend %v: %d of %d vertices removable", p, len(arcs), Nv)
	return arcs, nil
}

// Direct computes the arc that adds v to the rest of p.
//
// If removing v would leave p disconnected (or empty), v is not admissible and (nil, nil) is returned.
// The returned arc refers to p as its Target, so p must not be mutated while the arc is in use.
func Direct(p *pattern.Pattern, v pattern.VtxID, est gplan.WeightEstimator) (*gplan.ExtendArc, error) {
	target, exists := p.Vertex(v)
	if !exists {
		return nil, errors.Wrapf(gplan.ErrInvariantViolation, "vertex %d not in %v", v, p)
	}

	src := p.Clone()
	comps, err := src.RemoveVertex(v)
	if err != nil {
		return nil, errors.Wrap(gplan.ErrInvariantViolation, err.Error())
	}
	if len(comps) != 1 {
		return nil, nil
	}

	// Edges come from p since the clone has lost them
	incident := p.EdgesOf(v)
	edges := make([]gplan.ExtendEdge, 0, len(incident))
	for _, e := range incident {
		ee := gplan.ExtendEdge{
			SrcOrder: gplan.SelfLoop,
			Types:    e.Types.Clone(),
			Dir:      e.DirFrom(v),
		}
		if !e.IsLoop() {
			var ok bool
			if ee.SrcOrder, ok = src.Order(e.Other(v)); !ok {
				return nil, errors.Wrapf(gplan.ErrInvariantViolation, "endpoint %d of edge %d missing after removing %d", e.Other(v), e.ID, v)
			}
		}
		ee.Weight = est.EdgeWeight(src, ee, target)
		edges = append(edges, ee)
	}
	SortEdges(edges)

	arc := &gplan.ExtendArc{
		Source:    src,
		Target:    p,
		TargetVtx: v,
		Step: gplan.ExtendStep{
			TargetTypes: target.Types.Clone(),
			Edges:       edges,
		},
	}
	arc.Step.TargetOrder, _ = p.Order(v)
	arc.Step.Weight = est.StepWeight(src, edges, target)

	if arc.Mapping, err = gplan.NewOrderMap(src, p); err != nil {
		return nil, err
	}
	return arc, nil
}

// SortEdges puts a step's edges in their recorded order: by source order, then direction, then types.
func SortEdges(edges []gplan.ExtendEdge) {
	sort.SliceStable(edges, func(i, j int) bool {
		ei, ej := &edges[i], &edges[j]
		if ei.SrcOrder != ej.SrcOrder {
			return ei.SrcOrder < ej.SrcOrder
		}
		if ei.Dir != ej.Dir {
			return ei.Dir < ej.Dir
		}
		return ei.Types.Compare(ej.Types) < 0
	})
}
