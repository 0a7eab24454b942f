package planner

import (
	"github.com/2x3systems/gplan/extend"
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/join"
	"github.com/2x3systems/gplan/pattern"
)

// Rule derives the alternative ways to produce a pattern.
type Rule interface {
	Name() string

	// Apply returns a node for each way this rule produces target.
	// An error aborts this rule's firing for target and no nodes are returned.
	Apply(target pattern.Frozen) ([]Node, error)
}

// ExtendIntersectRule produces a pattern by adding one vertex to a smaller connected pattern.
type ExtendIntersectRule struct {
	Enumerator extend.Enumerator
}

func (r *ExtendIntersectRule) Name() string { return "ExtendIntersect" }

func (r *ExtendIntersectRule) Apply(target pattern.Frozen) ([]Node, error) {
	arcs, err := r.Enumerator.Enumerate(target.Thaw())
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, len(arcs))
	for i, arc := range arcs {
		nodes[i] = &ExtendNode{
			Source:    pattern.Freeze(arc.Source),
			Target:    pattern.Freeze(arc.Target),
			TargetVtx: arc.TargetVtx,
			Step:      arc.Step,
			Mapping:   arc.Mapping,
		}
	}
	return nodes, nil
}

// JoinDecompositionRule produces a pattern by joining two smaller patterns sharing some vertices.
type JoinDecompositionRule struct {
	Enumerator join.Enumerator
}

func (r *JoinDecompositionRule) Name() string { return "JoinDecomposition" }

func (r *JoinDecompositionRule) Apply(target pattern.Frozen) ([]Node, error) {
	decomps, err := r.Enumerator.Enumerate(target.Thaw())
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, len(decomps))
	for i, jd := range decomps {
		nodes[i] = &JoinNode{
			Target:   target,
			Probe:    pattern.Freeze(jd.Probe),
			Build:    pattern.Freeze(jd.Build),
			Joints:   jd.Joints,
			ProbeMap: jd.ProbeMap,
			BuildMap: jd.BuildMap,
		}
	}
	return nodes, nil
}

// DefaultRules returns the extend and join rules configured by cfg.
// cat may be nil, in which case extend arcs are always computed directly.
func DefaultRules(cfg gplan.Config, cat gplan.Catalog, est gplan.WeightEstimator) []Rule {
	ext := &ExtendIntersectRule{
		Enumerator: extend.Enumerator{
			Estimator: est,
		},
	}
	if cat != nil {
		ext.Enumerator.Catalog = cat
		ext.Enumerator.MaxCatalogSize = min(cat.MaxPatternSize(), cfg.MaxPatternSizeInGlogue)
	}
	return []Rule{
		ext,
		&JoinDecompositionRule{
			Enumerator: join.Enumerator{
				MinPatternSize: cfg.MinPatternSize,
			},
		},
	}
}
