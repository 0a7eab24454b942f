package estimate

import (
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// StatsEstimator weighs extend steps by the expected number of data edges walked.
type StatsEstimator struct {
	Stats *Stats
}

var _ gplan.WeightEstimator = StatsEstimator{}

// EdgeWeight returns the expected fan-out of the edge from its endpoint already in src.
func (est StatsEstimator) EdgeWeight(src *pattern.Pattern, edge gplan.ExtendEdge, target pattern.Vertex) float64 {
	from := target.Types
	if edge.SrcOrder != gplan.SelfLoop {
		if v, ok := src.VertexByOrder(edge.SrcOrder); ok {
			vtx, _ := src.Vertex(v)
			from = vtx.Types
		}
	}

	var Ne float64
	switch edge.Dir {
	case pattern.DirIn:
		Ne = est.Stats.EdgeCount(from, edge.Types, target.Types, true)
	case pattern.DirOut:
		Ne = est.Stats.EdgeCount(target.Types, edge.Types, from, true)
	default:
		Ne = est.Stats.EdgeCount(from, edge.Types, target.Types, false)
	}

	Nv := est.Stats.VertexCount(from)
	if Nv <= 0 {
		return 0
	}
	return Ne / Nv
}

// StepWeight returns the number of source matches times the summed fan-out of all the edges.
func (est StatsEstimator) StepWeight(src *pattern.Pattern, edges []gplan.ExtendEdge, target pattern.Vertex) float64 {
	fanout := 0.0
	for _, ee := range edges {
		fanout += ee.Weight
	}
	return est.Stats.RowCount(src) * fanout
}

// Uniform weighs every edge as 1 and every step by its number of edges.
type Uniform struct{}

var _ gplan.WeightEstimator = Uniform{}

func (Uniform) EdgeWeight(src *pattern.Pattern, edge gplan.ExtendEdge, target pattern.Vertex) float64 {
	return 1
}

func (Uniform) StepWeight(src *pattern.Pattern, edges []gplan.ExtendEdge, target pattern.Vertex) float64 {
	return float64(len(edges))
}
