package estimate

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// DefaultCount is assumed for any vertex or edge type that Stats has no count for.
const DefaultCount = 1000

// Stats holds per-type data graph counts, e.g.
//
//	default_count: 1000
//	vertices:
//	  1: 5000     # person
//	  2: 200      # city
//	edges:
//	  - {src: 1, type: 7, dst: 2, count: 5000}     # lives_in
//	  - {src: 1, type: 8, dst: 1, count: 40000}    # knows
type Stats struct {
	DefaultCount float64                    `yaml:"default_count"`
	Vertices     map[pattern.TypeID]float64 `yaml:"vertices"`
	Edges        []EdgeStat                 `yaml:"edges"`
}

// EdgeStat is the number of edges of a given type from vertices of type Src to vertices of type Dst.
type EdgeStat struct {
	Src   pattern.TypeID `yaml:"src"`
	Type  pattern.TypeID `yaml:"type"`
	Dst   pattern.TypeID `yaml:"dst"`
	Count float64        `yaml:"count"`
}

var _ gplan.CardinalityOracle = (*Stats)(nil)

// LoadStats reads Stats from the given YAML file.
func LoadStats(pathname string) (*Stats, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "reading stats %q", pathname)
	}
	return ParseStats(buf)
}

// ParseStats reads Stats from YAML.
func ParseStats(buf []byte) (*Stats, error) {
	stats := &Stats{}
	if err := yaml.Unmarshal(buf, stats); err != nil {
		return nil, errors.Wrap(gplan.ErrUnmarshal, err.Error())
	}
	if stats.DefaultCount <= 0 {
		stats.DefaultCount = DefaultCount
	}
	for _, es := range stats.Edges {
		if es.Count < 0 {
			return nil, errors.Wrapf(gplan.ErrUnmarshal, "edge %d-[%d]->%d has negative count", es.Src, es.Type, es.Dst)
		}
	}
	return stats, nil
}

func (stats *Stats) defaultCount() float64 {
	if stats.DefaultCount > 0 {
		return stats.DefaultCount
	}
	return DefaultCount
}

// VertexCount returns the number of data vertices matching any of the given types.
func (stats *Stats) VertexCount(types pattern.TypeSet) float64 {
	if types.IsAny() {
		if len(stats.Vertices) == 0 {
			return stats.defaultCount()
		}
		total := 0.0
		for _, n := range stats.Vertices {
			total += n
		}
		return total
	}

	total := 0.0
	for _, t := range types {
		n, known := stats.Vertices[t]
		if !known {
			n = stats.defaultCount()
		}
		total += n
	}
	return total
}

// EdgeCount returns the number of data edges from a src vertex to a dst vertex matching the given types.
// An undirected pattern edge matches each data edge once per direction its endpoint types allow.
func (stats *Stats) EdgeCount(src, edge, dst pattern.TypeSet, directed bool) float64 {
	total := 0.0
	matched := false
	for _, es := range stats.Edges {
		if !edge.IsAny() && !edge.Contains(es.Type) {
			continue
		}
		fwd := typesMatch(src, es.Src) && typesMatch(dst, es.Dst)
		rev := !directed && typesMatch(src, es.Dst) && typesMatch(dst, es.Src)
		if fwd {
			total += es.Count
			matched = true
		}
		if rev {
			total += es.Count
			matched = true
		}
	}
	if !matched {
		return stats.defaultCount()
	}
	return total
}

func typesMatch(types pattern.TypeSet, t pattern.TypeID) bool {
	return types.IsAny() || types.Contains(t)
}

// RowCount estimates the number of matches of p assuming every edge is independent of the others.
func (stats *Stats) RowCount(p *pattern.Pattern) float64 {
	rows := 1.0
	for _, v := range p.Vertices() {
		rows *= stats.VertexCount(v.Types)
	}
	for _, e := range p.Edges() {
		srcVtx, _ := p.Vertex(e.Src)
		dstVtx, _ := p.Vertex(e.Dst)
		Ns := stats.VertexCount(srcVtx.Types)
		Nd := stats.VertexCount(dstVtx.Types)
		if e.IsLoop() {
			Nd = 1
		}
		if Ns <= 0 || Nd <= 0 {
			return 0
		}
		rows *= stats.EdgeCount(srcVtx.Types, e.Types, dstVtx.Types, e.Directed) / (Ns * Nd)
	}
	return rows
}
