package pattern

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// PatternExpr is a comma separated list of paths, e.g.
//
//	(1:7)-[:3]->(2:8)<-[:3]-(3:7), (1)-[:4|5]-(3)
//
// A vertex is written "(ID)" or "(ID:T1|T2..)"; an edge is "-[..]->", "<-[..]-" or "-[..]-" (undirected),
// optionally listing its candidate types as ":T1|T2..".  A vertex's types may be given on any one mention.
type PatternExpr struct {
	Paths []*PathExpr `parser:"@@ ( \",\" @@ )*"`
}

type PathExpr struct {
	Head  *NodeExpr   `parser:"@@"`
	Steps []*StepExpr `parser:"@@*"`
}

type StepExpr struct {
	In    string    `parser:"( @\"<-\" | \"-\" )"`
	Types []int64   `parser:"\"[\" ( \":\" @Int ( \"|\" @Int )* )? \"]\""`
	Out   string    `parser:"( @\"->\" | \"-\" )"`
	Node  *NodeExpr `parser:"@@"`
}

type NodeExpr struct {
	ID    int64   `parser:"\"(\" @Int"`
	Types []int64 `parser:"( \":\" @Int ( \"|\" @Int )* )? \")\""`
}

var sPatternLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `<-|->`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[()\[\]:|,-]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

var sParsePatternExpr = participle.MustBuild[PatternExpr](
	participle.Lexer(sPatternLexer),
)

type patternBuilder struct {
	X     *Pattern
	types map[VtxID]TypeSet
}

func (Xb *patternBuilder) tallyVtx(node *NodeExpr) (VtxID, error) {
	id := VtxID(node.ID)
	if int64(id) != node.ID {
		return 0, errors.Wrapf(ErrBadExpr, "vertex ID %d out of range", node.ID)
	}
	types := toTypeSet(node.Types)

	if !Xb.X.ContainsVertex(id) {
		if err := Xb.X.AddVertex(id); err != nil {
			return 0, err
		}
	}
	if len(types) > 0 {
		if prev, exists := Xb.types[id]; exists && !prev.Equal(types) {
			return 0, errors.Wrapf(ErrBadExpr, "vertex %d given conflicting types %v and %v", id, prev, types)
		}
		Xb.types[id] = types
	}
	return id, nil
}

func (Xb *patternBuilder) applyPath(path *PathExpr) error {
	cur, err := Xb.tallyVtx(path.Head)
	if err != nil {
		return err
	}

	for _, step := range path.Steps {
		next, err := Xb.tallyVtx(step.Node)
		if err != nil {
			return err
		}

		e := Edge{
			Types: toTypeSet(step.Types),
		}
		switch {
		case step.In != "" && step.Out != "":
			return errors.Wrapf(ErrBadExpr, "edge %d..%d has two arrow heads", cur, next)
		case step.In != "":
			e.Src, e.Dst, e.Directed = next, cur, true
		case step.Out != "":
			e.Src, e.Dst, e.Directed = cur, next, true
		default:
			e.Src, e.Dst = cur, next
		}
		if _, err = Xb.X.AddEdge(e); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func toTypeSet(ids []int64) TypeSet {
	if len(ids) == 0 {
		return nil
	}
	ts := make([]TypeID, len(ids))
	for i, id := range ids {
		ts[i] = TypeID(id)
	}
	return NewTypeSet(ts...)
}

// Parse reads a Pattern from its expression form (see PatternExpr).
func Parse(expr string) (*Pattern, error) {
	Xexpr, err := sParsePatternExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(ErrBadExpr, err.Error())
	}
	if Xexpr == nil || len(Xexpr.Paths) == 0 {
		return nil, errors.Wrap(ErrBadExpr, "empty expression")
	}

	Xb := patternBuilder{
		X:     New(),
		types: make(map[VtxID]TypeSet),
	}
	for _, path := range Xexpr.Paths {
		if err = Xb.applyPath(path); err != nil {
			return nil, err
		}
	}

	// With all vertices known, assign their types
	for i := range Xb.X.vtx {
		Xb.X.vtx[i].Types = Xb.types[Xb.X.vtx[i].ID]
	}
	Xb.X.onPatternChanged()
	return Xb.X, nil
}

// MustParse is like Parse but panics if the expression is malformed.
func MustParse(expr string) *Pattern {
	X, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return X
}
