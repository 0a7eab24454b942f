package planner

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// GroupID indexes a Memo group.
type GroupID int32

// Expr is a plan node recorded in a group, along with the groups producing its inputs.
type Expr struct {
	Node   Node
	Inputs []GroupID
}

func (e *Expr) fingerprint() string {
	return fmt.Sprintf("%v %v %s", e.Node.Kind(), e.Inputs, e.Node.String())
}

// Group holds every recorded alternative producing patterns isomorphic to Pattern.
type Group struct {
	ID      GroupID
	Pattern pattern.Frozen
	Exprs   []Expr

	// A map from expression fingerprint to the expression's index in Exprs.
	exprMap map[string]int
}

func (g *Group) maybeAddExpr(e Expr) {
	f := e.fingerprint()
	if _, ok := g.exprMap[f]; !ok {
		g.exprMap[f] = len(g.Exprs)
		g.Exprs = append(g.Exprs, e)
	}
}

// Memo explores the plan space of a pattern: one group per isomorphism class of reachable sub-pattern, each holding
// every alternative the rules produce.  No alternative is costed or pruned.
type Memo struct {
	rules []Rule

	// A map from group fingerprint (a pattern's canonical code) to the index of the group in groups.
	groupMap map[string]GroupID
	groups   []*Group
	explored int
	root     GroupID
}

func NewMemo(rules ...Rule) *Memo {
	return &Memo{
		rules:    rules,
		groupMap: make(map[string]GroupID),
		root:     -1,
	}
}

// Root returns the group of the pattern passed to Explore, or -1 if nothing has been explored.
func (m *Memo) Root() GroupID {
	return m.root
}

func (m *Memo) NumGroups() int {
	return len(m.groups)
}

func (m *Memo) Group(id GroupID) *Group {
	return m.groups[id]
}

// Explore adds root to the memo and applies every rule to it and to each group reachable from it.
//
// A rule firing that fails is logged and contributes no alternatives; exploration continues with the next rule.
func (m *Memo) Explore(root *pattern.Pattern) (GroupID, error) {
	if root == nil {
		return -1, gplan.ErrNilPattern
	}
	if m.root >= 0 {
		return -1, errors.New("memo root has already been set")
	}
	m.root = m.maybeAddGroup(pattern.Freeze(root))

	for m.explored < len(m.groups) {
		g := m.groups[m.explored]
		m.explored++
		m.exploreGroup(g)
	}

	klog.V(1).Infof("explored %v: %d groups", root, len(m.groups))
	return m.root, nil
}

func (m *Memo) exploreGroup(g *Group) {
	if g.Pattern.VertexCount() == 1 {
		g.maybeAddExpr(Expr{Node: &ScanNode{Pattern: g.Pattern}})
		return
	}

	for _, rule := range m.rules {
		nodes, err := rule.Apply(g.Pattern)
		if err != nil {
			klog.Warningf("%s on %v: %v", rule.Name(), g.Pattern, err)
			continue
		}
		for _, node := range nodes {
			inputs := node.Inputs()
			e := Expr{
				Node:   node,
				Inputs: make([]GroupID, len(inputs)),
			}
			for i, in := range inputs {
				e.Inputs[i] = m.maybeAddGroup(in)
			}
			g.maybeAddExpr(e)
		}
	}
}

func (m *Memo) maybeAddGroup(p pattern.Frozen) GroupID {
	code, exact := p.CanonicalCode()
	f := string(code)
	if !exact {
		if id, ok := m.findIsomorphic(p); ok {
			return id
		}
		f = fmt.Sprintf("%s#%d", code, p.UID())
	}

	id, ok := m.groupMap[f]
	if !ok {
		id = GroupID(len(m.groups))
		m.groups = append(m.groups, &Group{
			ID:      id,
			Pattern: p,
			exprMap: make(map[string]int),
		})
		m.groupMap[f] = id
	}
	return id
}

// findIsomorphic scans for a group isomorphic to a pattern lacking an exact canonical code.
func (m *Memo) findIsomorphic(p pattern.Frozen) (GroupID, bool) {
	for _, g := range m.groups {
		if g.Pattern.VertexCount() == p.VertexCount() && g.Pattern.IsIsomorphicTo(p) {
			return g.ID, true
		}
	}
	return -1, false
}

func (m *Memo) String() string {
	var buf bytes.Buffer
	for _, g := range m.groups {
		fmt.Fprintf(&buf, "%d: %v\n", g.ID, g.Pattern)
		for _, e := range g.Exprs {
			fmt.Fprintf(&buf, "    %v <- %s\n", e.Inputs, e.Node)
		}
	}
	return buf.String()
}
