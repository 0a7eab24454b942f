package planner

import (
	"fmt"
	"strings"

	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// NodeKind identifies a plan node variant.
type NodeKind int8

const (
	ScanKind NodeKind = iota
	ExtendKind
	JoinKind
)

func (k NodeKind) String() string {
	switch k {
	case ScanKind:
		return "scan"
	case ExtendKind:
		return "extend"
	case JoinKind:
		return "join"
	}
	return fmt.Sprintf("NodeKind(%d)", int8(k))
}

// Node is one way to produce the rows matching its Output pattern from the rows of its Inputs.
//
// The variants are closed: ScanNode, ExtendNode and JoinNode.
type Node interface {
	Kind() NodeKind

	// Output is the pattern this node produces.
	Output() pattern.Frozen

	// Inputs are the patterns this node consumes, in the order they are fed to it.
	Inputs() []pattern.Frozen

	String() string
}

// ScanNode produces a single-vertex pattern by scanning every vertex of the data graph.
type ScanNode struct {
	Pattern pattern.Frozen
}

func (n *ScanNode) Kind() NodeKind           { return ScanKind }
func (n *ScanNode) Output() pattern.Frozen   { return n.Pattern }
func (n *ScanNode) Inputs() []pattern.Frozen { return nil }

func (n *ScanNode) String() string {
	return "scan " + n.Pattern.String()
}

// ExtendNode produces Target by extending each row of Source with one vertex, intersecting the neighbours reached
// through each edge of Step.
type ExtendNode struct {
	Source    pattern.Frozen
	Target    pattern.Frozen
	TargetVtx pattern.VtxID
	Step      gplan.ExtendStep
	Mapping   gplan.OrderMap
}

func (n *ExtendNode) Kind() NodeKind           { return ExtendKind }
func (n *ExtendNode) Output() pattern.Frozen   { return n.Target }
func (n *ExtendNode) Inputs() []pattern.Frozen { return []pattern.Frozen{n.Source} }

func (n *ExtendNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "extend +%d@%d%v", n.TargetVtx, n.Step.TargetOrder, n.Step.TargetTypes)
	for _, ee := range n.Step.Edges {
		fmt.Fprintf(&b, " %d/%d%v", ee.SrcOrder, ee.Dir, ee.Types)
	}
	fmt.Fprintf(&b, " w=%g", n.Step.Weight)
	return b.String()
}

// JoinNode produces Target by hash-joining the rows of Probe and Build on their shared vertices.
type JoinNode struct {
	Target   pattern.Frozen
	Probe    pattern.Frozen
	Build    pattern.Frozen
	Joints   []gplan.JointVertex
	ProbeMap gplan.OrderMap
	BuildMap gplan.OrderMap
}

func (n *JoinNode) Kind() NodeKind           { return JoinKind }
func (n *JoinNode) Output() pattern.Frozen   { return n.Target }
func (n *JoinNode) Inputs() []pattern.Frozen { return []pattern.Frozen{n.Probe, n.Build} }

func (n *JoinNode) String() string {
	var b strings.Builder
	b.WriteString("join")
	for _, jv := range n.Joints {
		fmt.Fprintf(&b, " %d=%d", jv.ProbeOrder, jv.BuildOrder)
	}
	fmt.Fprintf(&b, " [%v] [%v]", n.Probe, n.Build)
	return b.String()
}
