package join

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/gplan/dedup"
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// Enumerator produces every distinct way to split a pattern into a probe side and a build side joined at shared
// vertices, growing the probe side one vertex per level of a breadth-first search.
type Enumerator struct {
	MinPatternSize int // patterns having fewer vertices are not decomposed
}

// Enumerate returns the join decompositions of p, in the order they were discovered.
// No two returned decompositions have both an isomorphic probe and an isomorphic build.
//
// An error is only returned if an internal invariant was found broken, in which case no decompositions are returned.
func (en *Enumerator) Enumerate(p *pattern.Pattern) ([]*gplan.JoinDecomposition, error) {
	if p == nil {
		return nil, gplan.ErrNilPattern
	}
	Nv := p.VertexCount()
	if Nv == 0 || Nv < en.MinPatternSize {
		return nil, nil
	}

	target := p.Clone()
	seeds, err := Seeds(target)
	if err != nil {
		return nil, err
	}

	queue := linkedlistqueue.New()
	visited := make(map[string]struct{}, 4*Nv)
	for _, seed := range seeds {
		visited[entryKey(target, seed)] = struct{}{}
		queue.Enqueue(seed)
	}

	results := dedup.NewPairSet(dedup.DedupOpts{})
	var decomps []*gplan.JoinDecomposition
	for !queue.Empty() {
		val, _ := queue.Dequeue()
		cur := val.(*gplan.JoinDecomposition)

		for _, j := range cur.JointIDs() {
			next, err := Grow(target, cur, j)
			if err != nil {
				return nil, err
			}
			if next == nil {
				continue
			}

			// A decomposition reached a second time would only yield the same successors again
			key := entryKey(target, next)
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			queue.Enqueue(next)

			if next.Probe.VertexCount() > next.Build.VertexCount() {
				continue
			}
			if results.TryAdd(next.Probe, next.Build) {
				decomps = append(decomps, next)
			}
		}
	}

	klog.V(2).Infof("decompose %v: %d decompositions from %d states", p, len(decomps), len(visited))
	return decomps, nil
}

// Seeds returns one decomposition of target per vertex v, in canonical order of v: the probe is v alone, the build
// is all of target, and v is their only joint vertex.  Seeds are degenerate and only serve to start a search.
func Seeds(target *pattern.Pattern) ([]*gplan.JoinDecomposition, error) {
	Nv := target.VertexCount()
	seeds := make([]*gplan.JoinDecomposition, 0, Nv)
	for i := 0; i < Nv; i++ {
		v, _ := target.VertexByOrder(i)
		vtx, _ := target.Vertex(v)

		probe := pattern.New()
		if err := probe.AddVertex(v, vtx.Types...); err != nil {
			return nil, errors.Wrap(gplan.ErrInvariantViolation, err.Error())
		}
		seed, err := newDecomposition(target, probe, target.Clone())
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// Grow moves joint vertex j of jd to the probe side only, pulling j's build-side neighbours and edges into the
// probe.  The neighbours become joint vertices.
//
// If the result is not admissible, (nil, nil) is returned.  That is the case when:
//   - j is adjacent on the build side to another joint vertex,
//   - the build side would no longer be connected,
//   - the probe side would outgrow the build side, or
//   - there would be no joint vertex, or as many joint vertices as either side has vertices.
func Grow(target *pattern.Pattern, jd *gplan.JoinDecomposition, j pattern.VtxID) (*gplan.JoinDecomposition, error) {
	if !jd.Probe.ContainsVertex(j) || !jd.Build.ContainsVertex(j) {
		return nil, errors.Wrapf(gplan.ErrInvariantViolation, "vertex %d is not a joint vertex", j)
	}

	// Frontier invariant
	for _, w := range jd.Build.Neighbors(j) {
		if jd.Probe.ContainsVertex(w) {
			return nil, nil
		}
	}

	probe := jd.Probe.Clone()
	build := jd.Build.Clone()
	comps, err := build.RemoveVertex(j)
	if err != nil {
		return nil, errors.Wrap(gplan.ErrInvariantViolation, err.Error())
	}
	if len(comps) != 1 {
		return nil, nil
	}

	// The build clone has lost j's edges, so walk them on the parent's build side
	for _, e := range jd.Build.EdgesOf(j) {
		w := e.Other(j)
		if !probe.ContainsVertex(w) {
			vtx, _ := jd.Build.Vertex(w)
			if err = probe.AddVertex(w, vtx.Types...); err != nil {
				return nil, errors.Wrap(gplan.ErrInvariantViolation, err.Error())
			}
			if probe.VertexCount() > build.VertexCount() {
				return nil, nil
			}
		}
		if !probe.ContainsEdge(e.ID) {
			if _, err = probe.AddEdge(e); err != nil {
				return nil, errors.Wrap(gplan.ErrInvariantViolation, err.Error())
			}
		}
	}

	next, err := newDecomposition(target, probe, build)
	if err != nil {
		return nil, err
	}
	Nj := len(next.Joints)
	if Nj == 0 || Nj >= probe.VertexCount() || Nj >= build.VertexCount() {
		return nil, nil
	}
	return next, nil
}

// newDecomposition expresses the joint vertices and order mappings of the given sides in their canonical orders.
func newDecomposition(target, probe, build *pattern.Pattern) (*gplan.JoinDecomposition, error) {
	jd := &gplan.JoinDecomposition{
		Probe: probe,
		Build: build,
	}
	for _, j := range jd.JointIDs() {
		po, _ := probe.Order(j)
		bo, ok := build.Order(j)
		if !ok {
			return nil, errors.Wrapf(gplan.ErrInvariantViolation, "joint vertex %d missing from build", j)
		}
		jd.Joints = append(jd.Joints, gplan.JointVertex{
			ProbeOrder: po,
			BuildOrder: bo,
		})
	}
	sort.Slice(jd.Joints, func(i, k int) bool {
		return jd.Joints[i].ProbeOrder < jd.Joints[k].ProbeOrder
	})

	var err error
	if jd.ProbeMap, err = gplan.NewOrderMap(probe, target); err != nil {
		return nil, err
	}
	if jd.BuildMap, err = gplan.NewOrderMap(build, target); err != nil {
		return nil, err
	}
	return jd, nil
}

// entryKey identifies a decomposition by the target orders of its probe and build vertices.
// Both sides are fully determined by their vertex sets: the build side is induced by its vertices and the probe side
// holds every edge touching a probe-only vertex.
func entryKey(target *pattern.Pattern, jd *gplan.JoinDecomposition) string {
	Nv := uint(target.VertexCount())
	probeBits := bitset.New(Nv)
	for _, ti := range jd.ProbeMap {
		probeBits.Set(uint(ti))
	}
	buildBits := bitset.New(Nv)
	for _, ti := range jd.BuildMap {
		buildBits.Set(uint(ti))
	}

	var key []byte
	for _, bs := range [2]*bitset.BitSet{probeBits, buildBits} {
		for _, word := range bs.Bytes() {
			for k := 0; k < 8; k++ {
				key = append(key, byte(word>>(8*k)))
			}
		}
	}
	return string(key)
}
