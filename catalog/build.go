package catalog

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

// Build adds every connected induced sub-pattern of each seed, having from 2 to cat.MaxPatternSize() vertices,
// and returns the number of patterns that were newly added.
func Build(cat gplan.Catalog, seeds []*pattern.Pattern, est gplan.WeightEstimator) (int, error) {
	added := 0
	for _, seed := range seeds {
		subs, err := ConnectedSubpatterns(seed, 2, cat.MaxPatternSize())
		if err != nil {
			return added, err
		}
		for _, sub := range subs {
			isNew, err := cat.TryAddPattern(sub, est)
			if err != nil {
				return added, err
			}
			if isNew {
				added++
			}
		}
		klog.V(1).Infof("catalog build %v: %d sub-patterns", seed, len(subs))
	}
	return added, nil
}

// ConnectedSubpatterns returns the sub-patterns of X induced by each connected vertex subset having from minSize to
// maxSize vertices.  Isomorphic sub-patterns induced by different subsets are all returned.
func ConnectedSubpatterns(X *pattern.Pattern, minSize, maxSize int) ([]*pattern.Pattern, error) {
	vtx := X.Vertices()
	Nv := uint(len(vtx))
	index := make(map[pattern.VtxID]uint, Nv)
	for i, v := range vtx {
		index[v.ID] = uint(i)
	}
	nbrs := make([]*bitset.BitSet, Nv)
	for i, v := range vtx {
		nbrs[i] = bitset.New(Nv)
		for _, w := range X.Neighbors(v.ID) {
			nbrs[i].Set(index[w])
		}
	}

	var (
		subs []*pattern.Pattern
		err  error
	)
	seen := make(map[string]struct{})

	var grow func(set, frontier *bitset.BitSet)
	grow = func(set, frontier *bitset.BitSet) {
		if err != nil {
			return
		}
		key := set.String()
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}

		size := int(set.Count())
		if size >= minSize {
			var sub *pattern.Pattern
			if sub, err = induce(X, vtx, set); err != nil {
				return
			}
			subs = append(subs, sub)
		}
		if size >= maxSize {
			return
		}
		for i, ok := frontier.NextSet(0); ok; i, ok = frontier.NextSet(i + 1) {
			nextSet := set.Clone().Set(i)
			nextFrontier := frontier.Union(nbrs[i]).Difference(nextSet)
			grow(nextSet, nextFrontier)
		}
	}

	for i := uint(0); i < Nv; i++ {
		grow(bitset.New(Nv).Set(i), nbrs[i].Clone().Clear(i))
	}
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// induce returns the sub-pattern of X induced by the vertices in set.
func induce(X *pattern.Pattern, vtx []pattern.Vertex, set *bitset.BitSet) (*pattern.Pattern, error) {
	sub := X.Clone()
	for i, v := range vtx {
		if !set.Test(uint(i)) {
			if _, err := sub.RemoveVertex(v.ID); err != nil {
				return nil, errors.Wrapf(gplan.ErrInvariantViolation, "inducing sub-pattern of %v: %v", X, err)
			}
		}
	}
	return sub, nil
}
