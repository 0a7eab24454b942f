package dedup

import (
	"sort"

	"github.com/2x3systems/gplan/gplan"
)

// SortArcs orders arcs by ascending step weight, breaking ties by descending ID of the vertex each arc adds.
// The sort is stable so arcs tied on both keys keep their given order.
func SortArcs(arcs []*gplan.ExtendArc) {
	sort.SliceStable(arcs, func(i, j int) bool {
		return ArcLess(arcs[i], arcs[j])
	})
}

// ArcLess reports whether a is emitted before b.
func ArcLess(a, b *gplan.ExtendArc) bool {
	if a.Step.Weight != b.Step.Weight {
		return a.Step.Weight < b.Step.Weight
	}
	return a.TargetVtx > b.TargetVtx
}

// IsSorted returns true if arcs is in emission order.
func IsSorted(arcs []*gplan.ExtendArc) bool {
	for i := 1; i < len(arcs); i++ {
		if ArcLess(arcs[i], arcs[i-1]) {
			return false
		}
	}
	return true
}
