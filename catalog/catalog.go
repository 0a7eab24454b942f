package catalog

import (
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/gplan/estimate"
	"github.com/2x3systems/gplan/extend"
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/pattern"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	kPatternPrefix, Nv (byte), CanonicalCode  => ArcList
	...

Each ArcList holds every arc reaching the pattern whose canonical code is in the key, with every vertex given by its
canonical order in that pattern.  Since two patterns with the same (exact) canonical code are isomorphic through
their canonical orders, a stored ArcList applies to any pattern having the same code.

Keys sort by vertex count first, which allows to:
	1) select all patterns of a given size range
	2) check if a given pattern has been added

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kPatternPrefix = byte(0x01)

	kMajorVers = 2024
	kMinorVers = 1

	// MaxPatternSizeLimit is the largest pattern size a catalog can be opened for.
	MaxPatternSizeLimit = 16

	// maxCachedArcLists bounds the number of decoded ArcLists kept in memory.
	maxCachedArcLists = 4096
)

// catalog is a db wrapper for a glogue: patterns and the extend arcs that reach them
type catalog struct {
	ctx        gplan.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB

	cacheMu sync.Mutex
	cache   *treemap.Map // string(pattern key) => *ArcList
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName and attaches it to ctx.
//
// An existing catalog keeps the MaxPatternSize it was created with; opts.MaxPatternSize may not exceed it.
func OpenCatalog(ctx gplan.CatalogContext, opts gplan.CatalogOpts) (gplan.Catalog, error) {
	maxSize := opts.MaxPatternSize
	if maxSize <= 0 {
		maxSize = gplan.DefaultMaxPatternSizeInGlogue
	}
	if maxSize > MaxPatternSizeLimit {
		return nil, errors.Wrapf(gplan.ErrBadCatalogParam, "MaxPatternSize must not exceed %d", MaxPatternSizeLimit)
	}

	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
		cache:    treemap.NewWithStringComparator(),
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gplan.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
		cat.state.MaxPatternSize = int32(maxSize)
		cat.state.NumPatterns = make([]uint64, maxSize+1)
	}

	if err == nil {
		if cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers {
			err = errors.Wrap(gplan.ErrBadCatalogParam, "catalog version is incompatible")
		} else if opts.MaxPatternSize > int(cat.state.MaxPatternSize) {
			err = errors.Wrapf(gplan.ErrBadCatalogParam, "catalog's MaxPatternSize (%d) is below the requested MaxPatternSize", cat.state.MaxPatternSize)
		}
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(1).Infof("opened catalog %q (max pattern size %d)", opts.DbPathName, cat.state.MaxPatternSize)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := proto.Unmarshal(val, &cat.state); err != nil {
				return errors.Wrap(gplan.ErrUnmarshal, err.Error())
			}
			return nil
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := proto.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err != nil {
		return errors.Wrap(err, "flushing catalog state")
	}
	cat.stateDirty = false
	return nil
}

func (cat *catalog) Close() error {
	var err error
	if cat.db != nil {
		err = cat.flushState()
		if closeErr := cat.db.Close(); err == nil {
			err = closeErr
		}
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return err
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) MaxPatternSize() int {
	return int(cat.state.MaxPatternSize)
}

func (cat *catalog) NumPatterns(forVtxCount int) int64 {
	if forVtxCount <= 0 || forVtxCount >= len(cat.state.NumPatterns) {
		return 0
	}
	return int64(cat.state.NumPatterns[forVtxCount])
}

// formPatternKey appends the catalog key of p, returning false if p has no exact canonical code.
func formPatternKey(key []byte, p *pattern.Pattern) ([]byte, bool) {
	key = append(key, kPatternPrefix, byte(p.VertexCount()))
	code, exact := p.CanonicalCode()
	return append(key, code...), exact
}

// TryAddPattern adds p and its extend arcs if p isn't already present.
//
// If true is returned, p was not present and was added.
func (cat *catalog) TryAddPattern(p *pattern.Pattern, est gplan.WeightEstimator) (bool, error) {
	if cat.readOnly {
		return false, gplan.ErrCatalogReadOnly
	}
	Nv := p.VertexCount()
	if Nv < 2 || Nv > cat.MaxPatternSize() {
		return false, errors.Wrapf(gplan.ErrBadCatalogParam, "pattern size %d is outside [2, %d]", Nv, cat.MaxPatternSize())
	}
	if est == nil {
		est = estimate.Uniform{}
	}

	var keyBuf [128]byte
	key, exact := formPatternKey(keyBuf[:0], p)
	if !exact {
		klog.Warningf("catalog: %v has no exact canonical code; not added", p)
		return false, nil
	}

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err := txn.Get(key)
	if err == nil {
		return false, nil
	}
	if err != badger.ErrKeyNotFound {
		return false, err
	}

	list, err := formArcList(p, est)
	if err != nil {
		return false, err
	}
	val, err := proto.Marshal(list)
	if err != nil {
		return false, err
	}

	// The key buf must outlive the txn
	key = append([]byte(nil), key...)
	if err = txn.Set(key, val); err != nil {
		return false, err
	}
	if err = txn.Commit(); err != nil {
		return false, err
	}

	cat.state.NumPatterns[Nv]++
	cat.stateDirty = true
	return true, nil
}

// formArcList computes every arc reaching p, expressed in p's canonical orders.
func formArcList(p *pattern.Pattern, est gplan.WeightEstimator) (*ArcList, error) {
	target := p.Clone()
	list := &ArcList{}
	for _, vtx := range target.Vertices() {
		arc, err := extend.Direct(target, vtx.ID, est)
		if err != nil {
			return nil, err
		}
		if arc == nil {
			continue
		}

		rec := &ArcRecord{
			TargetOrder: int32(arc.Step.TargetOrder),
			TargetTypes: typesToRecord(arc.Step.TargetTypes),
			Weight:      arc.Step.Weight,
			Edges:       make([]*ArcEdge, len(arc.Step.Edges)),
		}
		for i, ee := range arc.Step.Edges {
			other := int32(gplan.SelfLoop)
			if ee.SrcOrder != gplan.SelfLoop {
				other = int32(arc.Mapping[ee.SrcOrder])
			}
			rec.Edges[i] = &ArcEdge{
				OtherOrder: other,
				Types:      typesToRecord(ee.Types),
				Dir:        int32(ee.Dir),
				Weight:     ee.Weight,
			}
		}
		list.Arcs = append(list.Arcs, rec)
	}
	return list, nil
}

func typesToRecord(ts pattern.TypeSet) []int32 {
	if len(ts) == 0 {
		return nil
	}
	out := make([]int32, len(ts))
	for i, t := range ts {
		out[i] = int32(t)
	}
	return out
}

func typesFromRecord(ids []int32) pattern.TypeSet {
	if len(ids) == 0 {
		return nil
	}
	ts := make([]pattern.TypeID, len(ids))
	for i, id := range ids {
		ts[i] = pattern.TypeID(id)
	}
	return pattern.NewTypeSet(ts...)
}

// ExtendArcs returns the stored arcs reaching p, resolved against p's own vertices.
// A pattern not in the catalog has no arcs.
func (cat *catalog) ExtendArcs(p *pattern.Pattern) ([]*gplan.ExtendArc, error) {
	if p.VertexCount() < 2 {
		return nil, nil
	}

	var keyBuf [128]byte
	key, exact := formPatternKey(keyBuf[:0], p)
	if !exact {
		return nil, nil
	}

	list, err := cat.loadArcList(key)
	if err != nil || list == nil {
		return nil, err
	}

	target := p.Clone()
	arcs := make([]*gplan.ExtendArc, 0, len(list.Arcs))
	for _, rec := range list.Arcs {
		arc, err := resolveArc(target, rec)
		if err != nil {
			return nil, err
		}
		arcs = append(arcs, arc)
	}
	return arcs, nil
}

func (cat *catalog) loadArcList(key []byte) (*ArcList, error) {
	cat.cacheMu.Lock()
	defer cat.cacheMu.Unlock()

	if cached, found := cat.cache.Get(string(key)); found {
		return cached.(*ArcList), nil
	}

	list := &ArcList{}
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, list)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(gplan.ErrUnmarshal, err.Error())
	}

	if cat.cache.Size() >= maxCachedArcLists {
		cat.cache.Clear()
	}
	cat.cache.Put(string(key), list)
	return list, nil
}

// resolveArc re-expresses a stored arc against target, which has the same canonical code as the stored pattern.
func resolveArc(target *pattern.Pattern, rec *ArcRecord) (*gplan.ExtendArc, error) {
	v, ok := target.VertexByOrder(int(rec.TargetOrder))
	if !ok {
		return nil, errors.Wrapf(gplan.ErrInvariantViolation, "stored arc adds vertex at order %d", rec.TargetOrder)
	}

	src := target.Clone()
	if _, err := src.RemoveVertex(v); err != nil {
		return nil, errors.Wrap(gplan.ErrInvariantViolation, err.Error())
	}

	edges := make([]gplan.ExtendEdge, len(rec.Edges))
	for i, re := range rec.Edges {
		ee := gplan.ExtendEdge{
			SrcOrder: gplan.SelfLoop,
			Types:    typesFromRecord(re.Types),
			Dir:      pattern.Direction(re.Dir),
			Weight:   re.Weight,
		}
		if re.OtherOrder != gplan.SelfLoop {
			other, ok := target.VertexByOrder(int(re.OtherOrder))
			if !ok {
				return nil, errors.Wrapf(gplan.ErrInvariantViolation, "stored edge reaches order %d", re.OtherOrder)
			}
			if ee.SrcOrder, ok = src.Order(other); !ok {
				return nil, errors.Wrapf(gplan.ErrInvariantViolation, "stored edge reaches removed vertex %d", other)
			}
		}
		edges[i] = ee
	}
	extend.SortEdges(edges)

	mapping, err := gplan.NewOrderMap(src, target)
	if err != nil {
		return nil, err
	}

	return &gplan.ExtendArc{
		Source:    src,
		Target:    target,
		TargetVtx: v,
		Step: gplan.ExtendStep{
			TargetTypes: typesFromRecord(rec.TargetTypes),
			TargetOrder: int(rec.TargetOrder),
			Edges:       edges,
			Weight:      rec.Weight,
		},
		Mapping: mapping,
	}, nil
}

// Select sends each stored pattern having a selected vertex count to onHit, in key order.
//
// Each pattern is rebuilt from its canonical code, so its vertex IDs are its canonical orders.
func (cat *catalog) Select(sel gplan.PatternSelector, onHit gplan.OnPatternHit) {
	minSize := max(sel.MinSize, 2)
	minKey := [2]byte{kPatternPrefix, byte(minSize)}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Prefix:         minKey[:1],
	})
	defer it.Close()

	for it.Seek(minKey[:]); it.Valid(); it.Next() {
		curKey := it.Item().Key()

		// Stop when the vtx count is over the max
		if !sel.SelectsSize(int(curKey[1])) {
			break
		}

		X, err := pattern.FromCode(curKey[2:])
		if err != nil {
			klog.Errorf("catalog: bad pattern key %x: %v", curKey, err)
			continue
		}
		onHit <- X
	}
}
