package dedup

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/2x3systems/gplan/pattern"
)

const DefaultPoolSz = 32 * 1024

type DedupOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// isoEntry is a tuple of patterns already added to an isoSet.
type isoEntry struct {
	key   []byte // concatenated canonical codes, only meaningful when exact
	exact bool
	parts []*pattern.Pattern
}

// isoSet holds tuples of patterns, dropping any tuple that is element-wise isomorphic to one already present.
//
// Tuples are placed in an open hash keyed by their fingerprints: isomorphic tuples always start probing at the same
// slot, so a tuple is new if no entry up to the first empty slot matches it.
type isoSet struct {
	hashMap   map[uint64]int32 // hash => index into entries
	entries   []isoEntry
	hasher    *xxhash.Digest
	bufPool   []byte
	bufPoolSz int
	opts      DedupOpts
}

func newIsoSet(opts DedupOpts) isoSet {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return isoSet{
		hashMap: make(map[uint64]int32),
		hasher:  xxhash.New(),
		opts:    opts,
	}
}

func (set *isoSet) Len() int {
	return len(set.entries)
}

func (set *isoSet) Reset() {
	set.bufPoolSz = 0
	set.entries = set.entries[:0]
	for k := range set.hashMap {
		delete(set.hashMap, k)
	}
}

func (set *isoSet) tryAdd(parts ...*pattern.Pattern) bool {
	var keyBuf [256]byte
	key := keyBuf[:0]
	var fpBuf [8]byte
	exact := true

	set.hasher.Reset()
	for _, p := range parts {
		binary.LittleEndian.PutUint64(fpBuf[:], p.Fingerprint())
		set.hasher.Write(fpBuf[:])

		code, isExact := p.CanonicalCode()
		exact = exact && isExact
		key = binary.AppendUvarint(key, uint64(len(code)))
		key = append(key, code...)
	}
	hash := set.hasher.Sum64()

	idx, found := set.hashMap[hash]
	for found {
		if set.matches(&set.entries[idx], key, exact, parts) {
			return false
		}
		hash++
		idx, found = set.hashMap[hash]
	}

	// If we've gotten here, it means this is a new entry.
	// Place a copy of the key in our backing buf (in the heap).
	// If we run out of space in our pool, we start a new pool
	pos := set.bufPoolSz
	itemLen := len(key)
	if pos+itemLen > cap(set.bufPool) {
		allocSz := max(set.opts.PoolSz, itemLen)
		set.bufPool = make([]byte, allocSz)
		set.bufPoolSz = 0
		pos = 0
	}

	set.hashMap[hash] = int32(len(set.entries))
	set.entries = append(set.entries, isoEntry{
		key:   append(set.bufPool[pos:pos], key...),
		exact: exact,
		parts: append([]*pattern.Pattern(nil), parts...),
	})
	set.bufPoolSz += itemLen
	return true
}

func (set *isoSet) matches(entry *isoEntry, key []byte, exact bool, parts []*pattern.Pattern) bool {
	if entry.exact && exact {
		return bytes.Equal(entry.key, key)
	}
	if len(entry.parts) != len(parts) {
		return false
	}
	for i, p := range parts {
		if !entry.parts[i].IsIsomorphicTo(p) {
			return false
		}
	}
	return true
}

// PatternSet drops patterns isomorphic to one already added.
// Added patterns are retained and must not be mutated afterwards.
type PatternSet struct {
	set isoSet
}

func NewPatternSet(opts DedupOpts) *PatternSet {
	return &PatternSet{
		set: newIsoSet(opts),
	}
}

// TryAdd adds p and returns true if no pattern isomorphic to p was already present.
func (ps *PatternSet) TryAdd(p *pattern.Pattern) bool {
	return ps.set.tryAdd(p)
}

func (ps *PatternSet) Len() int {
	return ps.set.Len()
}

func (ps *PatternSet) Reset() {
	ps.set.Reset()
}

// Patterns returns the patterns added so far, in the order they were added.
func (ps *PatternSet) Patterns() []*pattern.Pattern {
	out := make([]*pattern.Pattern, len(ps.set.entries))
	for i := range ps.set.entries {
		out[i] = ps.set.entries[i].parts[0]
	}
	return out
}

// PairSet drops (probe, build) pairs whose probe and build are each isomorphic to those of a pair already added.
// Added patterns are retained and must not be mutated afterwards.
type PairSet struct {
	set isoSet
}

func NewPairSet(opts DedupOpts) *PairSet {
	return &PairSet{
		set: newIsoSet(opts),
	}
}

// TryAdd adds the given pair and returns true if no isomorphic pair was already present.
func (ps *PairSet) TryAdd(probe, build *pattern.Pattern) bool {
	return ps.set.tryAdd(probe, build)
}

func (ps *PairSet) Len() int {
	return ps.set.Len()
}

func (ps *PairSet) Reset() {
	ps.set.Reset()
}
