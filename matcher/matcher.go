// Copyright 2026, the Tokentile contributors.

package matcher

import (
	"sync"

	"github.com/golang-collections/go-datastructures/bitarray"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/tokentile/tokentile/submission"
	"github.com/tokentile/tokentile/token"
)

// indexCacheSize bounds the number of cached per-submission hash
// indices.  Evicted indices are rebuilt lazily.
const indexCacheSize = 4096

// Matcher compares pairs of submissions with Greedy String Tiling.
// A single matcher may serve many pairs concurrently: the interner and
// the index cache's entry table are guarded by locks, and each
// per-submission cache entry is immutable after publication.
type Matcher struct {
	mtm         int
	mergeBuffer int
	mergeLength int
	minMatchLen int

	interner *token.Interner

	// values caches interned value-lists by submission name.
	values sync.Map

	// indexMu guards entry creation in indices; index construction
	// itself runs outside the lock under the entry's once.
	indexMu sync.Mutex
	indices *lru.Cache[string, *indexEntry]

	// baseMasks holds per-submission base-code bitmaps.
	baseMasks sync.Map
}

type valueEntry struct {
	once sync.Once
	vals []int
}

type indexEntry struct {
	once sync.Once
	idx  *hashIndex
}

// New returns a matcher for the given minimum token match and merge
// parameters.  The effective hash window is max(1, mtm-mergeBuffer).
func New(minimumTokenMatch, mergeBuffer, mergeLength int) (*Matcher, error) {
	if minimumTokenMatch < 1 {
		return nil, errors.Errorf("minimum token match must be >= 1, got %d", minimumTokenMatch)
	}
	if mergeBuffer < 0 {
		return nil, errors.Errorf("merge buffer must be >= 0, got %d", mergeBuffer)
	}
	mml := minimumTokenMatch - mergeBuffer
	if mml < 1 {
		mml = 1
	}
	indices, err := lru.New[string, *indexEntry](indexCacheSize)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		mtm:         minimumTokenMatch,
		mergeBuffer: mergeBuffer,
		mergeLength: mergeLength,
		minMatchLen: mml,
		interner:    token.NewInterner(),
		indices:     indices,
	}, nil
}

// MinimumTokenMatch returns the configured MTM.
func (m *Matcher) MinimumTokenMatch() int { return m.mtm }

// Interner exposes the matcher's token-type interner.
func (m *Matcher) Interner() *token.Interner { return m.interner }

// OrderPair returns the pair in canonical order: the submission with
// the smaller token count first, ties broken by name.
func OrderPair(a, b *submission.Submission) (*submission.Submission, *submission.Submission) {
	if len(a.Tokens) < len(b.Tokens) {
		return a, b
	}
	if len(b.Tokens) < len(a.Tokens) {
		return b, a
	}
	if a.Name <= b.Name {
		return a, b
	}
	return b, a
}

// valueList returns the memoized value-list for s.
func (m *Matcher) valueList(s *submission.Submission) []int {
	e, _ := m.values.LoadOrStore(s.Name, &valueEntry{})
	ve := e.(*valueEntry)
	ve.once.Do(func() {
		ve.vals = m.interner.Values(s.Tokens)
	})
	return ve.vals
}

// initialMarked builds the starting bitmap for s: excluded token types
// plus any recorded base-code positions.
func (m *Matcher) initialMarked(s *submission.Submission) []bool {
	mask := s.ExcludedMask()
	if v, ok := m.baseMasks.Load(s.Name); ok {
		ba := v.(bitarray.BitArray)
		for i := range mask {
			if set, err := ba.GetBit(uint64(i)); err == nil && set {
				mask[i] = true
			}
		}
	}
	return mask
}

// index returns the cached hash index for s, building it on first use.
func (m *Matcher) index(s *submission.Submission, vals []int, marked []bool) *hashIndex {
	m.indexMu.Lock()
	entry, ok := m.indices.Get(s.Name)
	if !ok {
		entry = &indexEntry{}
		m.indices.Add(s.Name, entry)
	}
	m.indexMu.Unlock()

	entry.once.Do(func() {
		entry.idx = buildHashIndex(vals, marked, m.minMatchLen)
	})
	return entry.idx
}

// invalidate drops the cached index and value-list for name.  Called
// when base-code markings change; rebuild is lazy.
func (m *Matcher) invalidate(name string) {
	m.indexMu.Lock()
	m.indices.Remove(name)
	m.indexMu.Unlock()
	m.values.Delete(name)
}

// WindowHashes returns the hashes of all unmarked windows of s, for
// callers that sketch submissions (pair screening).
func (m *Matcher) WindowHashes(s *submission.Submission) []uint64 {
	vals := m.valueList(s)
	idx := m.index(s, vals, m.initialMarked(s))
	return idx.windowHashes()
}

// ValueList returns the memoized interned value-list for s.
func (m *Matcher) ValueList(s *submission.Submission) []int {
	return m.valueList(s)
}

// WindowLength returns the effective hash window length.
func (m *Matcher) WindowLength() int { return m.minMatchLen }

// Compare tiles a and b and returns the comparison, with the smaller
// submission first.  Pairs where either side is shorter than the
// minimum match length yield an empty comparison, never an error.
func (m *Matcher) Compare(a, b *submission.Submission) (*Comparison, error) {
	if a == nil || b == nil {
		return nil, errors.New("compare: nil submission")
	}
	first, second := OrderPair(a, b)
	cmp := &Comparison{First: first, Second: second}

	if first.Length() < m.minMatchLen || second.Length() < m.minMatchLen {
		return cmp, nil
	}

	leftVals := m.valueList(first)
	rightVals := m.valueList(second)
	leftMarked := m.initialMarked(first)
	rightMarked := m.initialMarked(second)

	leftIdx := m.index(first, leftVals, leftMarked)
	rightIdx := m.index(second, rightVals, rightMarked)

	global, ignored := m.tile(leftVals, rightVals, leftMarked, rightMarked, leftIdx, rightIdx)
	if m.mergeBuffer > 0 {
		global = mergeMatches(global, ignored, m.mergeBuffer, m.mergeLength)
	}
	cmp.Matches = global
	cmp.IgnoredMatches = ignored
	return cmp, nil
}
