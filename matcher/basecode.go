// Copyright 2026, the Tokentile contributors.

package matcher

import (
	"github.com/golang-collections/go-datastructures/bitarray"
	"github.com/pkg/errors"

	"github.com/tokentile/tokentile/submission"
)

// GenerateBaseCodeMarking tiles s against the base-code submission and
// records every covered position of s in a per-submission bitmap.
// Regular comparisons of s afterwards treat those positions as marked
// from the start.  The cached hash index and value-list of s are
// invalidated; rebuilding is lazy.
//
// The marking is computed from the excluded-type mask alone, so
// repeated calls with the same base produce the same bitmap.
func (m *Matcher) GenerateBaseCodeMarking(s, base *submission.Submission) (*Comparison, error) {
	if s == nil || base == nil {
		return nil, errors.New("base-code marking: nil submission")
	}
	if !base.Valid(m.mtm) {
		return nil, errors.Errorf("base code %s is too short: %d tokens, need at least %d",
			base.Name, len(base.Tokens), m.mtm+1)
	}

	cmp := &Comparison{First: s, Second: base}
	if s.Length() < m.minMatchLen {
		return cmp, nil
	}

	leftVals := m.interner.Values(s.Tokens)
	rightVals := m.interner.Values(base.Tokens)
	leftMarked := s.ExcludedMask()
	rightMarked := base.ExcludedMask()

	// Not cached: regular indices include the base-code mask, and
	// the base side never enters regular comparisons.
	leftIdx := buildHashIndex(leftVals, leftMarked, m.minMatchLen)
	rightIdx := buildHashIndex(rightVals, rightMarked, m.minMatchLen)

	global, ignored := m.tile(leftVals, rightVals, leftMarked, rightMarked, leftIdx, rightIdx)
	cmp.Matches = global
	cmp.IgnoredMatches = ignored

	mask := bitarray.NewBitArray(uint64(len(s.Tokens)))
	for _, set := range [][]Match{global, ignored} {
		for _, mt := range set {
			for k := 0; k < mt.Length; k++ {
				if err := mask.SetBit(uint64(mt.StartInFirst + k)); err != nil {
					return nil, errors.Wrapf(err, "base-code mask for %s", s.Name)
				}
			}
		}
	}
	m.baseMasks.Store(s.Name, mask)
	m.invalidate(s.Name)

	return cmp, nil
}

// HasBaseCodeMarking reports whether s has a recorded base-code mask.
func (m *Matcher) HasBaseCodeMarking(s *submission.Submission) bool {
	_, ok := m.baseMasks.Load(s.Name)
	return ok
}
