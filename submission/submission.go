// Copyright 2026, the Tokentile contributors.

// Package submission models one author's code as a token sequence,
// together with the front-end capability contract used to produce it.
package submission

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/tokentile/tokentile/token"
)

// Language is the capability struct describing a front-end.  Front-ends
// live outside this module; the engine only consumes this contract.
type Language struct {
	// Name identifies the front-end in logs and results.
	Name string

	// Suffixes lists the accepted filename suffixes.
	Suffixes []string

	// MinimumTokenMatch is the front-end's default MTM, used when
	// the configuration does not override it.
	MinimumTokenMatch int

	// TokensHaveSemantics reports whether parsed tokens carry
	// data-flow semantics.
	TokensHaveSemantics bool

	// SupportsNormalization reports whether token streams from this
	// front-end may be normalized.
	SupportsNormalization bool

	// Excluded reports token types that never participate in
	// matching (whitespace-equivalents).  May be nil.
	Excluded func(token.Type) bool

	// Parse produces the token stream for a set of files.  The
	// returned list must end with exactly one FileEnd.  When
	// normalize is set and the front-end supports normalization,
	// tokens must carry semantics.
	Parse func(files []string, normalize bool) ([]token.Token, error)
}

// IsExcluded reports whether t is excluded from matching.
func (l Language) IsExcluded(t token.Type) bool {
	return l.Excluded != nil && l.Excluded(t)
}

// Submission is one candidate: a name and its token sequence.
type Submission struct {
	Name   string
	Lang   Language
	Tokens []token.Token

	// parseErr is set when the front-end failed; such submissions
	// are excluded from comparisons.
	parseErr error
}

// New builds a submission from an already-parsed token stream.
func New(name string, lang Language, tokens []token.Token) (*Submission, error) {
	n := 0
	for _, t := range tokens {
		if t.Type == token.FileEnd {
			n++
		}
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.FileEnd || n != 1 {
		return nil, errors.Errorf("submission %s: token list must end with exactly one FILE_END", name)
	}
	return &Submission{Name: name, Lang: lang, Tokens: tokens}, nil
}

// Invalid builds a placeholder for a submission whose parse failed.
func Invalid(name string, lang Language, err error) *Submission {
	return &Submission{Name: name, Lang: lang, parseErr: err}
}

// ParseError returns the front-end failure, or nil.
func (s *Submission) ParseError() error {
	return s.parseErr
}

// Length is the number of comparable tokens, excluding the FileEnd
// sentinel.  Similarity metrics are defined over this count.
func (s *Submission) Length() int {
	if len(s.Tokens) == 0 {
		return 0
	}
	return len(s.Tokens) - 1
}

// Valid reports whether the submission can enter comparisons under the
// given minimum token match: it parsed, and it has at least MTM+1
// tokens (counting the sentinel).
func (s *Submission) Valid(minimumTokenMatch int) bool {
	return s.parseErr == nil && len(s.Tokens) >= minimumTokenMatch+1
}

// ExcludedMask returns a bitmap over token positions of the types the
// front-end excludes from matching.  The FileEnd position is always
// set, so the sentinel itself is never matched.
func (s *Submission) ExcludedMask() []bool {
	mask := make([]bool, len(s.Tokens))
	for i, t := range s.Tokens {
		if t.Type == token.FileEnd || s.Lang.IsExcluded(t.Type) {
			mask[i] = true
		}
	}
	return mask
}

// SortByName orders submissions by name, for callers that need a
// deterministic traversal.
func SortByName(subs []*Submission) {
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].Name < subs[j].Name
	})
}
