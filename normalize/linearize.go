// Copyright 2026, the Tokentile contributors.

package normalize

import (
	"sort"

	"github.com/tokentile/tokentile/token"
)

// linearize performs the layered deterministic topological walk: all
// statements with in-degree zero form a layer, each layer is drained
// in comparator order before any newly freed statement is considered.
func (dg *depGraph) linearize() []*Statement {
	indeg := make(map[int64]int, len(dg.stmts))
	var roots []*Statement
	for _, s := range dg.stmts {
		n := dg.g.To(s.id).Len()
		indeg[s.id] = n
		if n == 0 {
			roots = append(roots, s)
		}
	}

	out := make([]*Statement, 0, len(dg.stmts))
	for len(roots) > 0 {
		sort.Slice(roots, func(i, j int) bool {
			return less(roots[i], roots[j])
		})

		var next []*Statement
		for _, s := range roots {
			out = append(out, s)
			succs := dg.g.From(s.id)
			for succs.Next() {
				t := succs.Node().(*Statement)
				indeg[t.id]--
				if indeg[t.id] == 0 {
					next = append(next, t)
				}
			}
		}
		roots = next
	}
	return out
}

// Normalize rewrites the token stream into its canonical form.  Tokens
// must carry semantics; a stream without them is returned unchanged.
// The result keeps each surviving token's original source location and
// ends with the input's FileEnd sentinel.
func Normalize(tokens []token.Token) []token.Token {
	if len(tokens) == 0 {
		return tokens
	}
	for _, t := range tokens {
		if t.Type != token.FileEnd && t.Semantics == nil {
			return tokens
		}
	}

	stmts, fileEnd := buildStatements(tokens)
	dg := buildGraph(stmts)
	dg.spreadKeep()
	dg.prune()

	out := make([]token.Token, 0, len(tokens))
	for _, s := range dg.linearize() {
		out = append(out, s.Tokens...)
	}
	return append(out, fileEnd)
}
