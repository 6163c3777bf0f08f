// Copyright 2026, the Tokentile contributors.

package matcher

import "sort"

// mergeMatches collapses accepted matches whose gaps can be bridged by
// chains of ignored matches.  Gaps are measured between consecutive
// elements of the chain A, I1..Ik, B on both sides, bridges included;
// every consecutive gap must be <= mergeBuffer and every bridge must
// lie strictly between its endpoints on both sides.  mergeLength caps
// the number of bridges per chain (0 = unlimited).  The result stays
// non-overlapping.
func mergeMatches(global, ignored []Match, mergeBuffer, mergeLength int) []Match {
	if len(global) < 2 {
		return global
	}

	gs := append([]Match(nil), global...)
	sort.Slice(gs, func(i, j int) bool {
		return gs[i].StartInFirst < gs[j].StartInFirst
	})
	ign := append([]Match(nil), ignored...)
	sort.Slice(ign, func(i, j int) bool {
		return ign[i].StartInFirst < ign[j].StartInFirst
	})

	var out []Match
	cur := gs[0]
	for _, next := range gs[1:] {
		if merged, ok := bridge(cur, next, ign, mergeBuffer, mergeLength); ok {
			cur = merged
		} else {
			out = append(out, cur)
			cur = next
		}
	}
	return append(out, cur)
}

// bridge attempts to connect a to b through ignored matches, walking
// greedily to the leftmost reachable bridge at each step.
func bridge(a, b Match, ign []Match, mergeBuffer, mergeLength int) (Match, bool) {
	// Ordering must be consistent on both sides.
	if b.StartInSecond < a.EndInSecond() {
		return Match{}, false
	}

	cur := a
	bridges := 0
	for {
		if gap(cur.EndInFirst(), b.StartInFirst) <= mergeBuffer &&
			gap(cur.EndInSecond(), b.StartInSecond) <= mergeBuffer {
			return merged(a, b), true
		}
		if mergeLength > 0 && bridges == mergeLength {
			return Match{}, false
		}

		found := false
		for _, i := range ign {
			// Strictly between cur and b on both sides.
			if i.StartInFirst < cur.EndInFirst() || i.StartInSecond < cur.EndInSecond() {
				continue
			}
			if i.EndInFirst() > b.StartInFirst || i.EndInSecond() > b.StartInSecond {
				continue
			}
			if gap(cur.EndInFirst(), i.StartInFirst) <= mergeBuffer &&
				gap(cur.EndInSecond(), i.StartInSecond) <= mergeBuffer {
				cur = i
				bridges++
				found = true
				break
			}
		}
		if !found {
			return Match{}, false
		}
	}
}

func gap(end, start int) int {
	return start - end
}

// merged covers the chain endpoints with a single match.  The two
// sides may span slightly different widths when gaps differ; the
// shorter span is used so the result cannot overlap a neighbor.
func merged(a, b Match) Match {
	spanFirst := b.EndInFirst() - a.StartInFirst
	spanSecond := b.EndInSecond() - a.StartInSecond
	length := spanFirst
	if spanSecond < length {
		length = spanSecond
	}
	return Match{
		StartInFirst:  a.StartInFirst,
		StartInSecond: a.StartInSecond,
		Length:        length,
	}
}
