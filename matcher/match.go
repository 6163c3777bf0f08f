// Copyright 2026, the Tokentile contributors.

// Package matcher implements the similarity engine: a thread-safe
// Greedy String Tiling comparator over interned token values, with a
// rolling-hash subsequence index, base-code subtraction and
// neighborhood match merging.
package matcher

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/tokentile/tokentile/submission"
)

// Match is a shared region between two submissions: Length tokens
// starting at StartInFirst and StartInSecond.
type Match struct {
	StartInFirst  int `json:"startInFirst"`
	StartInSecond int `json:"startInSecond"`
	Length        int `json:"length"`
}

// EndInFirst is the index one past the match on the first side.
func (m Match) EndInFirst() int { return m.StartInFirst + m.Length }

// EndInSecond is the index one past the match on the second side.
func (m Match) EndInSecond() int { return m.StartInSecond + m.Length }

// Overlaps reports whether the index ranges of m and o intersect on
// either side.
func (m Match) Overlaps(o Match) bool {
	if m.StartInFirst < o.EndInFirst() && o.StartInFirst < m.EndInFirst() {
		return true
	}
	return m.StartInSecond < o.EndInSecond() && o.StartInSecond < m.EndInSecond()
}

// Comparison is the outcome of tiling two submissions.  First is, by
// convention, the submission with the smaller token count (ties broken
// by name).
type Comparison struct {
	First  *submission.Submission
	Second *submission.Submission

	// Matches are the accepted tilings, each of length >= the
	// minimum token match (after optional merging).
	Matches []Match

	// IgnoredMatches fell below the minimum token match but reached
	// the merge window; they serve as bridges during merging.
	IgnoredMatches []Match
}

// MatchedTokens is the total number of tokens covered by Matches.
func (c *Comparison) MatchedTokens() int {
	var n int
	for _, m := range c.Matches {
		n += m.Length
	}
	return n
}

// LongestMatch is the length of the longest accepted match.
func (c *Comparison) LongestMatch() int {
	var n int
	for _, m := range c.Matches {
		if m.Length > n {
			n = m.Length
		}
	}
	return n
}

// Metric selects a similarity formula.
type Metric string

const (
	MetricAvg          Metric = "AVG"
	MetricMin          Metric = "MIN"
	MetricMax          Metric = "MAX"
	MetricSymmetric    Metric = "SYMMETRIC"
	MetricIntersection Metric = "INTERSECTION"
	MetricLongestMatch Metric = "LONGEST_MATCH"
	MetricOverall      Metric = "OVERALL"
)

// Metrics lists every known metric.
var Metrics = []Metric{
	MetricAvg, MetricMin, MetricMax, MetricSymmetric,
	MetricIntersection, MetricLongestMatch, MetricOverall,
}

// ParseMetric resolves a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	u := Metric(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range Metrics {
		if m == u {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown similarity metric %q", s)
}

// Similarity evaluates the metric over the comparison.  Token counts
// exclude the FileEnd sentinel.
func (c *Comparison) Similarity(met Metric) float64 {
	lf := c.First.Length()
	ls := c.Second.Length()
	m := float64(c.MatchedTokens())

	switch met {
	case MetricAvg, MetricSymmetric:
		if lf+ls == 0 {
			return 0
		}
		return 2 * m / float64(lf+ls)
	case MetricMin:
		n := lf
		if ls < n {
			n = ls
		}
		if n == 0 {
			return 0
		}
		return m / float64(n)
	case MetricMax:
		n := lf
		if ls > n {
			n = ls
		}
		if n == 0 {
			return 0
		}
		return m / float64(n)
	case MetricIntersection:
		return m
	case MetricLongestMatch:
		return float64(c.LongestMatch())
	case MetricOverall:
		return float64(lf + ls)
	}
	return 0
}
