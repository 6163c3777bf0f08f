// Copyright 2026, the Tokentile contributors.

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityMetrics(t *testing.T) {
	a := makeSub(t, "a", "ABCDEFGH")         // 8 tokens
	b := makeSub(t, "b", "ABCDEFGHIJKLMNOP") // 16 tokens
	cmp := &Comparison{
		First:  a,
		Second: b,
		Matches: []Match{
			{StartInFirst: 0, StartInSecond: 0, Length: 5},
			{StartInFirst: 5, StartInSecond: 8, Length: 3},
		},
	}

	assert.Equal(t, 8, cmp.MatchedTokens())
	assert.InDelta(t, 2.0*8/24, cmp.Similarity(MetricAvg), 1e-12)
	assert.InDelta(t, 2.0*8/24, cmp.Similarity(MetricSymmetric), 1e-12)
	assert.InDelta(t, 1.0, cmp.Similarity(MetricMin), 1e-12)
	assert.InDelta(t, 0.5, cmp.Similarity(MetricMax), 1e-12)
	assert.Equal(t, 8.0, cmp.Similarity(MetricIntersection))
	assert.Equal(t, 5.0, cmp.Similarity(MetricLongestMatch))
	assert.Equal(t, 24.0, cmp.Similarity(MetricOverall))
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("avg")
	require.NoError(t, err)
	assert.Equal(t, MetricAvg, m)

	m, err = ParseMetric(" Longest_Match ")
	require.NoError(t, err)
	assert.Equal(t, MetricLongestMatch, m)

	_, err = ParseMetric("cosine")
	assert.Error(t, err)
}

func TestMatchOverlap(t *testing.T) {
	m := Match{StartInFirst: 10, StartInSecond: 20, Length: 5}

	assert.True(t, m.Overlaps(Match{StartInFirst: 14, StartInSecond: 40, Length: 3}))
	assert.True(t, m.Overlaps(Match{StartInFirst: 40, StartInSecond: 24, Length: 3}))
	assert.False(t, m.Overlaps(Match{StartInFirst: 15, StartInSecond: 25, Length: 3}))
	assert.False(t, m.Overlaps(Match{StartInFirst: 0, StartInSecond: 0, Length: 10}))
}
