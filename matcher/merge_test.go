// Copyright 2026, the Tokentile contributors.

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBridgedChain(t *testing.T) {
	global := []Match{
		{StartInFirst: 0, StartInSecond: 0, Length: 5},
		{StartInFirst: 10, StartInSecond: 10, Length: 5},
	}
	ignored := []Match{
		{StartInFirst: 6, StartInSecond: 6, Length: 3},
	}

	out := mergeMatches(global, ignored, 2, 0)
	require.Len(t, out, 1)
	assert.Equal(t, Match{StartInFirst: 0, StartInSecond: 0, Length: 15}, out[0])
}

func TestMergeChainGapDefinition(t *testing.T) {
	// Gaps are measured between consecutive chain elements, bridges
	// included: the direct gap between the accepted matches is 5,
	// well above the buffer, yet the chain A-I-B with per-step gaps
	// of 1 merges.
	global := []Match{
		{StartInFirst: 0, StartInSecond: 0, Length: 4},
		{StartInFirst: 9, StartInSecond: 9, Length: 4},
	}
	ignored := []Match{
		{StartInFirst: 5, StartInSecond: 5, Length: 3},
	}

	out := mergeMatches(global, ignored, 1, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 13, out[0].Length)
}

func TestMergeDirectAdjacency(t *testing.T) {
	// No bridge needed when the accepted matches are close enough.
	global := []Match{
		{StartInFirst: 0, StartInSecond: 0, Length: 5},
		{StartInFirst: 7, StartInSecond: 7, Length: 5},
	}

	out := mergeMatches(global, nil, 2, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 12, out[0].Length)
}

func TestMergeRejectsWideGap(t *testing.T) {
	global := []Match{
		{StartInFirst: 0, StartInSecond: 0, Length: 5},
		{StartInFirst: 20, StartInSecond: 20, Length: 5},
	}

	out := mergeMatches(global, nil, 2, 0)
	assert.Len(t, out, 2)
}

func TestMergeRejectsInconsistentOrdering(t *testing.T) {
	// The candidate pair is adjacent on the first side but reversed
	// on the second; merging would fabricate a crossing match.
	global := []Match{
		{StartInFirst: 0, StartInSecond: 20, Length: 5},
		{StartInFirst: 6, StartInSecond: 0, Length: 5},
	}

	out := mergeMatches(global, nil, 2, 0)
	assert.Len(t, out, 2)
}

func TestMergeLengthCapsBridges(t *testing.T) {
	global := []Match{
		{StartInFirst: 0, StartInSecond: 0, Length: 4},
		{StartInFirst: 14, StartInSecond: 14, Length: 4},
	}
	ignored := []Match{
		{StartInFirst: 5, StartInSecond: 5, Length: 3},
		{StartInFirst: 9, StartInSecond: 9, Length: 4},
	}

	// Two bridges are needed; capping at one keeps the matches
	// separate, unlimited merges them.
	out := mergeMatches(global, ignored, 1, 1)
	assert.Len(t, out, 2)

	out = mergeMatches(global, ignored, 1, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 18, out[0].Length)
}

func TestMergeKeepsResultNonOverlapping(t *testing.T) {
	// Unequal gaps on the two sides: the merged match takes the
	// shorter span so it cannot collide with a neighbor.
	global := []Match{
		{StartInFirst: 0, StartInSecond: 0, Length: 4},
		{StartInFirst: 6, StartInSecond: 5, Length: 4},
		{StartInFirst: 30, StartInSecond: 9, Length: 4},
	}

	out := mergeMatches(global, nil, 2, 0)
	require.Len(t, out, 2)
	assert.Equal(t, Match{StartInFirst: 0, StartInSecond: 0, Length: 9}, out[0])
	assert.False(t, out[0].Overlaps(out[1]))
}
