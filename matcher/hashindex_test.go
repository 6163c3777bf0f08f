// Copyright 2026, the Tokentile contributors.

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIndexBuckets(t *testing.T) {
	// A B C A B C $ with the sentinel marked.
	vals := []int{1, 2, 3, 1, 2, 3, 0}
	marked := []bool{false, false, false, false, false, false, true}

	idx := buildHashIndex(vals, marked, 3)
	require.Len(t, idx.hashForStart, 5)

	// Identical windows share a hash; the window covering the
	// sentinel gets none.
	assert.Equal(t, idx.hashForStart[0], idx.hashForStart[3])
	assert.NotEqual(t, noHash, idx.hashForStart[0])
	assert.Equal(t, noHash, idx.hashForStart[4])

	starts := idx.startsWithHash(idx.hashForStart[0])
	assert.Equal(t, []int{0, 3}, starts)
}

func TestHashIndexMarkedWindowsExcluded(t *testing.T) {
	vals := []int{1, 2, 3, 4, 5, 0}
	marked := []bool{false, false, true, false, false, true}

	idx := buildHashIndex(vals, marked, 2)
	require.Len(t, idx.hashForStart, 5)

	// Windows touching position 2 or the sentinel are invalid.
	assert.NotEqual(t, noHash, idx.hashForStart[0])
	assert.Equal(t, noHash, idx.hashForStart[1])
	assert.Equal(t, noHash, idx.hashForStart[2])
	assert.NotEqual(t, noHash, idx.hashForStart[3])
	assert.Equal(t, noHash, idx.hashForStart[4])

	for h, starts := range idx.buckets {
		assert.NotEqual(t, noHash, h)
		for _, s := range starts {
			assert.Contains(t, []int{0, 3}, s)
		}
	}
}

func TestHashIndexShortSequence(t *testing.T) {
	idx := buildHashIndex([]int{1, 0}, []bool{false, true}, 5)
	assert.Empty(t, idx.hashForStart)
	assert.Empty(t, idx.buckets)
}

func TestHashIndexDistinguishesOrder(t *testing.T) {
	// Buzhash is not commutative over token positions when values
	// differ; reversed windows land in different buckets.
	vals := []int{1, 2, 3, 3, 2, 1, 0}
	marked := make([]bool, len(vals))
	marked[len(vals)-1] = true

	idx := buildHashIndex(vals, marked, 3)
	assert.NotEqual(t, idx.hashForStart[0], idx.hashForStart[3])
}
