// Copyright 2026, the Tokentile contributors.

package token

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileEndIsZero(t *testing.T) {
	in := NewInterner()
	assert.Equal(t, 0, in.Value(FileEnd))

	// Still zero after other types were assigned.
	in.Value(Type("IF"))
	in.Value(Type("LOOP"))
	assert.Equal(t, 0, in.Value(FileEnd))
}

func TestValuesAreDenseAndStable(t *testing.T) {
	in := NewInterner()
	a := in.Value(Type("A"))
	b := in.Value(Type("B"))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, a, in.Value(Type("A")))
	assert.Equal(t, b, in.Value(Type("B")))
	assert.Equal(t, 3, in.Size())
}

func TestValuesListIncludesSentinel(t *testing.T) {
	in := NewInterner()
	tokens := []Token{
		{Type: Type("X")},
		{Type: Type("Y")},
		{Type: Type("X")},
		NewFileEnd("f"),
	}
	vals := in.Values(tokens)
	assert.Equal(t, []int{1, 2, 1, 0}, vals)
}

func TestConcurrentInterning(t *testing.T) {
	in := NewInterner()

	var wg sync.WaitGroup
	results := make([][]int, 32)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			vals := make([]int, 64)
			for i := range vals {
				vals[i] = in.Value(Type(fmt.Sprintf("T%02d", i)))
			}
			results[g] = vals
		}(g)
	}
	wg.Wait()

	// Every goroutine observed the same assignment.
	for g := 1; g < len(results); g++ {
		assert.Equal(t, results[0], results[g])
	}

	// Dense: 64 types plus FileEnd.
	assert.Equal(t, 65, in.Size())
	seen := make(map[int]bool)
	for _, v := range results[0] {
		assert.False(t, seen[v])
		assert.Greater(t, v, 0)
		assert.LessOrEqual(t, v, 64)
		seen[v] = true
	}
}
