// Copyright 2026, the Tokentile contributors.

package token

import (
	"sync"

	"go.uber.org/atomic"
)

// Interner assigns a dense non-negative integer to every token type it
// sees.  The matcher compares these integers instead of Type values.
// FileEnd always gets value 0.
//
// Assignment is guarded by a mutex; lookups of previously assigned
// types read an atomically published snapshot and never block.
type Interner struct {
	mu   sync.Mutex
	snap atomic.Pointer[map[Type]int]
}

// NewInterner returns an interner with FileEnd pre-assigned to 0.
func NewInterner() *Interner {
	in := &Interner{}
	m := map[Type]int{FileEnd: 0}
	in.snap.Store(&m)
	return in
}

// Value returns the integer assigned to t, assigning the next free
// value on first sight.  Once assigned, the value never changes.
func (in *Interner) Value(t Type) int {
	if v, ok := (*in.snap.Load())[t]; ok {
		return v
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	// Re-check under the lock; another goroutine may have won.
	old := *in.snap.Load()
	if v, ok := old[t]; ok {
		return v
	}

	next := len(old)
	m := make(map[Type]int, len(old)+1)
	for k, v := range old {
		m[k] = v
	}
	m[t] = next
	in.snap.Store(&m)

	return next
}

// Values converts a token list to its value-list.
func (in *Interner) Values(tokens []Token) []int {
	vals := make([]int, len(tokens))
	for i, tok := range tokens {
		vals[i] = in.Value(tok.Type)
	}
	return vals
}

// Size returns the number of assigned types.
func (in *Interner) Size() int {
	return len(*in.snap.Load())
}
