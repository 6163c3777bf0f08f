// Copyright 2026, the Tokentile contributors.

package matcher

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/chmduquesne/rollinghash/buzhash64"
)

// noHash marks window starts whose window contains a marked position.
// The buzhash output is remapped on the (one in 2^64) collision with
// this sentinel; equality is reverified on every hit, so the resulting
// bucket aliasing is harmless.
const noHash uint64 = math.MaxUint64

// hashTable backs the rolling hash.  The seed is fixed: indices must
// hash identically across goroutines and runs.
var hashTable = genHashTable()

func genHashTable() [256]uint64 {
	rng := rand.New(rand.NewSource(0x746b74696c65))
	var tab [256]uint64
	seen := make(map[uint64]bool)
	for i := range tab {
		for {
			x := rng.Uint64()
			if !seen[x] {
				tab[i] = x
				seen[x] = true
				break
			}
		}
	}
	return tab
}

// hashIndex is the per-submission subsequence index: the rolling hash
// of every window of w token values, and buckets mapping each hash to
// the ascending list of start positions whose window is free of marked
// tokens.
type hashIndex struct {
	w            int
	hashForStart []uint64
	buckets      map[uint64][]int
}

// buildHashIndex indexes vals under the marked bitmap.  Token values
// are fed to the rolling hash four bytes at a time, so the hash window
// is 4*w bytes and one Roll step consumes one token.
func buildHashIndex(vals []int, marked []bool, w int) *hashIndex {
	idx := &hashIndex{w: w, buckets: make(map[uint64][]int)}
	n := len(vals)
	if w < 1 || n < w {
		return idx
	}
	idx.hashForStart = make([]uint64, n-w+1)

	h := buzhash64.NewFromUint64Array(hashTable)
	var buf [4]byte
	lastMarked := -1

	for p := 0; p < w; p++ {
		binary.LittleEndian.PutUint32(buf[:], uint32(vals[p]))
		h.Write(buf[:])
		if marked[p] {
			lastMarked = p
		}
	}

	for i := 0; ; i++ {
		hv := h.Sum64()
		if hv == noHash {
			hv ^= 1
		}
		if lastMarked >= i {
			idx.hashForStart[i] = noHash
		} else {
			idx.hashForStart[i] = hv
			idx.buckets[hv] = append(idx.buckets[hv], i)
		}

		if i+w >= n {
			break
		}
		binary.LittleEndian.PutUint32(buf[:], uint32(vals[i+w]))
		for _, b := range buf {
			h.Roll(b)
		}
		if marked[i+w] {
			lastMarked = i + w
		}
	}

	return idx
}

// startsWithHash returns the bucket for h, nil if none.
func (x *hashIndex) startsWithHash(h uint64) []int {
	return x.buckets[h]
}

// windowHashes returns the distinct hashes of all unmarked windows.
func (x *hashIndex) windowHashes() []uint64 {
	out := make([]uint64, 0, len(x.buckets))
	for h := range x.buckets {
		out = append(out, h)
	}
	return out
}
