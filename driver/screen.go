// Copyright 2026, the Tokentile contributors.

package driver

import (
	"encoding/binary"
	"sync"

	"github.com/willf/bloom"

	"github.com/tokentile/tokentile/submission"
)

// sketch is a Bloom filter over the window hashes of one submission.
// A sketch never reports a false negative, so a pair with zero probe
// hits provably shares no window and can skip tiling.
type sketch struct {
	once   sync.Once
	filter *bloom.BloomFilter
	empty  bool
}

func (d *Driver) sketchFor(s *submission.Submission) *sketch {
	e, _ := d.sketches.LoadOrStore(s.Name, &sketch{})
	sk := e.(*sketch)
	sk.once.Do(func() {
		hashes := d.m.WindowHashes(s)
		if len(hashes) == 0 {
			sk.empty = true
			return
		}
		sk.filter = bloom.New(d.cfg.BloomSize, d.cfg.NumHash)
		var buf [8]byte
		for _, h := range hashes {
			binary.LittleEndian.PutUint64(buf[:], h)
			sk.filter.Add(buf[:])
		}
	})
	return sk
}

// screenPair reports whether the pair is worth tiling.  The smaller
// side's window hashes are probed against the larger side's sketch;
// only a pair with no hit at all is screened out.
func (d *Driver) screenPair(first, second *submission.Submission) bool {
	if d.cfg.BloomSize == 0 {
		return true
	}

	sk := d.sketchFor(second)
	if sk.empty {
		return false
	}

	probes := d.m.WindowHashes(first)
	if len(probes) == 0 {
		return false
	}

	var buf [8]byte
	for _, h := range probes {
		binary.LittleEndian.PutUint64(buf[:], h)
		if sk.filter.Test(buf[:]) {
			return true
		}
	}
	return false
}

// windowDiversity counts the distinct adjacent value pairs in one
// window of token values.
func windowDiversity(window []int, seen map[[2]int]bool) int {
	for k := range seen {
		delete(seen, k)
	}
	for i := 1; i < len(window); i++ {
		seen[[2]int{window[i-1], window[i]}] = true
	}
	return len(seen)
}

// logLowDiversity reports how many windows of s fall below the
// configured diversity floor.  Low-diversity windows (runs of one
// repeated token type) inflate bucket sizes and are worth knowing
// about when a run is slow.
func (d *Driver) logLowDiversity(s *submission.Submission) {
	if d.cfg.MinWindowDiversity <= 0 {
		return
	}
	vals := d.m.ValueList(s)
	w := d.m.WindowLength()
	if len(vals) < w {
		return
	}
	seen := make(map[[2]int]bool, w)
	var low int
	for i := 0; i+w <= len(vals); i++ {
		if windowDiversity(vals[i:i+w], seen) < d.cfg.MinWindowDiversity {
			low++
		}
	}
	if low > 0 {
		d.log.Debugf("%s: %d windows below diversity %d", s.Name, low, d.cfg.MinWindowDiversity)
	}
}
