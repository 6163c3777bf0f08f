// Copyright 2026, the Tokentile contributors.

package matcher

// tile runs iterative maximal tilings over the two value lists.  The
// marked bitmaps are mutated as matches are accepted; callers pass
// fresh copies.  Matches of length >= mtm go to global, shorter ones
// (down to the effective window length) to ignored.
func (m *Matcher) tile(leftVals, rightVals []int, leftMarked, rightMarked []bool, leftIdx, rightIdx *hashIndex) (global, ignored []Match) {

	for {
		maxLen := m.minMatchLen
		var iteration []Match

		for i := range leftIdx.hashForStart {
			if leftMarked[i] {
				continue
			}
			h := leftIdx.hashForStart[i]
			if h == noHash {
				continue
			}
			// No run starting here can reach maxLen.
			if len(leftVals)-i <= maxLen {
				continue
			}

			for _, j := range rightIdx.startsWithHash(h) {
				// maxLen may have grown within this bucket.
				if len(leftVals)-i <= maxLen {
					break
				}
				if rightMarked[j] {
					continue
				}
				if len(rightVals)-j <= maxLen {
					continue
				}

				length := maximalUnmarkedRun(leftVals, rightVals, leftMarked, rightMarked, i, j, maxLen)
				if length < maxLen {
					continue
				}
				if length > maxLen {
					iteration = iteration[:0]
					maxLen = length
				}
				mt := Match{StartInFirst: i, StartInSecond: j, Length: length}
				if !overlapsAny(iteration, mt) {
					iteration = append(iteration, mt)
				}
			}
		}

		if len(iteration) == 0 {
			break
		}

		for _, mt := range iteration {
			if mt.Length < m.mtm {
				ignored = append(ignored, mt)
			} else {
				global = append(global, mt)
			}
			for k := 0; k < mt.Length; k++ {
				leftMarked[mt.StartInFirst+k] = true
				rightMarked[mt.StartInSecond+k] = true
			}
		}

		if maxLen <= m.minMatchLen {
			break
		}
	}

	return global, ignored
}

// maximalUnmarkedRun verifies the candidate window of the given start
// length backwards from position start-1, returning 0 on any mismatch
// or marked position, then extends forward.  The marked FileEnd
// sentinels at both tails stop the forward phase without bounds tests.
func maximalUnmarkedRun(leftVals, rightVals []int, leftMarked, rightMarked []bool, i, j, start int) int {

	for k := start - 1; k >= 0; k-- {
		if leftVals[i+k] != rightVals[j+k] || leftMarked[i+k] || rightMarked[j+k] {
			return 0
		}
	}

	length := start
	for leftVals[i+length] == rightVals[j+length] && !leftMarked[i+length] && !rightMarked[j+length] {
		length++
	}
	return length
}

// overlapsAny checks mt against the accepted matches of the current
// iteration in reverse insertion order, biasing ties toward
// earlier-discovered matches.
func overlapsAny(iteration []Match, mt Match) bool {
	for k := len(iteration) - 1; k >= 0; k-- {
		if iteration[k].Overlaps(mt) {
			return true
		}
	}
	return false
}
