package engine

// findTarget returns the slot the tile at x slides to. The scan walks back
// from x-1 and never goes below barrier, the first slot still allowed to
// take part in a merge during this pass.
func findTarget(lane []Exponent, x, barrier int) int {
	if x == 0 {
		return x
	}
	for t := x - 1; ; t-- {
		if lane[t] != 0 {
			if !mergeable(lane[t], lane[x]) {
				return t + 1
			}
			return t
		}
		if t <= barrier {
			return t
		}
	}
}

// compactLane slides every tile of the lane toward index 0, merging equal
// neighbours once. A tile produced by a merge cannot merge again in the
// same pass. The lane is modified in place.
func compactLane(lane []Exponent) (scoreDelta uint64, changed bool) {
	barrier := 0
	for x := range lane {
		if lane[x] == 0 {
			continue
		}
		t := findTarget(lane, x, barrier)
		if t == x {
			continue
		}
		switch lane[t] {
		case 0:
			lane[t] = lane[x]
		case lane[x]:
			lane[t]++
			scoreDelta += uint64(TileValue(lane[t]))
			barrier = t + 1
		}
		lane[x] = 0
		changed = true
	}
	return scoreDelta, changed
}
