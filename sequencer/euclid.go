package sequencer

import "sort"

// PulsePositions distributes pulses as evenly as possible over steps using
// Bjorklund's algorithm. Returns sorted step indices; pulses is clamped
// to [0, steps].
func PulsePositions(steps, pulses int) []int {
	if steps <= 0 {
		return []int{}
	}
	k := clampInt(pulses, 0, steps)
	if k == 0 {
		return []int{}
	}
	if k == steps {
		all := make([]int, steps)
		for i := range all {
			all[i] = i
		}
		return all
	}

	groups := make([][]bool, 0, steps)
	for i := 0; i < k; i++ {
		groups = append(groups, []bool{true})
	}
	for i := k; i < steps; i++ {
		groups = append(groups, []bool{false})
	}

	for {
		last := groups[len(groups)-1]
		tailCount := 0
		for i := len(groups) - 1; i >= 0 && sameGroup(groups[i], last); i-- {
			tailCount++
		}
		headCount := len(groups) - tailCount
		if tailCount <= 1 || headCount == 0 {
			break
		}

		mergeCount := min(headCount, tailCount)
		next := make([][]bool, 0, len(groups)-mergeCount)
		for i := 0; i < mergeCount; i++ {
			merged := make([]bool, 0, len(groups[i])+len(groups[headCount+i]))
			merged = append(merged, groups[i]...)
			merged = append(merged, groups[headCount+i]...)
			next = append(next, merged)
		}
		next = append(next, groups[mergeCount:headCount]...)
		next = append(next, groups[headCount+mergeCount:]...)
		groups = next
	}

	positions := make([]int, 0, k)
	idx := 0
	for _, g := range groups {
		for _, pulse := range g {
			if pulse {
				positions = append(positions, idx)
			}
			idx++
		}
	}
	return positions
}

func sameGroup(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RotatePositions shifts the pattern's start point by offset steps
// (negative and oversized offsets wrap) and returns the indices sorted.
func RotatePositions(positions []int, offset, steps int) []int {
	if steps <= 0 || len(positions) == 0 {
		return positions
	}
	effective := ((offset % steps) + steps) % steps
	rotated := make([]int, len(positions))
	for i, p := range positions {
		rotated[i] = (p - effective + steps) % steps
	}
	sort.Ints(rotated)
	return rotated
}

// EuclideanPattern is PulsePositions followed by RotatePositions
func EuclideanPattern(steps, pulses, rotation int) []int {
	return RotatePositions(PulsePositions(steps, pulses), rotation, steps)
}

// hasPulse reports whether step is one of positions
func hasPulse(positions []int, step int) bool {
	i := sort.SearchInts(positions, step)
	return i < len(positions) && positions[i] == step
}
