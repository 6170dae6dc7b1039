/*
 * block.go, part of trajectory.
 *
 * Copyright 2016 The trajectory developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package trajectory

// BlockSizeFunc infers a block size from a raw step sequence. It
// returns the number of frames per block, or 0 when no periodic
// structure is found. Implementations must accept empty and
// single-element input.
type BlockSizeFunc func(steps []int) int

// DetectBlockSize is the default block-size heuristic. It looks at the
// spacing between consecutive steps: regularly spaced steps (linear
// sampling) have a trivial block of 1; a spacing pattern that restarts
// periodically (log-linear sampling, where each block begins with
// small increments that grow until the next block starts) yields the
// period of that pattern. A spacing sequence with no repetition yields
// 0, meaning no block structure was detected.
func DetectBlockSize(steps []int) int {
	if len(steps) < 2 {
		return 0
	}
	delta := make([]int, len(steps)-1)
	for i := range delta {
		delta[i] = steps[i+1] - steps[i]
	}
	constant := true
	for _, d := range delta[1:] {
		if d != delta[0] {
			constant = false
			break
		}
	}
	if constant {
		return 1
	}
	//A block restarts where the spacing drops. The first drop fixes
	//the candidate period, then the whole spacing sequence must agree
	//with it.
	period := 0
	for i := 1; i < len(delta); i++ {
		if delta[i] < delta[i-1] {
			period = i
			break
		}
	}
	if period == 0 {
		return 0
	}
	for i := range delta {
		if delta[i] != delta[i%period] {
			return 0
		}
	}
	return period
}
