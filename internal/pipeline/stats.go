// SPDX-License-Identifier: MIT

package pipeline

// DurationBounds computes the min and max duration over rows in one pass.
// The bounds seed the duration range slider.
//
// A zero bound is treated as "unset" in the update comparisons. The effect:
// the first row seeds both bounds whatever its duration is, and a
// zero-second recording never tightens the range afterwards, so for
// durations [0, 30, 5, 120] the result is (5, 120), not (0, 120). This
// matches the behavior operators have relied on; see the open-question note
// in DESIGN.md before changing it.
func DurationBounds(rows []Row) (min, max int64) {
	for _, r := range rows {
		d := r.Duration
		if max == 0 || d > max {
			max = d
		}
		if min == 0 || d < min {
			min = d
		}
	}
	return min, max
}
