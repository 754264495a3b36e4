// Package dvh provides dose-volume histogram statistics over voxel value
// selections. All functions are total: empty selections yield a neutral zero
// instead of an error, because upstream checks must degrade, not crash.
package dvh

import "sort"

// Percentile returns the p-th percentile of values using linear interpolation
// between closest ranks. p is clamped into [0, 100]; empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Dx returns the dose level such that (100 - x) percent of the voxel values
// fall at or below it: the minimum dose received by the hottest x percent of
// the volume. D95 is therefore the 5th percentile of the selection. x is
// clamped into [0, 100]; empty input yields 0.
func Dx(values []float64, x float64) float64 {
	if x < 0 {
		x = 0
	} else if x > 100 {
		x = 100
	}
	return Percentile(values, 100-x)
}

// Vx returns the fraction of voxels with value >= xGy (inclusive boundary).
// It is monotonically non-increasing in xGy. Empty input yields 0.
func Vx(values []float64, xGy float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if v >= xGy {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// MaxOf returns the maximum value of the selection, 0 when empty.
func MaxOf(values []float64) float64 {
	max := 0.0
	for i, v := range values {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// MeanOf returns the arithmetic mean of the selection, 0 when empty.
func MeanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Masked selects the values of data under a same-length boolean mask. A mask
// of different length yields nil, leaving shape errors to the caller's
// geometry checks.
func Masked(data []float32, mask []bool) []float64 {
	if len(data) != len(mask) {
		return nil
	}
	out := make([]float64, 0, 256)
	for i, m := range mask {
		if m {
			out = append(out, float64(data[i]))
		}
	}
	return out
}
