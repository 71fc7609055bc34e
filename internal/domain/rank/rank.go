// Package rank implements the ranking primitives used by the pipeline. Each
// primitive names its tie semantics explicitly:
//
//   - DenseDescending: ties share a rank, the next distinct value gets rank+1.
//   - MinDescending: ties share the best rank among them, gaps follow.
//   - AveragePercentile: ascending ranks, ties get the mean of their
//     positions, divided by the number of values.
//
// Inputs must not contain NaN; callers exclude unknown values first.
package rank

import "sort"

// order returns the indices of values sorted so that values[order[i]] is
// non-increasing (desc) or non-decreasing (!desc). Equal values keep input order.
func order(values []float64, desc bool) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if desc {
			return values[idx[a]] > values[idx[b]]
		}
		return values[idx[a]] < values[idx[b]]
	})
	return idx
}

// DenseDescending ranks values from largest (rank 1) to smallest without gaps.
func DenseDescending(values []float64) []int {
	ranks := make([]int, len(values))
	idx := order(values, true)
	current := 0
	for i, k := range idx {
		if i == 0 || values[k] != values[idx[i-1]] {
			current++
		}
		ranks[k] = current
	}
	return ranks
}

// MinDescending ranks values from largest (rank 1) to smallest. Tied values
// share the lowest rank of their group and the next distinct value skips ahead.
func MinDescending(values []float64) []int {
	ranks := make([]int, len(values))
	idx := order(values, true)
	current := 0
	for i, k := range idx {
		if i == 0 || values[k] != values[idx[i-1]] {
			current = i + 1
		}
		ranks[k] = current
	}
	return ranks
}

// AveragePercentile returns, for every value, its ascending average rank
// divided by len(values). The largest value maps to 1.0.
func AveragePercentile(values []float64) []float64 {
	n := len(values)
	pct := make([]float64, n)
	idx := order(values, false)
	for start := 0; start < n; {
		end := start
		for end+1 < n && values[idx[end+1]] == values[idx[start]] {
			end++
		}
		// positions start..end are 1-based ranks start+1..end+1
		avg := float64(start+end+2) / 2
		for _, k := range idx[start : end+1] {
			pct[k] = avg / float64(n)
		}
		start = end + 1
	}
	return pct
}
