package flow

import (
	"math"
	"sort"
)

// Percentile computes the p-th percentile (p in [0,1]) of a sample using
// linear interpolation on the sorted values: for a sorted array a of
// length n, k = (n-1)*p, f = floor(k), and the result interpolates
// a[f] + (k-f)*(a[f+1]-a[f]) while f+1 < n. An empty sample yields 0.
// The input slice is not modified.
func Percentile(sample []float64, p float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	k := float64(len(sorted)-1) * p
	f := int(math.Floor(k))
	if f+1 < len(sorted) {
		return sorted[f] + (k-float64(f))*(sorted[f+1]-sorted[f])
	}
	return sorted[f]
}
