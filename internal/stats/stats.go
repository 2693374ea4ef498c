// Package stats reduces a run's trip-time samples to descriptive statistics.
//
// Conventions:
//   - standard deviation is the population form (divide by N);
//   - percentiles interpolate linearly between the two nearest ranks of the
//     ascending-sorted sample at fractional index (N-1)*p.
//
// Both match the defaults of the reference numeric library, so results line
// up with published tables.
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrEmptyRun is returned when there are no samples to reduce.
	ErrEmptyRun = errors.New("run has no samples")

	// ErrNonFinite is returned when a sample is NaN or infinite.
	ErrNonFinite = errors.New("run contains a non-finite sample")
)

// Summary holds the descriptive statistics of one run.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P95    float64 `json:"p95"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes the summary of samples. samples is not modified and the
// result does not depend on its order.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrEmptyRun
	}

	sorted := slices.Clone(samples)
	for i, s := range sorted {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Summary{}, fmt.Errorf("%w at index %d: %v", ErrNonFinite, i, s)
		}
	}
	slices.Sort(sorted)

	// Summing in sorted order keeps the mean bit-identical for any permutation.
	mean := kahanSum(sorted) / float64(len(sorted))

	var ss float64
	for _, s := range sorted {
		d := s - mean
		ss += d * d
	}

	std := math.Sqrt(ss / float64(len(sorted)))
	if math.IsInf(mean, 0) || math.IsNaN(mean) || math.IsInf(std, 0) || math.IsNaN(std) {
		return Summary{}, fmt.Errorf("%w: mean %v, std %v overflow", ErrNonFinite, mean, std)
	}

	return Summary{
		N:      len(sorted),
		Mean:   mean,
		StdDev: std,
		P95:    Percentile(sorted, 0.95),
		Median: Percentile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}, nil
}

// Percentile returns the p-quantile (0 <= p <= 1) of an ascending-sorted,
// non-empty slice using linear interpolation at index (N-1)*p.
// It panics on an empty slice or a NaN p; any other p is clamped to [0, 1].
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		panic("stats: Percentile of empty slice")
	}
	if math.IsNaN(p) {
		panic("stats: Percentile with NaN p")
	}
	p = math.Max(0, math.Min(1, p))

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// kahanSum adds xs with compensated summation.
func kahanSum(xs []float64) float64 {
	var sum, c float64
	for _, x := range xs {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}
	return sum
}
