// Package stats provides the descriptive statistics behind peer and
// industry benchmarking. All functions treat an empty input as "no data"
// and return zero values or empty results, never an error: callers on the
// display path omit what they cannot compute.
package stats

import (
	"math"
	"slices"
)

// Mean returns the arithmetic mean, or 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value (mean of the two middle values for even
// counts), or 0 for an empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev returns the population standard deviation, or 0 for an empty
// input.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		diff := v - mean
		sq += diff * diff
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Percentile returns the p-th percentile (0..100) using linear
// interpolation between closest ranks, or 0 for an empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	if rank <= 0 {
		return sorted[0]
	}
	if rank >= float64(len(sorted)-1) {
		return sorted[len(sorted)-1]
	}

	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// PercentileRank returns where value sits within the cohort as a 0..100
// percentage: the fraction of cohort values strictly below it. Ties count
// as not below. Returns 0 for an empty cohort.
func PercentileRank(value float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	below := 0
	for _, v := range values {
		if v < value {
			below++
		}
	}
	return float64(below) / float64(len(values)) * 100
}

// Benchmark summarizes a cohort's distribution for one metric.
type Benchmark struct {
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// BenchmarkOf computes a cohort benchmark. ok is false when the cohort is
// empty.
func BenchmarkOf(values []float64) (Benchmark, bool) {
	if len(values) == 0 {
		return Benchmark{}, false
	}
	return Benchmark{
		Median: Median(values),
		Mean:   Mean(values),
		P25:    Percentile(values, 25),
		P75:    Percentile(values, 75),
	}, true
}

// Describe returns the full summary used by industry analysis: count,
// mean, median, std, min, max, p25 and p75. An empty input yields an empty
// map.
func Describe(values []float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}
	return map[string]float64{
		"count":  float64(len(values)),
		"mean":   Mean(values),
		"median": Median(values),
		"std":    StdDev(values),
		"min":    slices.Min(values),
		"max":    slices.Max(values),
		"p25":    Percentile(values, 25),
		"p75":    Percentile(values, 75),
	}
}
