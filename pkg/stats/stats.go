// Package stats holds the aggregation steps applied to a series before it is
// charted.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmpty is returned when a series has no finite values.
var ErrEmpty = errors.New("no finite values")

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite returns the finite values of vs in their original order.
func Finite(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// Distinct counts the distinct values of vs.
func Distinct(vs []float64) int {
	seen := make(map[float64]struct{}, len(vs))
	for _, v := range vs {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Bin is one bar of a histogram covering [Min, Max).
type Bin struct {
	Min, Max float64
	Weight   float64
}

// CumulativeHistogram bins the finite values of vs into as many equal width
// bins as there are distinct values and returns the cumulative density, so
// the last bin weighs 1. A series with a single distinct value gets one bin
// of width 1 centred on it.
func CumulativeHistogram(vs []float64) ([]Bin, error) {
	values := Finite(vs)
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	n := Distinct(values)
	lo, hi := floats.Min(values), floats.Max(values)
	if n == 1 || lo == hi {
		return []Bin{{Min: lo - 0.5, Max: lo + 0.5, Weight: 1}}, nil
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	bins[n-1].Max = hi
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Weight++
	}

	total := float64(len(values))
	var acc float64
	for i := range bins {
		acc += bins[i].Weight
		bins[i].Weight = acc / total
	}
	return bins, nil
}

// Limits returns the smallest and largest value of the sorted values once
// the given number of percentiles has been dropped from each end.
func Limits(sorted []float64, percentilesToRemove int) (float64, float64, error) {
	if len(sorted) == 0 {
		return 0, 0, ErrEmpty
	}
	toRemove := (len(sorted) / 100) * percentilesToRemove
	if toRemove < 0 || 2*toRemove >= len(sorted) {
		toRemove = 0
	}
	return sorted[toRemove], sorted[len(sorted)-toRemove-1], nil
}

// Summary describes a series in the log and in chart labels.
type Summary struct {
	Count    int
	Finite   int
	Min, Max float64
	Q1       float64
	Median   float64
	Q3       float64
	Mean     float64
}

// Summarize computes the summary of the finite values of vs.
func Summarize(vs []float64) (Summary, error) {
	values := Finite(vs)
	s := Summary{Count: len(vs), Finite: len(values)}
	if len(values) == 0 {
		return s, ErrEmpty
	}
	sort.Float64s(values)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Q1 = stat.Quantile(0.25, stat.Empirical, values, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, values, nil)
	s.Mean = stat.Mean(values, nil)
	return s, nil
}
