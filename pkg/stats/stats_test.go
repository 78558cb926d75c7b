package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinitePreservesOrder(t *testing.T) {
	in := []float64{3, math.NaN(), 1, math.Inf(1), 2, math.Inf(-1), 1}
	out := Finite(in)
	assert.Equal(t, []float64{3, 1, 2, 1}, out)

	// out is a subsequence of in
	j := 0
	for _, v := range in {
		if j < len(out) && v == out[j] {
			j++
		}
	}
	assert.Equal(t, len(out), j)
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0.98))
	assert.True(t, IsFinite(-1))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}

func TestFiniteEmpty(t *testing.T) {
	assert.Empty(t, Finite(nil))
	assert.Empty(t, Finite([]float64{math.NaN(), math.Inf(1)}))
}

func TestCumulativeHistogram(t *testing.T) {
	bins, err := CumulativeHistogram([]float64{1, 2, 2, 3, math.Inf(1)})
	require.NoError(t, err)
	require.Len(t, bins, 3)
	assert.Equal(t, 1.0, bins[0].Min)
	assert.Equal(t, 3.0, bins[2].Max)
	assert.InDelta(t, 0.25, bins[0].Weight, 1e-9)
	assert.InDelta(t, 0.75, bins[1].Weight, 1e-9)
	assert.InDelta(t, 1.0, bins[2].Weight, 1e-9)

	for i := 1; i < len(bins); i++ {
		assert.GreaterOrEqual(t, bins[i].Weight, bins[i-1].Weight)
		assert.Equal(t, bins[i-1].Max, bins[i].Min)
	}
}

func TestCumulativeHistogramSingleValue(t *testing.T) {
	bins, err := CumulativeHistogram([]float64{0.98, 0.98, math.NaN()})
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.InDelta(t, 0.48, bins[0].Min, 1e-9)
	assert.InDelta(t, 1.48, bins[0].Max, 1e-9)
	assert.Equal(t, 1.0, bins[0].Weight)
}

func TestCumulativeHistogramEmpty(t *testing.T) {
	_, err := CumulativeHistogram(nil)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = CumulativeHistogram([]float64{math.NaN(), math.Inf(-1)})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLimits(t *testing.T) {
	sorted := make([]float64, 200)
	for i := range sorted {
		sorted[i] = float64(i)
	}
	lo, hi, err := Limits(sorted, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 199.0, hi)

	lo, hi, err = Limits(sorted, 3)
	require.NoError(t, err)
	assert.Equal(t, 6.0, lo)
	assert.Equal(t, 193.0, hi)

	lo, hi, err = Limits([]float64{5}, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 5.0, hi)

	_, _, err = Limits(nil, 1)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{4, 1, math.NaN(), 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 4, s.Finite)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.0, s.Median)

	s, err = Summarize([]float64{math.Inf(1)})
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0, s.Finite)
}
