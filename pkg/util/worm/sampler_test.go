package worm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeIsMonotonicAndClosesToOne(t *testing.T) {
	pmf := []float64{0.1, 0.2, 0.3, 0.4}
	cdf := cumulative(pmf)

	require.Len(t, cdf, len(pmf))
	for i := 1; i < len(cdf); i++ {
		assert.Greater(t, cdf[i], cdf[i-1])
	}
	assert.InDelta(t, 1.0, cdf[len(cdf)-1], 1e-9)
}

func TestSampleIndexIsDeterministicWithSeed(t *testing.T) {
	pmf := make([]float64, 50)
	for i := range pmf {
		pmf[i] = 1.0 / float64(len(pmf))
	}
	cdf := cumulative(pmf)

	first := rand.New(rand.NewSource(7))
	second := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		assert.Equal(t, sampleIndex(cdf, first), sampleIndex(cdf, second))
	}
}

func TestSampleIndexFollowsTheDistribution(t *testing.T) {
	// Nearly all mass on bucket 7
	pmf := make([]float64, 10)
	for i := range pmf {
		pmf[i] = 0.001
	}
	pmf[7] = 1.0 - 0.009
	cdf := cumulative(pmf)

	rng := rand.New(rand.NewSource(42))
	hits := 0
	for i := 0; i < 1000; i++ {
		if sampleIndex(cdf, rng) == 7 {
			hits++
		}
	}
	assert.Greater(t, hits, 950)
}

func TestSampleIndexStaysInRange(t *testing.T) {
	pmf := []float64{0.5, 0.5}
	cdf := cumulative(pmf)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		idx := sampleIndex(cdf, rng)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(pmf))
	}
}

func TestPoissonSampleMean(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	total := 0
	n := 20000
	for i := 0; i < n; i++ {
		total += poissonSample(30, rng)
	}
	mean := float64(total) / float64(n)
	assert.InDelta(t, 30.0, mean, 0.5)
}

func TestExponentialSampleMean(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	total := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		total += exponentialSample(10, rng)
	}
	mean := total / float64(n)
	assert.InDelta(t, 10.0, mean, 0.5)
}

func TestPartnershipStatisticsValidation(t *testing.T) {
	short := make([]float64, 10)
	runs := make([]float64, RunsBuckets)
	for i := range runs {
		runs[i] = 1.0 / float64(RunsBuckets)
	}

	_, err := NewPartnershipStatistics(short, runs)
	assert.Error(t, err)

	// A zero bucket is invalid even if the sum is right
	overs := make([]float64, OversBuckets)
	for i := range overs {
		overs[i] = 1.0 / float64(OversBuckets-1)
	}
	overs[0] = 0
	_, err = NewPartnershipStatistics(overs, runs)
	assert.Error(t, err)
}
