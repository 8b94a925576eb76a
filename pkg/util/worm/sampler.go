package worm

import (
	"math"
	"math/rand"
	"sort"
)

// cumulative builds the running-sum table for a probability mass function
func cumulative(pmf []float64) []float64 {
	cdf := make([]float64, len(pmf))
	sum := 0.0
	for i, p := range pmf {
		sum += p
		cdf[i] = sum
	}
	return cdf
}

// sampleIndex draws a bucket index via inverse-CDF binary search
// The draw is scaled by the final cumulative value so tiny normalization
// drift in the PMF never pushes the search past the last bucket
func sampleIndex(cdf []float64, rng *rand.Rand) int {
	u := rng.Float64() * cdf[len(cdf)-1]
	idx := sort.SearchFloat64s(cdf, u)
	if idx >= len(cdf) {
		idx = len(cdf) - 1
	}
	return idx
}

// SampleOvers draws a partnership duration in whole overs
func (ps *PartnershipStatistics) SampleOvers(rng *rand.Rand) int {
	return sampleIndex(ps.oversCDF, rng)
}

// SampleRuns draws a partnership score in runs
func (ps *PartnershipStatistics) SampleRuns(rng *rand.Rand) int {
	return sampleIndex(ps.runsCDF, rng)
}

// exponentialSample draws from an exponential distribution with the given mean
// Used for partnership overs when a wicket index has no learned statistics
func exponentialSample(mean float64, rng *rand.Rand) float64 {
	return rng.ExpFloat64() * mean
}

// poissonSample generates a single random number from a Poisson distribution
// Uses Knuth's algorithm for small lambda, normal approximation otherwise
func poissonSample(lambda float64, rng *rand.Rand) int {
	if lambda < 30 {
		L := math.Exp(-lambda)
		k := 0
		p := 1.0

		for p > L {
			k++
			p *= rng.Float64()
		}

		return k - 1
	}

	normal := rng.NormFloat64()
	n := int(math.Round(lambda + math.Sqrt(lambda)*normal))
	if n < 0 {
		n = 0
	}
	return n
}
