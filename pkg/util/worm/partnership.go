package worm

import (
	"fmt"
	"math"
)

/**
* Wicketworm models a batting innings as a chain of wicket partnerships.
* Each of the ten wickets has its own empirical distribution of how long
* the partnership lasts (overs) and how many runs it scores.
 */
const (
	// MaxWickets is the number of wickets in a single innings
	MaxWickets = 10
	// OversBuckets covers partnership durations of 0-100 overs inclusive
	OversBuckets = 101
	// RunsBuckets covers partnership scores of 0-300 runs inclusive
	RunsBuckets = 301
	// pmfTolerance is the allowed drift of a distribution sum from 1.0
	pmfTolerance = 1e-6
)

// PartnershipStatistics holds the learned distributions for a single wicket index
// (wicket 1 = opening partnership, wicket 10 = last wicket)
type PartnershipStatistics struct {
	OversDistribution []float64 `json:"overs_distribution"`
	RunsDistribution  []float64 `json:"runs_distribution"`

	// cumulative sums, built once so sampling is a binary search rather
	// than a linear scan over the buckets
	oversCDF []float64
	runsCDF  []float64
}

// NewPartnershipStatistics validates the two distributions and prepares them for sampling
func NewPartnershipStatistics(oversDist, runsDist []float64) (*PartnershipStatistics, error) {
	if len(oversDist) != OversBuckets {
		return nil, fmt.Errorf("overs distribution must have %d buckets, got %d", OversBuckets, len(oversDist))
	}
	if len(runsDist) != RunsBuckets {
		return nil, fmt.Errorf("runs distribution must have %d buckets, got %d", RunsBuckets, len(runsDist))
	}
	if err := validatePMF(oversDist); err != nil {
		return nil, fmt.Errorf("overs distribution invalid: %w", err)
	}
	if err := validatePMF(runsDist); err != nil {
		return nil, fmt.Errorf("runs distribution invalid: %w", err)
	}

	return &PartnershipStatistics{
		OversDistribution: oversDist,
		RunsDistribution:  runsDist,
		oversCDF:          cumulative(oversDist),
		runsCDF:           cumulative(runsDist),
	}, nil
}

// validatePMF checks that a slice is a usable probability mass function:
// strictly positive everywhere (no bucket may be unsampleable) and summing to 1
func validatePMF(dist []float64) error {
	sum := 0.0
	for i, p := range dist {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("bucket %d has non-positive probability %g", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > pmfTolerance {
		return fmt.Errorf("probabilities sum to %g, want 1.0", sum)
	}
	return nil
}

// Store maps wicket indices 1..10 to their partnership statistics.
// A fixed array keeps the "missing index" branch explicit and cheap;
// entries are nil until learned or loaded and never mutated afterwards.
type Store struct {
	stats [MaxWickets]*PartnershipStatistics
}

// NewStore returns an empty store with no statistics for any wicket
func NewStore() *Store {
	return &Store{}
}

// Statistics returns the learned statistics for the given wicket index (1-10)
// The second return is false when the index is out of range or has no data,
// in which case callers fall back to the default partnership distributions
func (s *Store) Statistics(wicket int) (*PartnershipStatistics, bool) {
	if wicket < 1 || wicket > MaxWickets {
		return nil, false
	}
	ps := s.stats[wicket-1]
	return ps, ps != nil
}

// SetStatistics installs statistics for the given wicket index
// Only the learner and the loader call this; the store is immutable once shared
func (s *Store) SetStatistics(wicket int, ps *PartnershipStatistics) error {
	if wicket < 1 || wicket > MaxWickets {
		return fmt.Errorf("wicket index %d out of range 1-%d", wicket, MaxWickets)
	}
	s.stats[wicket-1] = ps
	return nil
}

// Wickets returns the wicket indices that have learned statistics, in order
func (s *Store) Wickets() []int {
	var wickets []int
	for i, ps := range s.stats {
		if ps != nil {
			wickets = append(wickets, i+1)
		}
	}
	return wickets
}

// MeanPartnership returns the expected runs and overs for a wicket index,
// mostly useful for logging the shape of a learned store
func (s *Store) MeanPartnership(wicket int) (runs float64, overs float64, ok bool) {
	ps, ok := s.Statistics(wicket)
	if !ok {
		return 0, 0, false
	}
	for i, p := range ps.RunsDistribution {
		runs += float64(i) * p
	}
	for i, p := range ps.OversDistribution {
		overs += float64(i) * p
	}
	return runs, overs, true
}

// uniformStatistics builds the flat default used when a wicket index has no
// historical samples at all
func uniformStatistics() *PartnershipStatistics {
	oversDist := make([]float64, OversBuckets)
	for i := range oversDist {
		oversDist[i] = 1.0 / float64(OversBuckets)
	}
	runsDist := make([]float64, RunsBuckets)
	for i := range runsDist {
		runsDist[i] = 1.0 / float64(RunsBuckets)
	}
	ps, err := NewPartnershipStatistics(oversDist, runsDist)
	if err != nil {
		// a uniform distribution is always a valid PMF
		panic(err)
	}
	return ps
}
