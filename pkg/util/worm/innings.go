package worm

import (
	"math/rand"
	"time"
)

// Predictor simulates match outcomes against an immutable partnership store.
// The store is shared read-only by every trial; the predictor's own random
// source is only touched by single-threaded entry points, parallel trials
// derive independent streams from it.
type Predictor struct {
	store  *Store
	policy OversSplitPolicy
	rng    *rand.Rand
}

// NewPredictor wraps a learned (or loaded) store with an unseeded random
// source and the default batting-order policy
func NewPredictor(store *Store) *Predictor {
	return &Predictor{
		store:  store,
		policy: HalfSplitPolicy{},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes subsequent simulations deterministic
func (p *Predictor) Seed(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
}

// SetPolicy swaps the batting-order heuristic used by match simulation
func (p *Predictor) SetPolicy(policy OversSplitPolicy) {
	p.policy = policy
}

// Store exposes the underlying partnership store
func (p *Predictor) Store() *Store {
	return p.store
}

// clipPartnership cuts a drawn partnership short when it would overrun the
// remaining budget, scaling runs down in proportion to the overs lost.
// Linear scaling is a modeling choice, kept pure so it can be replaced.
func clipPartnership(runs int, overs float64, budget float64) (clippedRuns float64, clippedOvers float64) {
	if overs <= budget {
		return float64(runs), overs
	}
	if overs <= 0 {
		return 0, 0
	}
	return float64(runs) * (budget / overs), budget
}

// SimulateInnings simulates a single innings with the given batting resource
// and overs budget, returning total runs and the overs consumed
func (p *Predictor) SimulateInnings(wicketsAvailable int, oversBudget float64) (int, float64) {
	return simulateInnings(p.store, p.rng, wicketsAvailable, oversBudget)
}

// simulateInnings is the trial-safe innings engine: all state is either the
// immutable store or the caller's private random stream
func simulateInnings(store *Store, rng *rand.Rand, wicketsAvailable int, oversBudget float64) (int, float64) {
	if wicketsAvailable <= 0 || oversBudget <= 0 {
		return 0, 0
	}

	totalRuns := 0
	oversUsed := 0.0

	for wicket := 1; wicket <= wicketsAvailable; wicket++ {
		if oversUsed >= oversBudget {
			break
		}

		var partnershipOvers float64
		var partnershipRuns int

		if ps, ok := store.Statistics(wicket); ok {
			partnershipOvers = float64(ps.SampleOvers(rng))
			partnershipRuns = ps.SampleRuns(rng)
		} else {
			// No learned statistics for this wicket index (second-innings
			// wickets beyond the tenth land here too)
			partnershipOvers = exponentialSample(Config.FallbackPartnershipOvers, rng)
			partnershipRuns = poissonSample(Config.FallbackPartnershipRuns, rng)
		}

		actualRuns, actualOvers := clipPartnership(partnershipRuns, partnershipOvers, oversBudget-oversUsed)

		totalRuns += int(actualRuns)
		oversUsed += actualOvers
	}

	return totalRuns, oversUsed
}
