package worm

import (
	"math"

	"github.com/ctford/wicketworm/internal/logger"
)

// Compile-time check to ensure PartnershipSample implements Persistable interface
var _ Persistable = (*PartnershipSample)(nil)

// Delivery is the outcome of a single ball as far as the learner cares:
// runs scored off it and how many wickets fell to it
type Delivery struct {
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"`
}

// InningsRecord is one historical innings as a chronological delivery sequence
type InningsRecord struct {
	MatchID    string     `json:"matchId"`
	Innings    int        `json:"innings"`
	Deliveries []Delivery `json:"deliveries"`
}

// PartnershipSample is one observed wicket partnership: the runs scored and
// overs survived between two consecutive wicket falls
type PartnershipSample struct {
	MatchID string  `json:"matchId" column:"match_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Innings int     `json:"innings" column:"innings" dbtype:"INTEGER NOT NULL" primary:"true"`
	Wicket  int     `json:"wicket" column:"wicket" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`
	Runs    int     `json:"runs" column:"runs" dbtype:"INTEGER DEFAULT 0"`
	Overs   float64 `json:"overs" column:"overs" dbtype:"REAL DEFAULT 0.0"`
}

func (s *PartnershipSample) GetTableName() string {
	return "partnership_sample"
}

func (s *PartnershipSample) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"match_id": s.MatchID,
		"innings":  s.Innings,
		"wicket":   s.Wicket,
	}
}

func (s *PartnershipSample) BeforeSave() error { return nil }
func (s *PartnershipSample) AfterSave() error  { return nil }

// ExtractPartnerships walks an innings' deliveries and emits one sample per
// wicket fall. Processing stops once ten wickets are down; an unbroken final
// partnership contributes no sample since its true extent is unknown.
func ExtractPartnerships(innings InningsRecord) []PartnershipSample {
	var samples []PartnershipSample

	totalRuns := 0
	totalBalls := 0
	wicketsDown := 0
	prevRuns := 0
	prevBalls := 0

	for _, delivery := range innings.Deliveries {
		totalBalls++
		totalRuns += delivery.Runs

		if delivery.Wickets == 0 {
			continue
		}

		// A double wicket on one ball (run out of the non-striker) yields
		// a zero-length sample for the second wicket index
		for i := 0; i < delivery.Wickets && wicketsDown < MaxWickets; i++ {
			wicketsDown++
			samples = append(samples, PartnershipSample{
				MatchID: innings.MatchID,
				Innings: innings.Innings,
				Wicket:  wicketsDown,
				Runs:    totalRuns - prevRuns,
				Overs:   float64(totalBalls-prevBalls) / 6.0,
			})
			prevRuns = totalRuns
			prevBalls = totalBalls
		}

		if wicketsDown >= MaxWickets {
			break
		}
	}

	return samples
}

// Learn builds a partnership store from a corpus of historical innings
func Learn(corpus []InningsRecord) *Store {
	var samples []PartnershipSample
	for _, innings := range corpus {
		samples = append(samples, ExtractPartnerships(innings)...)
	}
	return LearnFromSamples(samples)
}

// LearnFromSamples builds the smoothed per-wicket histograms from collected
// partnership samples. Wicket indices with no samples degrade to a uniform
// distribution rather than failing.
func LearnFromSamples(samples []PartnershipSample) *Store {
	runsByWicket := make(map[int][]float64)
	oversByWicket := make(map[int][]float64)

	for _, sample := range samples {
		if sample.Wicket < 1 || sample.Wicket > MaxWickets {
			continue
		}
		runsByWicket[sample.Wicket] = append(runsByWicket[sample.Wicket], float64(sample.Runs))
		oversByWicket[sample.Wicket] = append(oversByWicket[sample.Wicket], sample.Overs)
	}

	store := NewStore()
	for wicket := 1; wicket <= MaxWickets; wicket++ {
		runs := runsByWicket[wicket]
		overs := oversByWicket[wicket]

		if len(runs) == 0 {
			logger.Warn("No partnership samples for wicket, using uniform distribution", wicket)
			store.SetStatistics(wicket, uniformStatistics())
			continue
		}

		oversDist := buildDistribution(overs, OversBuckets)
		runsDist := buildDistribution(runs, RunsBuckets)

		ps, err := NewPartnershipStatistics(oversDist, runsDist)
		if err != nil {
			// buildDistribution always yields a positive normalized PMF
			logger.Error("Rejecting learned distribution for wicket", wicket, err)
			store.SetStatistics(wicket, uniformStatistics())
			continue
		}
		store.SetStatistics(wicket, ps)

		meanRuns, meanOvers, _ := store.MeanPartnership(wicket)
		logger.Debug("Learned wicket partnership", wicket, meanRuns, meanOvers, len(runs))
	}

	return store
}

// buildDistribution turns raw samples into a smoothed probability mass
// function over buckets 0..buckets-1. Samples outside the range saturate at
// the boundary buckets; additive smoothing keeps every bucket sampleable.
func buildDistribution(values []float64, buckets int) []float64 {
	counts := make([]float64, buckets)
	for _, v := range values {
		bucket := int(math.Round(v))
		if bucket < 0 {
			bucket = 0
		}
		if bucket > buckets-1 {
			bucket = buckets - 1
		}
		counts[bucket]++
	}

	total := float64(len(values))
	dist := make([]float64, buckets)
	for i, c := range counts {
		dist[i] = c / total
	}

	// Additive smoothing so sampling never sees a hard zero
	epsilon := GetSmoothingEpsilon()
	sum := 0.0
	for i := range dist {
		dist[i] += epsilon
		sum += dist[i]
	}
	for i := range dist {
		dist[i] /= sum
	}

	return dist
}
