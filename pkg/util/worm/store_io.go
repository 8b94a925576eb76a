package worm

import (
	"fmt"
	"strconv"

	"github.com/ctford/wicketworm/internal/logger"
	"github.com/ctford/wicketworm/pkg/util"
)

// storedStatistics is the on-disk shape of one wicket's distributions:
// a JSON object keyed by wicket index "1".."10" mapping to two fixed-length
// probability arrays
type storedStatistics struct {
	OversDistribution []float64 `json:"overs_distribution"`
	RunsDistribution  []float64 `json:"runs_distribution"`
}

// SaveStore writes the learned partnership store to path as JSON
func SaveStore(store *Store, path string) error {
	out := make(map[string]storedStatistics)
	for _, wicket := range store.Wickets() {
		ps, _ := store.Statistics(wicket)
		out[strconv.Itoa(wicket)] = storedStatistics{
			OversDistribution: ps.OversDistribution,
			RunsDistribution:  ps.RunsDistribution,
		}
	}

	if err := util.WriteJSONFile(path, out); err != nil {
		return fmt.Errorf("failed to save partnership store: %w", err)
	}

	logger.Info("Saved partnership store", path, len(out))
	return nil
}

// LoadStore reads a partnership store previously written by SaveStore.
// Corrupted or incompatible input is an error; it never degrades to an
// empty or partial store.
func LoadStore(path string) (*Store, error) {
	var raw map[string]storedStatistics
	if err := util.ReadJSONFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to load partnership store: %w", err)
	}

	store := NewStore()
	for key, stats := range raw {
		wicket, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("partnership store %s has non-numeric wicket key %q", path, key)
		}
		if wicket < 1 || wicket > MaxWickets {
			return nil, fmt.Errorf("partnership store %s has wicket key %d out of range 1-%d", path, wicket, MaxWickets)
		}

		ps, err := NewPartnershipStatistics(stats.OversDistribution, stats.RunsDistribution)
		if err != nil {
			return nil, fmt.Errorf("partnership store %s is corrupt at wicket %d: %w", path, wicket, err)
		}
		store.SetStatistics(wicket, ps)
	}

	logger.Info("Loaded partnership store", path, len(raw))
	return store, nil
}
