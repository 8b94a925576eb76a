package worm

import "fmt"

// WormConfig contains all configurable parameters that influence simulation outcomes
// This centralizes all magic numbers and constants for easy adjustment
type WormConfig struct {
	// Storage paths
	WormAssetsPath string // The base directory of assets relating to wicketworm
	WormCachePath  string // The location in which cached downloaded match data is stored
	WormDbPath     string // The location of the wicketworm sqlite database
	WormStorePath  string // The location of the learned partnership store (JSON)

	// === LEARNING PARAMETERS ===

	SmoothingEpsilon float64 // Additive smoothing constant per histogram bucket (default: 1e-4)

	// === FALLBACK PARTNERSHIP PARAMETERS ===

	// Used for wicket indices with no learned statistics
	FallbackPartnershipOvers float64 // Mean of the exponential overs fallback (default: 10.0)
	FallbackPartnershipRuns  float64 // Mean of the Poisson runs fallback (default: 30.0)

	// === MONTE CARLO SIMULATION SETTINGS ===

	BulkSimulations   int // Trial count for bulk historical evaluation (default: 100)
	QuerySimulations  int // Trial count for single-query precision (default: 1000)
	SimulationWorkers int // Worker cap for parallel trials, 0 = one per CPU (default: 8)

	// === MATCH STRUCTURE ===

	MaxMatchOvers int // Total overs in a full five-day match (default: 450)

	// === DATA SOURCE ===

	CricsheetBaseURL string // Base URL for Cricsheet archive downloads
	CricsheetArchive string // Archive filename to fetch (default: "tests_json.zip")
}

// DefaultWormConfig returns the default configuration with all standard values
func DefaultWormConfig() *WormConfig {
	wormAssetsPath := "/tmp/.wicketworm/"
	return &WormConfig{
		WormAssetsPath: wormAssetsPath,
		WormCachePath:  wormAssetsPath + "cache/",
		WormDbPath:     wormAssetsPath + "wicketworm.db",
		WormStorePath:  wormAssetsPath + "partnerships.json",

		SmoothingEpsilon: 1e-4,

		FallbackPartnershipOvers: 10.0,
		FallbackPartnershipRuns:  30.0,

		BulkSimulations:   100,
		QuerySimulations:  1000,
		SimulationWorkers: 8,

		MaxMatchOvers: 450,

		CricsheetBaseURL: "https://cricsheet.org",
		CricsheetArchive: "tests_json.zip",
	}
}

// Global configuration instance
var Config *WormConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultWormConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *WormConfig) {
	Config = newConfig
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *WormConfig) error {
	if config.SmoothingEpsilon <= 0 {
		return fmt.Errorf("SmoothingEpsilon must be positive, got: %g", config.SmoothingEpsilon)
	}

	if config.FallbackPartnershipOvers <= 0 || config.FallbackPartnershipRuns <= 0 {
		return fmt.Errorf("fallback partnership means must be positive, got: %f overs %f runs",
			config.FallbackPartnershipOvers, config.FallbackPartnershipRuns)
	}

	if config.BulkSimulations < 1 || config.QuerySimulations < 1 {
		return fmt.Errorf("simulation counts must be at least 1, got: %d bulk %d query",
			config.BulkSimulations, config.QuerySimulations)
	}

	if config.SimulationWorkers < 0 {
		return fmt.Errorf("SimulationWorkers must be non-negative, got: %d", config.SimulationWorkers)
	}

	if config.MaxMatchOvers < 1 {
		return fmt.Errorf("MaxMatchOvers must be at least 1, got: %d", config.MaxMatchOvers)
	}

	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetSmoothingEpsilon returns the additive smoothing constant
func GetSmoothingEpsilon() float64 {
	return Config.SmoothingEpsilon
}

// GetBulkSimulations returns the trial count used for bulk evaluation
func GetBulkSimulations() int {
	return Config.BulkSimulations
}

// GetQuerySimulations returns the trial count used for single queries
func GetQuerySimulations() int {
	return Config.QuerySimulations
}

// GetMaxMatchOvers returns the total overs budget of a full match
func GetMaxMatchOvers() int {
	return Config.MaxMatchOvers
}
