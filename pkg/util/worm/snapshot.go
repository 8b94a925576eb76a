package worm

// Compile-time check to ensure GameState implements Persistable interface
var _ Persistable = (*GameState)(nil)

// MatchSnapshot is the simulator-facing view of an in-progress match:
// everything the Monte Carlo engine needs and nothing else
type MatchSnapshot struct {
	OversLeft                  float64 `json:"oversLeft"`
	FirstTeamWicketsRemaining  int     `json:"firstTeamWicketsRemaining"`
	SecondTeamWicketsRemaining int     `json:"secondTeamWicketsRemaining"`
	Lead                       int     `json:"lead"`
}

// GameState is the full state of a match at the end of a particular over,
// as extracted from a historical match record. The first team bats innings
// 1 and 3, the second team innings 2 and 4.
type GameState struct {
	// Primary key
	MatchID string `json:"matchId" column:"match_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Innings int    `json:"innings" column:"innings" dbtype:"INTEGER NOT NULL" primary:"true"`
	Over    int    `json:"over" column:"over" dbtype:"INTEGER NOT NULL" primary:"true"`

	// Total match overs remaining across all remaining play
	OversLeft float64 `json:"oversLeft" column:"overs_left" dbtype:"REAL DEFAULT 0.0"`

	// Per-innings scoreboards at this point in time
	FirstTeamScoreInn1    int `json:"firstTeamScoreInn1" column:"first_team_score_inn1" dbtype:"INTEGER DEFAULT 0"`
	FirstTeamWicketsInn1  int `json:"firstTeamWicketsInn1" column:"first_team_wickets_inn1" dbtype:"INTEGER DEFAULT 0"`
	SecondTeamScoreInn2   int `json:"secondTeamScoreInn2" column:"second_team_score_inn2" dbtype:"INTEGER DEFAULT 0"`
	SecondTeamWicketsInn2 int `json:"secondTeamWicketsInn2" column:"second_team_wickets_inn2" dbtype:"INTEGER DEFAULT 0"`
	FirstTeamScoreInn3    int `json:"firstTeamScoreInn3" column:"first_team_score_inn3" dbtype:"INTEGER DEFAULT 0"`
	FirstTeamWicketsInn3  int `json:"firstTeamWicketsInn3" column:"first_team_wickets_inn3" dbtype:"INTEGER DEFAULT 0"`
	SecondTeamScoreInn4   int `json:"secondTeamScoreInn4" column:"second_team_score_inn4" dbtype:"INTEGER DEFAULT 0"`
	SecondTeamWicketsInn4 int `json:"secondTeamWicketsInn4" column:"second_team_wickets_inn4" dbtype:"INTEGER DEFAULT 0"`

	// First team's lead (positive) or deficit (negative)
	CurrentLead int `json:"currentLead" column:"current_lead" dbtype:"INTEGER DEFAULT 0"`
	// In an innings-4 chase: runs still needed to win (0 otherwise)
	RunsToWin int `json:"runsToWin" column:"runs_to_win" dbtype:"INTEGER DEFAULT 0"`

	// "win", "draw" or "loss" from the first team's perspective
	Outcome string `json:"outcome" column:"outcome" dbtype:"TEXT" index:"true"`
}

func (g *GameState) GetTableName() string {
	return "game_state"
}

func (g *GameState) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"match_id": g.MatchID,
		"innings":  g.Innings,
		"over":     g.Over,
	}
}

func (g *GameState) BeforeSave() error { return nil }
func (g *GameState) AfterSave() error  { return nil }

// Snapshot reduces the full game state to the simulator's inputs. Wickets
// remaining are cumulative across a team's two innings, so each side starts
// a match with twenty in hand.
func (g *GameState) Snapshot() MatchSnapshot {
	return MatchSnapshot{
		OversLeft:                  g.OversLeft,
		FirstTeamWicketsRemaining:  2*MaxWickets - g.FirstTeamWicketsInn1 - g.FirstTeamWicketsInn3,
		SecondTeamWicketsRemaining: 2*MaxWickets - g.SecondTeamWicketsInn2 - g.SecondTeamWicketsInn4,
		Lead:                       g.CurrentLead,
	}
}

// PredictSnapshot runs the match simulator against a snapshot
func (p *Predictor) PredictSnapshot(s MatchSnapshot, nSimulations int) (pWin, pDraw, pLoss float64) {
	return p.SimulateMatch(s.OversLeft, s.FirstTeamWicketsRemaining, s.SecondTeamWicketsRemaining, s.Lead, nSimulations)
}
