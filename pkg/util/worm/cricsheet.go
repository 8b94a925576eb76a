package worm

import (
	"encoding/json"
	"fmt"
)

// Compile-time check to ensure MatchRecord implements Persistable interface
var _ Persistable = (*MatchRecord)(nil)

// MatchRecord is one historical multi-day match: identity, result and the
// delivery sequences of its innings. Only the summary columns persist; the
// innings feed the learner in memory.
type MatchRecord struct {
	ID           string `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`
	FirstTeam    string `json:"firstTeam" column:"first_team" dbtype:"TEXT NOT NULL"`
	SecondTeam   string `json:"secondTeam" column:"second_team" dbtype:"TEXT NOT NULL"`
	Outcome      string `json:"outcome" column:"outcome" dbtype:"TEXT" index:"true"`
	InningsCount int    `json:"inningsCount" column:"innings_count" dbtype:"INTEGER DEFAULT 0"`

	Innings []InningsRecord `json:"innings"`
}

func (m *MatchRecord) GetTableName() string {
	return "match_record"
}

func (m *MatchRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": m.ID}
}

func (m *MatchRecord) BeforeSave() error { return nil }
func (m *MatchRecord) AfterSave() error  { return nil }

// Cricsheet JSON wire format, reduced to the fields the engine reads
type cricsheetDelivery struct {
	Runs struct {
		Total int `json:"total"`
	} `json:"runs"`
	Wickets []struct {
		Kind string `json:"kind"`
	} `json:"wickets"`
}

type cricsheetOver struct {
	Over       int                 `json:"over"`
	Deliveries []cricsheetDelivery `json:"deliveries"`
}

type cricsheetInnings struct {
	Team  string          `json:"team"`
	Overs []cricsheetOver `json:"overs"`
}

type cricsheetFile struct {
	Info struct {
		Teams   []string `json:"teams"`
		Outcome struct {
			Winner string `json:"winner"`
			Result string `json:"result"`
		} `json:"outcome"`
	} `json:"info"`
	Innings []cricsheetInnings `json:"innings"`
}

// overState is an innings scoreboard at the end of one over
type overState struct {
	over    int
	runs    int
	wickets int
	balls   int
}

// ParseMatchData decodes a Cricsheet JSON match file into a MatchRecord for
// the learner plus one GameState per completed over for evaluation. The
// first team listed bats innings 1 and 3.
func ParseMatchData(id string, data []byte) (*MatchRecord, []*GameState, error) {
	var raw cricsheetFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("match %s is not valid Cricsheet JSON: %w", id, err)
	}

	if len(raw.Info.Teams) != 2 {
		return nil, nil, fmt.Errorf("match %s has %d teams, want 2", id, len(raw.Info.Teams))
	}

	match := &MatchRecord{
		ID:           id,
		FirstTeam:    raw.Info.Teams[0],
		SecondTeam:   raw.Info.Teams[1],
		Outcome:      outcomeForFirstTeam(raw.Info.Outcome.Winner, raw.Info.Teams[0]),
		InningsCount: len(raw.Innings),
	}

	// First pass: flatten deliveries per innings and record the scoreboard
	// at the end of every over
	statesByInnings := make([][]overState, len(raw.Innings))
	for idx, innings := range raw.Innings {
		record := InningsRecord{
			MatchID: id,
			Innings: idx + 1,
		}

		runs := 0
		wickets := 0
		balls := 0

		for _, over := range innings.Overs {
			for _, delivery := range over.Deliveries {
				balls++
				runs += delivery.Runs.Total
				wickets += len(delivery.Wickets)
				record.Deliveries = append(record.Deliveries, Delivery{
					Runs:    delivery.Runs.Total,
					Wickets: len(delivery.Wickets),
				})
			}

			statesByInnings[idx] = append(statesByInnings[idx], overState{
				over:    over.Over,
				runs:    runs,
				wickets: wickets,
				balls:   balls,
			})

			if wickets >= MaxWickets {
				break
			}
		}

		match.Innings = append(match.Innings, record)
	}

	states := buildGameStates(match, statesByInnings)
	return match, states, nil
}

// outcomeForFirstTeam labels the match result from the first team's side
func outcomeForFirstTeam(winner, firstTeam string) string {
	switch winner {
	case "":
		return "draw"
	case firstTeam:
		return "win"
	default:
		return "loss"
	}
}

// buildGameStates produces a GameState for every over of the match, each
// with the full four-innings context visible at that point in time
func buildGameStates(match *MatchRecord, statesByInnings [][]overState) []*GameState {
	maxOvers := float64(GetMaxMatchOvers())

	var states []*GameState
	cumulativeOvers := 0.0

	for idx, inningsStates := range statesByInnings {
		inningsNum := idx + 1

		for _, st := range inningsStates {
			oversLeft := maxOvers - (cumulativeOvers + float64(st.over+1))
			if oversLeft < 0 {
				oversLeft = 0
			}

			// Scoreboard for an innings as seen at this moment: final for
			// past innings, running for the current one, zero for the future
			inningsAt := func(n int) (int, int) {
				if n > len(statesByInnings) || len(statesByInnings[n-1]) == 0 {
					return 0, 0
				}
				if n < inningsNum {
					final := statesByInnings[n-1][len(statesByInnings[n-1])-1]
					return final.runs, final.wickets
				}
				if n == inningsNum {
					return st.runs, st.wickets
				}
				return 0, 0
			}

			score1, wickets1 := inningsAt(1)
			score2, wickets2 := inningsAt(2)
			score3, wickets3 := inningsAt(3)
			score4, wickets4 := inningsAt(4)

			lead := (score1 + score3) - (score2 + score4)

			runsToWin := 0
			if inningsNum == 4 && score4 > 0 {
				target := (score1 + score3) - score2 + 1
				runsToWin = target - score4
			}

			states = append(states, &GameState{
				MatchID:               match.ID,
				Innings:               inningsNum,
				Over:                  st.over,
				OversLeft:             oversLeft,
				FirstTeamScoreInn1:    score1,
				FirstTeamWicketsInn1:  wickets1,
				SecondTeamScoreInn2:   score2,
				SecondTeamWicketsInn2: wickets2,
				FirstTeamScoreInn3:    score3,
				FirstTeamWicketsInn3:  wickets3,
				SecondTeamScoreInn4:   score4,
				SecondTeamWicketsInn4: wickets4,
				CurrentLead:           lead,
				RunsToWin:             runsToWin,
				Outcome:               match.Outcome,
			})
		}

		if len(inningsStates) > 0 {
			final := inningsStates[len(inningsStates)-1]
			cumulativeOvers += float64(final.balls) / 6.0
		}
	}

	return states
}
