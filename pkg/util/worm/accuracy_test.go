package worm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bowledOutState is a finished match: both sides all out in both innings,
// first team ahead by `lead`
func bowledOutState(lead int, outcome string) *GameState {
	return &GameState{
		MatchID:               "done",
		Innings:               4,
		Over:                  90,
		OversLeft:             40,
		FirstTeamWicketsInn1:  MaxWickets,
		SecondTeamWicketsInn2: MaxWickets,
		FirstTeamWicketsInn3:  MaxWickets,
		SecondTeamWicketsInn4: MaxWickets,
		CurrentLead:           lead,
		Outcome:               outcome,
	}
}

func TestSnapshotCountsWicketsAcrossBothInnings(t *testing.T) {
	state := &GameState{
		FirstTeamWicketsInn1:  MaxWickets,
		FirstTeamWicketsInn3:  4,
		SecondTeamWicketsInn2: 7,
		CurrentLead:           88,
		OversLeft:             120,
	}

	s := state.Snapshot()
	assert.Equal(t, 6, s.FirstTeamWicketsRemaining)
	assert.Equal(t, 13, s.SecondTeamWicketsRemaining)
	assert.Equal(t, 88, s.Lead)
	assert.Equal(t, 120.0, s.OversLeft)
}

func TestEvaluateStateCertainCorrectPredictionScoresZero(t *testing.T) {
	p := NewPredictor(NewStore())
	p.Seed(1)

	acc := EvaluateState(p, bowledOutState(50, "win"), 100)
	require.NotNil(t, acc)

	assert.Equal(t, 1.0, acc.PWin)
	assert.Equal(t, "win", acc.Predicted)
	assert.True(t, acc.ResultCorrect)
	assert.Equal(t, 0.0, acc.BrierScore)
}

func TestEvaluateStateCertainWrongPredictionScoresTwo(t *testing.T) {
	p := NewPredictor(NewStore())
	p.Seed(1)

	// Finished as a first-team win but labelled a loss
	acc := EvaluateState(p, bowledOutState(50, "loss"), 100)
	require.NotNil(t, acc)

	assert.False(t, acc.ResultCorrect)
	assert.Equal(t, 2.0, acc.BrierScore)
}

func TestEvaluateStateSkipsStatesWithoutOutcome(t *testing.T) {
	p := NewPredictor(NewStore())

	assert.Nil(t, EvaluateState(p, bowledOutState(50, ""), 100))
	assert.Nil(t, EvaluateState(p, nil, 100))
}

func TestEvaluateAllStates(t *testing.T) {
	p := NewPredictor(NewStore())
	p.Seed(1)

	states := []*GameState{
		bowledOutState(50, "win"),
		bowledOutState(0, "draw"),
		bowledOutState(-50, "win"), // mislabelled on purpose
		bowledOutState(10, ""),     // no outcome, skipped
	}

	agg := EvaluateAllStates(p, states, 100)
	require.NotNil(t, agg)

	assert.Equal(t, 3, agg.TotalStates)
	assert.InDelta(t, 2.0/3.0*100, agg.ResultAccuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, agg.MeanBrierScore, 1e-9)
}

func TestEvaluateAllStatesEmpty(t *testing.T) {
	p := NewPredictor(NewStore())
	assert.Nil(t, EvaluateAllStates(p, nil, 100))
}

func TestModalOutcome(t *testing.T) {
	assert.Equal(t, "win", modalOutcome(0.5, 0.3, 0.2))
	assert.Equal(t, "draw", modalOutcome(0.2, 0.5, 0.3))
	assert.Equal(t, "loss", modalOutcome(0.2, 0.3, 0.5))
}
