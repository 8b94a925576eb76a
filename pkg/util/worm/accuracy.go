package worm

// PredictionAccuracy holds accuracy metrics for a single historical game state
type PredictionAccuracy struct {
	MatchID string
	Innings int
	Over    int

	PWin  float64
	PDraw float64
	PLoss float64

	Predicted string
	Actual    string

	ResultCorrect bool
	BrierScore    float64
}

// AggregateAccuracy holds aggregate prediction accuracy statistics
type AggregateAccuracy struct {
	TotalStates    int
	ResultAccuracy float64 // Percentage of states where the modal outcome was right
	MeanBrierScore float64
}

// EvaluateState replays one historical game state through the simulator and
// compares the predicted outcome distribution with what actually happened.
// Returns nil when the state has no recorded outcome.
func EvaluateState(p *Predictor, state *GameState, nSimulations int) *PredictionAccuracy {
	if state == nil || state.Outcome == "" {
		return nil
	}

	pWin, pDraw, pLoss := p.PredictSnapshot(state.Snapshot(), nSimulations)

	accuracy := &PredictionAccuracy{
		MatchID:   state.MatchID,
		Innings:   state.Innings,
		Over:      state.Over,
		PWin:      pWin,
		PDraw:     pDraw,
		PLoss:     pLoss,
		Predicted: modalOutcome(pWin, pDraw, pLoss),
		Actual:    state.Outcome,
	}

	accuracy.ResultCorrect = accuracy.Predicted == accuracy.Actual
	accuracy.BrierScore = brierScore(pWin, pDraw, pLoss, state.Outcome)

	return accuracy
}

// EvaluateAllStates evaluates prediction accuracy across many historical
// states, typically with the bulk trial count
func EvaluateAllStates(p *Predictor, states []*GameState, nSimulations int) *AggregateAccuracy {
	var accuracies []*PredictionAccuracy

	for _, state := range states {
		if accuracy := EvaluateState(p, state, nSimulations); accuracy != nil {
			accuracies = append(accuracies, accuracy)
		}
	}

	if len(accuracies) == 0 {
		return nil
	}

	aggregate := &AggregateAccuracy{
		TotalStates: len(accuracies),
	}

	correct := 0
	totalBrier := 0.0
	for _, acc := range accuracies {
		if acc.ResultCorrect {
			correct++
		}
		totalBrier += acc.BrierScore
	}

	aggregate.ResultAccuracy = float64(correct) / float64(aggregate.TotalStates) * 100
	aggregate.MeanBrierScore = totalBrier / float64(aggregate.TotalStates)

	return aggregate
}

// modalOutcome picks the outcome with the highest probability
func modalOutcome(pWin, pDraw, pLoss float64) string {
	switch {
	case pWin >= pDraw && pWin >= pLoss:
		return "win"
	case pDraw >= pLoss:
		return "draw"
	default:
		return "loss"
	}
}

// brierScore is the multi-category Brier score: the squared distance between
// the predicted distribution and the observed outcome. Lower is better; a
// certain correct prediction scores 0, a certain wrong one scores 2.
func brierScore(pWin, pDraw, pLoss float64, outcome string) float64 {
	win, draw, loss := 0.0, 0.0, 0.0
	switch outcome {
	case "win":
		win = 1.0
	case "draw":
		draw = 1.0
	case "loss":
		loss = 1.0
	}

	return (pWin-win)*(pWin-win) + (pDraw-draw)*(pDraw-draw) + (pLoss-loss)*(pLoss-loss)
}
