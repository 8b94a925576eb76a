package worm

import (
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// OversSplitPolicy decides, per trial, which side bats next and what share of
// the remaining overs that first simulated innings receives. It exists as a
// named policy so the heuristic can be swapped without touching the sampling
// core.
type OversSplitPolicy interface {
	FirstInnings(firstWickets, secondWickets int, oversLeft float64) (firstTeamBats bool, oversBudget float64)
}

// HalfSplitPolicy is the default heuristic: the side with more wickets in
// hand is treated as still due to bat (or currently batting) and receives
// half the remaining overs; the other side then gets everything left.
// It deliberately ignores declarations, follow-ons and batting for a draw.
type HalfSplitPolicy struct{}

func (HalfSplitPolicy) FirstInnings(firstWickets, secondWickets int, oversLeft float64) (bool, float64) {
	return firstWickets > secondWickets, oversLeft / 2
}

// outcomeCounts accumulates trial results for one worker
type outcomeCounts struct {
	win  int
	draw int
	loss int
}

func (c *outcomeCounts) add(other outcomeCounts) {
	c.win += other.win
	c.draw += other.draw
	c.loss += other.loss
}

// SimulateMatch estimates win/draw/loss probabilities for the first team by
// running nSimulations Monte Carlo completions of the remaining match.
//
// oversLeft is the total overs of play remaining, the wicket counts are each
// team's wickets in hand across both innings (0-20), and lead is the first
// team's current run differential. Inputs outside those ranges are the
// caller's precondition to respect.
func (p *Predictor) SimulateMatch(oversLeft float64, firstWickets, secondWickets, lead, nSimulations int) (pWin, pDraw, pLoss float64) {
	// With both sides bowled out the scoreboard can no longer move, so the
	// lead decides the match without any sampling
	if firstWickets == 0 && secondWickets == 0 {
		switch {
		case lead > 0:
			return 1.0, 0.0, 0.0
		case lead < 0:
			return 0.0, 0.0, 1.0
		default:
			return 0.0, 1.0, 0.0
		}
	}

	// A degenerate trial count must still yield a valid distribution
	if nSimulations < 1 {
		nSimulations = 1
	}

	workers := Config.SimulationWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > nSimulations {
		workers = nSimulations
	}
	if workers < 1 {
		workers = 1
	}

	var total outcomeCounts
	if workers == 1 {
		total = p.runTrials(oversLeft, firstWickets, secondWickets, lead, nSimulations, p.rng)
	} else {
		total = p.runTrialsParallel(oversLeft, firstWickets, secondWickets, lead, nSimulations, workers)
	}

	// The loss share is the remainder so the three probabilities always
	// close to exactly one
	trials := float64(total.win + total.draw + total.loss)
	pWin = float64(total.win) / trials
	pDraw = float64(total.draw) / trials
	pLoss = 1.0 - pWin - pDraw
	if pLoss < 0 {
		pLoss = 0
	}
	return pWin, pDraw, pLoss
}

// runTrialsParallel shards trials across workers, each with an independent
// random stream derived from the predictor's source so seeded runs stay
// reproducible
func (p *Predictor) runTrialsParallel(oversLeft float64, firstWickets, secondWickets, lead, nSimulations, workers int) outcomeCounts {
	trialsPerWorker := nSimulations / workers
	remainder := nSimulations % workers

	results := make(chan outcomeCounts, workers)
	var g errgroup.Group

	for w := 0; w < workers; w++ {
		workerTrials := trialsPerWorker
		if w < remainder {
			workerTrials++
		}
		workerSeed := p.rng.Int63()

		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(workerSeed))
			results <- p.runTrials(oversLeft, firstWickets, secondWickets, lead, workerTrials, workerRng)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	var total outcomeCounts
	for counts := range results {
		total.add(counts)
	}
	return total
}

// runTrials executes a batch of independent match-completion trials
func (p *Predictor) runTrials(oversLeft float64, firstWickets, secondWickets, lead, trials int, rng *rand.Rand) outcomeCounts {
	var counts outcomeCounts

	for i := 0; i < trials; i++ {
		simLead := p.simulateOneCompletion(oversLeft, firstWickets, secondWickets, lead, rng)

		switch {
		case simLead > 0:
			counts.win++
		case simLead < 0:
			counts.loss++
		default:
			counts.draw++
		}
	}

	return counts
}

// simulateOneCompletion plays out the unfinished part of the match once and
// returns the first team's final lead
func (p *Predictor) simulateOneCompletion(oversLeft float64, firstWickets, secondWickets, lead int, rng *rand.Rand) int {
	firstBats, budget := p.policy.FirstInnings(firstWickets, secondWickets, oversLeft)

	simLead := lead
	remaining := oversLeft

	if firstBats {
		runs, overs := simulateInnings(p.store, rng, firstWickets, budget)
		simLead += runs
		remaining -= overs

		if remaining > 0 && secondWickets > 0 {
			runs, _ := simulateInnings(p.store, rng, secondWickets, remaining)
			simLead -= runs
		}
	} else {
		runs, overs := simulateInnings(p.store, rng, secondWickets, budget)
		simLead -= runs
		remaining -= overs

		if remaining > 0 && firstWickets > 0 {
			runs, _ := simulateInnings(p.store, rng, firstWickets, remaining)
			simLead += runs
		}
	}

	return simLead
}
