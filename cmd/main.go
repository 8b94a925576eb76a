package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ctford/wicketworm/internal/logger"
	"github.com/ctford/wicketworm/pkg/util/worm"
)

func main() {
	logger.SetShowDateTime(true)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		runIngest()
	case "learn":
		runLearn()
	case "predict":
		runPredict(os.Args[2:])
	case "evaluate":
		runEvaluate()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wicketworm <command>")
	fmt.Fprintln(os.Stderr, "  ingest                                    fetch and persist the historical corpus")
	fmt.Fprintln(os.Stderr, "  learn                                     build the partnership store from the database")
	fmt.Fprintln(os.Stderr, "  predict <overs> <firstW> <secondW> <lead> simulate a match from the given state")
	fmt.Fprintln(os.Stderr, "  evaluate                                  replay historical states through the simulator")
}

func runIngest() {
	logger.Info("Starting Cricsheet corpus ingestion...")
	ds := worm.GetDatasourceInstance()
	if err := ds.Update(); err != nil {
		logger.Error("Ingestion failed:", err)
		os.Exit(1)
	}
	logger.Info("Ingestion completed successfully")
}

func runLearn() {
	logger.Info("Learning partnership distributions from the database...")
	store, err := worm.LearnFromDatabase()
	if err != nil {
		logger.Error("Learning failed:", err)
		os.Exit(1)
	}

	for _, wicket := range store.Wickets() {
		runs, overs, _ := store.MeanPartnership(wicket)
		logger.Info("Wicket partnership average", wicket, runs, overs)
	}

	if err := worm.SaveStore(store, worm.Config.WormStorePath); err != nil {
		logger.Error("Failed to save store:", err)
		os.Exit(1)
	}
}

func runPredict(args []string) {
	if len(args) != 4 {
		usage()
		os.Exit(1)
	}

	oversLeft, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		logger.Fatal("invalid overs argument:", args[0])
	}
	firstWickets := parseIntArg(args[1], "first team wickets")
	secondWickets := parseIntArg(args[2], "second team wickets")
	lead := parseIntArg(args[3], "lead")

	store, err := worm.LoadStore(worm.Config.WormStorePath)
	if err != nil {
		logger.Error("Failed to load store:", err)
		os.Exit(1)
	}

	predictor := worm.NewPredictor(store)
	pWin, pDraw, pLoss := predictor.SimulateMatch(oversLeft, firstWickets, secondWickets, lead, worm.GetQuerySimulations())

	fmt.Printf("win %.3f  draw %.3f  loss %.3f\n", pWin, pDraw, pLoss)
}

func runEvaluate() {
	store, err := worm.LoadStore(worm.Config.WormStorePath)
	if err != nil {
		logger.Error("Failed to load store:", err)
		os.Exit(1)
	}

	results, err := worm.FindAll(&worm.GameState{})
	if err != nil {
		logger.Error("Failed to load historical states:", err)
		os.Exit(1)
	}

	var states []*worm.GameState
	for _, result := range results {
		if state, ok := result.(*worm.GameState); ok {
			states = append(states, state)
		}
	}

	predictor := worm.NewPredictor(store)
	aggregate := worm.EvaluateAllStates(predictor, states, worm.GetBulkSimulations())
	if aggregate == nil {
		logger.Error("No evaluable states in database")
		os.Exit(1)
	}

	logger.Info("Evaluated states", aggregate.TotalStates)
	logger.Info("Result accuracy (%)", aggregate.ResultAccuracy)
	logger.Info("Mean Brier score", aggregate.MeanBrierScore)
}

func parseIntArg(arg, name string) int {
	v, err := strconv.Atoi(arg)
	if err != nil {
		logger.Fatal("invalid "+name+" argument:", arg)
	}
	return v
}
