package worm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempDatabase points the package at a throwaway sqlite file and makes
// sure the shared handle is released again afterwards
func useTempDatabase(t *testing.T) {
	t.Helper()

	previous := Config.WormDbPath
	require.NoError(t, CloseDatabase())

	Config.WormDbPath = filepath.Join(t.TempDir(), "worm.db")
	require.NoError(t, createTables())

	t.Cleanup(func() {
		_ = CloseDatabase()
		Config.WormDbPath = previous
	})
}

func TestGetDBCreatesMissingDirectory(t *testing.T) {
	previous := Config.WormDbPath
	require.NoError(t, CloseDatabase())

	// A fresh install has no assets directory yet; opening the database
	// must not depend on the archive cache having created it first
	Config.WormDbPath = filepath.Join(t.TempDir(), "assets", "nested", "worm.db")
	t.Cleanup(func() {
		_ = CloseDatabase()
		Config.WormDbPath = previous
	})

	require.NoError(t, createTables())
	require.NoError(t, Save(&PartnershipSample{MatchID: "m0", Innings: 1, Wicket: 1, Runs: 5, Overs: 1.0}))
}

func TestSaveAndExists(t *testing.T) {
	useTempDatabase(t)

	sample := &PartnershipSample{
		MatchID: "m1",
		Innings: 1,
		Wicket:  3,
		Runs:    42,
		Overs:   7.5,
	}

	exists, err := Exists(sample)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, Save(sample))

	exists, err = Exists(sample)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSaveUpdatesExistingRow(t *testing.T) {
	useTempDatabase(t)

	sample := &PartnershipSample{MatchID: "m1", Innings: 2, Wicket: 1, Runs: 10, Overs: 2.0}
	require.NoError(t, Save(sample))

	sample.Runs = 25
	sample.Overs = 4.5
	require.NoError(t, Save(sample))

	results, err := FindWhere(&PartnershipSample{}, "match_id = ? AND innings = ? AND wicket = ?", "m1", 2, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0].(*PartnershipSample)
	assert.Equal(t, 25, got.Runs)
	assert.Equal(t, 4.5, got.Overs)
}

func TestBulkSaveAndFindAll(t *testing.T) {
	useTempDatabase(t)

	var objects []Persistable
	for wicket := 1; wicket <= 5; wicket++ {
		objects = append(objects, &PartnershipSample{
			MatchID: "m2",
			Innings: 1,
			Wicket:  wicket,
			Runs:    wicket * 10,
			Overs:   float64(wicket),
		})
	}
	require.NoError(t, BulkSave(objects))

	results, err := FindAll(&PartnershipSample{})
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestBulkSaveUpsertsOnPrimaryKey(t *testing.T) {
	useTempDatabase(t)

	first := []Persistable{
		&PartnershipSample{MatchID: "m3", Innings: 1, Wicket: 1, Runs: 10, Overs: 2.0},
		&PartnershipSample{MatchID: "m3", Innings: 1, Wicket: 2, Runs: 20, Overs: 4.0},
	}
	require.NoError(t, BulkSave(first))

	// Re-ingesting the same rows with new values replaces, never duplicates
	second := []Persistable{
		&PartnershipSample{MatchID: "m3", Innings: 1, Wicket: 1, Runs: 15, Overs: 3.0},
		&PartnershipSample{MatchID: "m3", Innings: 1, Wicket: 2, Runs: 25, Overs: 5.0},
	}
	require.NoError(t, BulkSave(second))

	results, err := FindAll(&PartnershipSample{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	rows, err := FindWhere(&PartnershipSample{}, "match_id = ? AND wicket = ?", "m3", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 15, rows[0].(*PartnershipSample).Runs)
}

func TestMatchRecordRoundTrip(t *testing.T) {
	useTempDatabase(t)

	match := &MatchRecord{
		ID:           "63438",
		FirstTeam:    "England",
		SecondTeam:   "Australia",
		Outcome:      "win",
		InningsCount: 4,
	}
	require.NoError(t, Save(match))

	results, err := FindWhere(&MatchRecord{}, "id = ?", "63438")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0].(*MatchRecord)
	assert.Equal(t, "England", got.FirstTeam)
	assert.Equal(t, "win", got.Outcome)
	assert.Equal(t, 4, got.InningsCount)
	// Innings carry no dbtype tag and never touch the database
	assert.Empty(t, got.Innings)
}

func TestGameStateRoundTrip(t *testing.T) {
	useTempDatabase(t)

	state := &GameState{
		MatchID:               "63438",
		Innings:               4,
		Over:                  12,
		OversLeft:             30,
		FirstTeamScoreInn1:    320,
		FirstTeamWicketsInn1:  10,
		SecondTeamScoreInn2:   280,
		SecondTeamWicketsInn2: 10,
		FirstTeamScoreInn3:    190,
		FirstTeamWicketsInn3:  10,
		SecondTeamScoreInn4:   95,
		SecondTeamWicketsInn4: 4,
		CurrentLead:           135,
		RunsToWin:             136,
		Outcome:               "win",
	}
	require.NoError(t, Save(state))

	results, err := FindWhere(&GameState{}, "match_id = ?", "63438")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0].(*GameState)
	assert.Equal(t, 135, got.CurrentLead)
	assert.Equal(t, 136, got.RunsToWin)
	assert.Equal(t, 30.0, got.OversLeft)
}

func TestGenerateCreateTablePrimaryKey(t *testing.T) {
	sql := generateCreateTableSQL(&PartnershipSample{}, "partnership_sample")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS partnership_sample")
	assert.Contains(t, sql, "PRIMARY KEY (match_id, innings, wicket)")
}
