package worm

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempCache points the archive cache at a throwaway directory
func useTempCache(t *testing.T) string {
	t.Helper()

	previous := Config.WormCachePath
	Config.WormCachePath = t.TempDir()
	t.Cleanup(func() { Config.WormCachePath = previous })
	return Config.WormCachePath
}

func writeArchive(t *testing.T, path string, members map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range members {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtractArchiveKeepsOnlyMatchFiles(t *testing.T) {
	cache := useTempCache(t)

	archivePath := filepath.Join(t.TempDir(), "tests.zip")
	writeArchive(t, archivePath, map[string]string{
		"63438.json": cricsheetFixture,
		"README.txt": "not a match",
	})

	ds := &Datasource{}
	extracted, err := ds.ExtractArchive(archivePath)
	require.NoError(t, err)

	require.Len(t, extracted, 1)
	assert.Equal(t, filepath.Join(cache, "63438.json"), extracted[0])
}

func TestExtractArchiveRejectsMissingFile(t *testing.T) {
	useTempCache(t)

	ds := &Datasource{}
	_, err := ds.ExtractArchive(filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
}

func TestLoadFromDirSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "63438.json"), []byte(cricsheetFixture), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))

	ds := &Datasource{}
	require.NoError(t, ds.LoadFromDir(dir))

	require.Len(t, ds.Matches, 1)
	assert.Equal(t, "63438", ds.Matches[0].ID)
	assert.NotEmpty(t, ds.States)
}

func TestCorpusFlattensInnings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "63438.json"), []byte(cricsheetFixture), 0644))

	ds := &Datasource{}
	require.NoError(t, ds.LoadFromDir(dir))

	corpus := ds.Corpus()
	require.Len(t, corpus, 2)
	assert.Equal(t, "63438", corpus[0].MatchID)
	assert.Equal(t, 1, corpus[0].Innings)
	assert.Equal(t, 2, corpus[1].Innings)
}

func TestPersistAndLearnFromDatabase(t *testing.T) {
	useTempDatabase(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "63438.json"), []byte(cricsheetFixture), 0644))

	ds := &Datasource{}
	require.NoError(t, ds.LoadFromDir(dir))
	require.NoError(t, ds.Persist())

	store, err := LearnFromDatabase()
	require.NoError(t, err)
	require.NotNil(t, store)

	// The fixture has one partnership sample per innings for wicket 1, so
	// wicket 1 carries learned mass while the rest fall back to uniform
	ps, ok := store.Statistics(1)
	require.True(t, ok)
	assert.Greater(t, ps.RunsDistribution[10], 1.0/float64(RunsBuckets))
}

func TestGetDatasourceInstanceIsSingleton(t *testing.T) {
	a := GetDatasourceInstance()
	b := GetDatasourceInstance()
	assert.Same(t, a, b)
	assert.Equal(t, Config.CricsheetBaseURL+"/downloads/", a.DownloadsURL)
}
