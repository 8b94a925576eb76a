package worm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := steadyStore(t, 30, 5)
	path := filepath.Join(t.TempDir(), "store.json")

	require.NoError(t, SaveStore(store, path))

	loaded, err := LoadStore(path)
	require.NoError(t, err)

	for wicket := 1; wicket <= MaxWickets; wicket++ {
		want, ok := store.Statistics(wicket)
		require.True(t, ok)
		got, ok := loaded.Statistics(wicket)
		require.True(t, ok)

		assert.Equal(t, want.OversDistribution, got.OversDistribution, "wicket %d overs", wicket)
		assert.Equal(t, want.RunsDistribution, got.RunsDistribution, "wicket %d runs", wicket)
	}
}

func TestLoadStoreMissingFile(t *testing.T) {
	_, err := LoadStore(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadStoreGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	_, err := LoadStore(path)
	assert.Error(t, err)
}

func TestLoadStoreBadWicketKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"opener": {"overs_distribution": [], "runs_distribution": []}}`), 0644))

	_, err := LoadStore(path)
	assert.ErrorContains(t, err, "non-numeric wicket key")
}

func TestLoadStoreWicketKeyOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"11": {"overs_distribution": [], "runs_distribution": []}}`), 0644))

	_, err := LoadStore(path)
	assert.ErrorContains(t, err, "out of range")
}

func TestLoadStoreWrongDistributionLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	short := []byte(`{"3": {"overs_distribution": [0.5, 0.5], "runs_distribution": [1.0]}}`)
	require.NoError(t, os.WriteFile(path, short, 0644))

	_, err := LoadStore(path)
	assert.ErrorContains(t, err, "corrupt at wicket 3")
}
