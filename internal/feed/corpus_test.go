package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path
}

func TestLoadReferenceCorpusFlatList(t *testing.T) {
	path := writeCorpus(t, `[
		{"name": "Chicken  Biryani", "calories": 450},
		{"food": "Masala Dosa", "energy_kcal": "250"},
		{"name": "Mystery Dish"}
	]`)

	entries, err := LoadReferenceCorpus(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "chicken biryani", entries[0].Name)
	require.NotNil(t, entries[0].Calories)
	assert.InDelta(t, 450, *entries[0].Calories, 1e-9)

	assert.Equal(t, "masala dosa", entries[1].Name)
	require.NotNil(t, entries[1].Calories)
	assert.InDelta(t, 250, *entries[1].Calories, 1e-9)

	// No calorie value is an entry that can never impute, not an error.
	assert.Nil(t, entries[2].Calories)
}

func TestLoadReferenceCorpusKeyedDict(t *testing.T) {
	path := writeCorpus(t, `{
		"breads": [{"name": "Naan", "calories": 260}],
		"rice": [{"name": "Jeera Rice", "calories": 310}],
		"single": {"name": "Lassi", "calories": 150}
	}`)

	entries, err := LoadReferenceCorpus(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Dict keys flatten in sorted order so runs are reproducible.
	assert.Equal(t, "naan", entries[0].Name)
	assert.Equal(t, "jeera rice", entries[1].Name)
	assert.Equal(t, "lassi", entries[2].Name)
}

func TestLoadReferenceCorpusMissingFile(t *testing.T) {
	entries, err := LoadReferenceCorpus(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadReferenceCorpusGarbage(t *testing.T) {
	path := writeCorpus(t, `"just a string"`)
	_, err := LoadReferenceCorpus(path)
	assert.Error(t, err)
}
