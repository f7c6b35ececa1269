package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthyplate/menu-cli/internal/fetcher"
	"github.com/healthyplate/menu-cli/internal/model"
)

func sampleItems() []model.CanonicalItem {
	ts := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	conf := 0.9
	score := 92.0
	return []model.CanonicalItem{
		{
			VendorID:           "0cc175b9",
			VendorName:         "a",
			SourceVendorName:   "A Menus",
			Source:             model.FeedSourceVendorMenus,
			SourceIndex:        0,
			ItemID:             "1",
			Title:              "Paneer Wrap",
			Description:        "spicy wrap",
			Category:           "mains",
			Tags:               []string{"veg", "spicy"},
			PriceCents:         model.Int64Ptr(150),
			Calories:           model.Float64Ptr(300.5),
			Protein:            model.Float64Ptr(12),
			CaloriesImputed:    true,
			CaloriesSource:     model.CalorieSourceLocalNutrition,
			CaloriesConfidence: &conf,
			LocalMatchScore:    &score,
			LocalMatchName:     "paneer wrap",
			IngestTS:           ts,
		},
		{
			VendorID:         "92eb5ffe",
			VendorName:       "b",
			SourceVendorName: "b",
			Source:           model.FeedSourcePartnerMenus,
			SourceIndex:      1,
			ItemID:           "92eb5ffe-1",
			Title:            "Free Sample",
			PriceCents:       model.Int64Ptr(0),
			IngestTS:         ts,
		},
	}
}

func TestItemsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, WriteItemsCSV(path, sampleItems()))

	items, err := ReadItemsCSV(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	full := items[0]
	assert.Equal(t, "0cc175b9", full.VendorID)
	assert.Equal(t, "A Menus", full.SourceVendorName)
	assert.Equal(t, model.FeedSourceVendorMenus, full.Source)
	assert.Equal(t, []string{"veg", "spicy"}, full.Tags)
	require.NotNil(t, full.PriceCents)
	assert.Equal(t, int64(150), *full.PriceCents)
	require.NotNil(t, full.Calories)
	assert.InDelta(t, 300.5, *full.Calories, 1e-9)
	assert.True(t, full.CaloriesImputed)
	assert.Equal(t, model.CalorieSourceLocalNutrition, full.CaloriesSource)
	require.NotNil(t, full.CaloriesConfidence)
	assert.InDelta(t, 0.9, *full.CaloriesConfidence, 1e-9)
	require.NotNil(t, full.LocalMatchScore)
	assert.InDelta(t, 92, *full.LocalMatchScore, 1e-9)
	assert.True(t, full.IngestTS.Equal(sampleItems()[0].IngestTS))

	// Zero price survives as zero; absent values survive as null.
	sparse := items[1]
	require.NotNil(t, sparse.PriceCents)
	assert.Equal(t, int64(0), *sparse.PriceCents)
	assert.Nil(t, sparse.Calories)
	assert.Nil(t, sparse.Protein)
	assert.Nil(t, sparse.CaloriesConfidence)
	assert.Empty(t, sparse.Tags)
	assert.False(t, sparse.CaloriesImputed)
}

func TestItemsXLSXMirrorsColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.xlsx")
	require.NoError(t, WriteItemsXLSX(path, sampleItems()))

	header, rows, err := fetcher.ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, model.ItemColumns, header)
	require.Len(t, rows, 2)

	// Null price is an empty cell, zero price is "0".
	assert.Equal(t, "150", rows[0][10])
	assert.Equal(t, "0", rows[1][10])
	assert.Equal(t, "", rows[1][11])
}

func TestWriteItemArtifactsXLSXFailureSwallowed(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "items.csv")
	xlsxPath := filepath.Join(dir, "no-such-dir", "items.xlsx")

	// The secondary artifact failing must not fail the run.
	require.NoError(t, WriteItemArtifacts(csvPath, xlsxPath, sampleItems()))
	assert.FileExists(t, csvPath)
}

func TestWriteItemArtifactsCSVFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "no-such-dir", "items.csv")
	xlsxPath := filepath.Join(dir, "items.xlsx")

	assert.Error(t, WriteItemArtifacts(csvPath, xlsxPath, sampleItems()))
}

func TestAggregatesCSVColumns(t *testing.T) {
	aggs := []model.VendorAggregate{
		{
			VendorID:             "0cc175b9",
			VendorName:           "a",
			ItemCount:            2,
			PercentWithNutrition: 50,
			AvgCalories:          model.Float64Ptr(300),
			SumProtein:           12,
			MediumPct:            100,
		},
		{
			VendorID:             "92eb5ffe",
			VendorName:           "b",
			ItemCount:            1,
			MissingNutritionFlag: true,
		},
	}

	path := filepath.Join(t.TempDir(), "aggs.csv")
	require.NoError(t, WriteAggregatesCSV(path, aggs))

	header, rows, err := fetcher.ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, model.AggregateColumns, header)
	require.Len(t, rows, 2)

	// avg_calories: present for the first vendor, empty for the second.
	assert.Equal(t, "300", rows[0][5])
	assert.Equal(t, "", rows[1][5])
	assert.Equal(t, "true", rows[1][17])
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.csv")
	require.NoError(t, WriteItemsCSV(present, nil))

	got, err := FirstExisting(filepath.Join(dir, "absent.csv"), present)
	require.NoError(t, err)
	assert.Equal(t, present, got)

	_, err = FirstExisting(filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"))
	assert.Error(t, err)
}

func TestItemsTableExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, ItemsTableExists(filepath.Join(dir, "absent.csv")))
	assert.False(t, ItemsTableExists(dir))

	path := filepath.Join(dir, "items.csv")
	require.NoError(t, WriteItemsCSV(path, nil))
	assert.True(t, ItemsTableExists(path))
}
