package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthyplate/menu-cli/internal/config"
	"github.com/healthyplate/menu-cli/internal/export"
	"github.com/healthyplate/menu-cli/internal/metrics"
	"github.com/healthyplate/menu-cli/internal/model"
	"github.com/healthyplate/menu-cli/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{
			Dir:               dir,
			VendorFeed:        "vendor_menus.json",
			PartnerFeed:       "partner_menus.json",
			ReferenceCorpus:   "indian_foods_nutrition.json",
			TrainLabels:       "train_labels_highconf.csv",
			ItemsCSV:          "items.csv",
			ItemsXLSX:         "items.xlsx",
			EnrichedLocalCSV:  "items_enriched_local.csv",
			EnrichedLocalXLSX: "items_enriched_local.xlsx",
			EnrichedModelCSV:  "items_enriched_model.csv",
			EnrichedModelXLSX: "items_enriched_model.xlsx",
			AggregatesCSV:     "vendor_aggregates.csv",
			AggregatesXLSX:    "vendor_aggregates.xlsx",
			MetricsFile:       "metrics.json",
		},
		Impute: config.ImputeConfig{MedThreshold: 75, HighThreshold: 90},
		Train:  config.TrainConfig{ModelsDir: filepath.Join(dir, "models")},
		Store:  config.StoreConfig{Path: filepath.Join(dir, "output.db")},
	}
}

func writeTestData(t *testing.T, cfg *config.Config) {
	t.Helper()

	vendorFeed := `[
		{"vendorName": "A Menus", "items": [
			{"id": 1, "title": "Paneer Wrap", "price": "150",
			 "nutrition": {"calories": 300, "protein": 12}},
			{"id": 2, "title": "Chicken Biryani", "price": "220"},
			{"id": 3, "title": "Quinoa Power Bowl", "price": "180"}
		]}
	]`
	require.NoError(t, os.WriteFile(cfg.Data.Path(cfg.Data.VendorFeed), []byte(vendorFeed), 0o644))

	partnerFeed := `[
		{"hotel": "Spice Villa", "name": "Masala Dosa", "price": "90"}
	]`
	require.NoError(t, os.WriteFile(cfg.Data.Path(cfg.Data.PartnerFeed), []byte(partnerFeed), 0o644))

	corpus := `[
		{"name": "Chicken Biryani", "calories": 450},
		{"name": "Masala Dosa", "calories": 250}
	]`
	require.NoError(t, os.WriteFile(cfg.Data.Path(cfg.Data.ReferenceCorpus), []byte(corpus), 0o644))

	labels := "title,vendor_name,description,calories\n" +
		"Fried Butter Burger,grease spot,,800\n" +
		"Double Fried Butter Burger,grease spot,,850\n" +
		"Fried Cheese Burger,grease spot,,780\n" +
		"Steamed Garden Salad,green bowl,,200\n" +
		"Light Garden Salad,green bowl,,180\n" +
		"Steamed Veg Salad,green bowl,,220\n" +
		"Garden Salad Bowl,green bowl,,210\n" +
		"Butter Burger Meal,grease spot,,820\n"
	require.NoError(t, os.WriteFile(cfg.Data.Path(cfg.Data.TrainLabels), []byte(labels), 0o644))
}

func findItem(t *testing.T, items []model.CanonicalItem, title string) model.CanonicalItem {
	t.Helper()
	for _, it := range items {
		if it.Title == title {
			return it
		}
	}
	t.Fatalf("item %q not found", title)
	return model.CanonicalItem{}
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	writeTestData(t, cfg)
	ctx := context.Background()

	// Stage 1: normalize, aggregate, mirror to the store.
	require.NoError(t, runETL(ctx, cfg))
	assert.FileExists(t, cfg.Data.Path(cfg.Data.ItemsCSV))
	assert.FileExists(t, cfg.Data.Path(cfg.Data.AggregatesCSV))

	items, err := export.ReadItemsCSV(cfg.Data.Path(cfg.Data.ItemsCSV))
	require.NoError(t, err)
	require.Len(t, items, 4)

	wrap := findItem(t, items, "Paneer Wrap")
	assert.Equal(t, "a", wrap.VendorName)
	require.NotNil(t, wrap.PriceCents)
	assert.Equal(t, int64(150), *wrap.PriceCents)
	require.NotNil(t, wrap.Calories)
	assert.InDelta(t, 300, *wrap.Calories, 1e-9)

	st, err := store.NewSQLite(cfg.Store.Path)
	require.NoError(t, err)
	defer st.Close()

	agg, err := st.GetVendorAggregate(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 3, agg.ItemCount)
	assert.Equal(t, 1, agg.ItemsWithNutritionCount)
	assert.InDelta(t, 100.0, agg.MediumPct, 1e-9)
	require.NotNil(t, agg.AvgCalories)
	assert.InDelta(t, 300, *agg.AvgCalories, 1e-9)

	// Stage 2: fuzzy imputation against the reference corpus.
	require.NoError(t, runFuzzyImpute(ctx, cfg, ""))
	items, err = export.ReadItemsCSV(cfg.Data.Path(cfg.Data.EnrichedLocalCSV))
	require.NoError(t, err)

	biryani := findItem(t, items, "Chicken Biryani")
	require.NotNil(t, biryani.Calories)
	assert.InDelta(t, 450, *biryani.Calories, 1e-9)
	assert.True(t, biryani.CaloriesImputed)
	assert.Equal(t, model.CalorieSourceLocalNutrition, biryani.CaloriesSource)

	// The novel dish matches nothing and stays null for the next tier.
	assert.Nil(t, findItem(t, items, "Quinoa Power Bowl").Calories)

	// Stage 3: train the text regressor.
	require.NoError(t, runTrain(cfg, ""))
	assert.FileExists(t, filepath.Join(cfg.Train.ModelsDir, "tfidf_vectorizer.json"))
	assert.FileExists(t, filepath.Join(cfg.Train.ModelsDir, "ridge_regressor.json"))

	// Stage 4: model imputation over the fuzzy-enriched table.
	require.NoError(t, runModelImpute(cfg))
	items, err = export.ReadItemsCSV(cfg.Data.Path(cfg.Data.EnrichedModelCSV))
	require.NoError(t, err)

	bowl := findItem(t, items, "Quinoa Power Bowl")
	require.NotNil(t, bowl.Calories)
	assert.True(t, bowl.CaloriesImputedModel)
	assert.Equal(t, model.CalorieSourceModel, bowl.CaloriesSource)
	require.NotNil(t, bowl.CaloriesConfidence)
	assert.InDelta(t, 0.7, *bowl.CaloriesConfidence, 1e-9)

	// Rows filled by the fuzzy tier carried through untouched.
	biryani = findItem(t, items, "Chicken Biryani")
	assert.InDelta(t, 450, *biryani.Calories, 1e-9)
	assert.Equal(t, model.CalorieSourceLocalNutrition, biryani.CaloriesSource)
	assert.False(t, biryani.CaloriesImputedModel)

	// Every stage left its own metrics section behind.
	record, err := metrics.NewRecorder(cfg.Data.Path(cfg.Data.MetricsFile)).Read()
	require.NoError(t, err)
	assert.Contains(t, record, metrics.SectionIngest)
	assert.Contains(t, record, metrics.SectionFuzzyImpute)
	assert.Contains(t, record, metrics.SectionModelImpute)
	assert.Contains(t, record, metrics.SectionRegressor)
}

func TestRunETLNoFeeds(t *testing.T) {
	cfg := testConfig(t)
	assert.Error(t, runETL(context.Background(), cfg))
}

func TestRunFuzzyImputeWithoutItemsTable(t *testing.T) {
	cfg := testConfig(t)
	// Missing upstream artifacts are a diagnostic, not a failure.
	assert.NoError(t, runFuzzyImpute(context.Background(), cfg, ""))
}

func TestRunModelImputeWithoutArtifacts(t *testing.T) {
	cfg := testConfig(t)
	assert.NoError(t, runModelImpute(cfg))
}

func TestRunTrainWithoutLabels(t *testing.T) {
	cfg := testConfig(t)
	assert.NoError(t, runTrain(cfg, ""))
}
