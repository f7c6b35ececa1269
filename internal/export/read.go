package export

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/healthyplate/menu-cli/internal/fetcher"
	"github.com/healthyplate/menu-cli/internal/model"
)

// ReadItemsCSV loads a persisted canonical item table. Columns are
// resolved by header name, so a table written by an older stage with
// extra or reordered columns still loads.
func ReadItemsCSV(path string) ([]model.CanonicalItem, error) {
	header, rows, err := fetcher.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	items := make([]model.CanonicalItem, 0, len(rows))
	for _, row := range rows {
		it := model.CanonicalItem{
			VendorID:             field(row, "vendor_id"),
			VendorName:           field(row, "vendor_name"),
			SourceVendorName:     field(row, "source_vendor_name"),
			Source:               model.FeedSource(field(row, "source")),
			ItemID:               field(row, "item_id"),
			Title:                field(row, "title"),
			Description:          field(row, "description"),
			Category:             field(row, "category"),
			Tags:                 decodeTags(field(row, "tags")),
			PriceCents:           parseInt(field(row, "price_cents")),
			Calories:             parseFloat(field(row, "calories")),
			Protein:              parseFloat(field(row, "protein")),
			Fat:                  parseFloat(field(row, "fat")),
			Carbs:                parseFloat(field(row, "carbs")),
			CaloriesImputed:      field(row, "calories_imputed") == "true",
			CaloriesImputedModel: field(row, "calories_imputed_model") == "true",
			CaloriesSource:       model.CalorieSource(field(row, "calories_source")),
			CaloriesConfidence:   parseFloat(field(row, "calories_confidence")),
			LocalMatchScore:      parseFloat(field(row, "local_match_score")),
			LocalMatchName:       field(row, "local_match_name"),
			ModelPredCalories:    parseFloat(field(row, "model_pred_calories")),
		}
		if idx, err := strconv.Atoi(field(row, "source_index")); err == nil {
			it.SourceIndex = idx
		}
		if ts, err := time.Parse(time.RFC3339Nano, field(row, "ingest_ts")); err == nil {
			it.IngestTS = ts
		}
		items = append(items, it)
	}
	return items, nil
}

// ItemsTableExists reports whether a persisted item table is present.
func ItemsTableExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FirstExisting returns the first path that exists, or an error naming
// all the candidates. Stages use it to pick the most enriched item
// table available.
func FirstExisting(paths ...string) (string, error) {
	for _, p := range paths {
		if ItemsTableExists(p) {
			return p, nil
		}
	}
	return "", eris.Errorf("export: none of %v exist", paths)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int64 {
	if s == "" {
		return nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &i
}

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
