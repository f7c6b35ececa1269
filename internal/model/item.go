package model

import "time"

// FeedSource identifies which raw feed produced a canonical item.
type FeedSource string

const (
	FeedSourceVendorMenus  FeedSource = "vendor_menus"
	FeedSourcePartnerMenus FeedSource = "partner_menus"
)

// CalorieSource identifies the imputation tier that produced an item's
// calorie value. Empty until an imputation stage fills the field.
type CalorieSource string

const (
	CalorieSourceOriginal       CalorieSource = "original"
	CalorieSourceLocalNutrition CalorieSource = "local_indian_nutrition"
	CalorieSourceModel          CalorieSource = "model_regressor"
)

// CanonicalItem is one normalized menu-item row with a unified schema
// across all source feeds. Nullable columns are pointers; nil means the
// source never provided a usable value, which downstream aggregation
// must keep distinct from zero.
type CanonicalItem struct {
	VendorID         string     `json:"vendor_id"`
	VendorName       string     `json:"vendor_name"`
	SourceVendorName string     `json:"source_vendor_name"`
	Source           FeedSource `json:"source"`
	SourceIndex      int        `json:"source_index"`
	ItemID           string     `json:"item_id"`

	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	PriceCents *int64   `json:"price_cents"`
	Calories   *float64 `json:"calories"`
	Protein    *float64 `json:"protein"`
	Fat        *float64 `json:"fat"`
	Carbs      *float64 `json:"carbs"`

	CaloriesImputed      bool          `json:"calories_imputed"`
	CaloriesImputedModel bool          `json:"calories_imputed_model"`
	CaloriesSource       CalorieSource `json:"calories_source,omitempty"`
	CaloriesConfidence   *float64      `json:"calories_confidence"`
	LocalMatchScore      *float64      `json:"local_match_score"`
	LocalMatchName       string        `json:"local_match_name,omitempty"`
	ModelPredCalories    *float64      `json:"model_pred_calories"`

	IngestTS time.Time `json:"ingest_ts"`
}

// ItemColumns is the fixed column superset of the canonical item table.
// Every tabular artifact carries all of these columns even when a run's
// sources never populate some of them.
var ItemColumns = []string{
	"vendor_id",
	"vendor_name",
	"source_vendor_name",
	"source",
	"source_index",
	"item_id",
	"title",
	"description",
	"category",
	"tags",
	"price_cents",
	"calories",
	"protein",
	"fat",
	"carbs",
	"calories_imputed",
	"calories_imputed_model",
	"calories_source",
	"calories_confidence",
	"local_match_score",
	"local_match_name",
	"model_pred_calories",
	"ingest_ts",
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
