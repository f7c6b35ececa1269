package model

// PriceBucket is the categorical price tier of an item, derived from a
// fixed minor-unit threshold table.
type PriceBucket string

const (
	PriceBucketCheap     PriceBucket = "cheap"     // < 100
	PriceBucketMedium    PriceBucket = "medium"    // 100..299
	PriceBucketExpensive PriceBucket = "expensive" // >= 300
	PriceBucketUnknown   PriceBucket = "unknown"   // price unparseable
)

// VendorAggregate is one row of the per-vendor statistics table. Mean,
// median, min, max and stddev fields are nil when no item contributed a
// value; sum fields are 0 in the same situation.
type VendorAggregate struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`

	ItemCount               int     `json:"item_count"`
	ItemsWithNutritionCount int     `json:"items_with_nutrition_count"`
	PercentWithNutrition    float64 `json:"percent_with_nutrition"`

	AvgCalories    *float64 `json:"avg_calories"`
	MedianCalories *float64 `json:"median_calories"`
	MinCalories    *float64 `json:"min_calories"`
	MaxCalories    *float64 `json:"max_calories"`

	SumProtein float64  `json:"sum_protein"`
	AvgProtein *float64 `json:"avg_protein"`

	PriceAvg    *float64 `json:"price_avg"`
	PriceMedian *float64 `json:"price_median"`
	PriceStddev *float64 `json:"price_stddev"`

	CheapPct     float64 `json:"cheap_pct"`
	MediumPct    float64 `json:"medium_pct"`
	ExpensivePct float64 `json:"expensive_pct"`

	MissingNutritionFlag bool `json:"missing_nutrition_flag"`
}

// AggregateColumns is the fixed column set of the vendor aggregate table.
var AggregateColumns = []string{
	"vendor_id",
	"vendor_name",
	"item_count",
	"items_with_nutrition_count",
	"percent_with_nutrition",
	"avg_calories",
	"median_calories",
	"min_calories",
	"max_calories",
	"sum_protein",
	"avg_protein",
	"price_avg",
	"price_median",
	"price_stddev",
	"cheap_pct",
	"medium_pct",
	"expensive_pct",
	"missing_nutrition_flag",
}

// ReferenceEntry is one record of the reference nutrition corpus after
// name normalization and calorie extraction.
type ReferenceEntry struct {
	Name     string         `json:"name"`
	Calories *float64       `json:"calories"`
	Raw      map[string]any `json:"raw,omitempty"`
}
