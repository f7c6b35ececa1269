// Package impute fills missing calorie values in the canonical item
// table. Two tiers run in order: a fuzzy lookup against the reference
// nutrition corpus, then a text-regression prediction for rows the
// fuzzy tier left null. Each tier records its own provenance and
// confidence and never touches a row an earlier tier already filled.
package impute

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/feed"
	"github.com/healthyplate/menu-cli/internal/model"
)

// Weighted-token similarity thresholds on the 0-100 scale.
const (
	HighThreshold = 90
	MedThreshold  = 75
)

// Confidence tiers assigned by the fuzzy matcher.
const (
	highConfidence = 0.9
	medConfidence  = 0.6
)

// FuzzyResult reports one fuzzy imputation run.
type FuzzyResult struct {
	Imputed  int
	AvgScore float64
}

// FuzzyOptions tune the fuzzy stage. Zero thresholds fall back to the
// package defaults; an empty Vendors list means no vendor filter.
type FuzzyOptions struct {
	MedThreshold  int
	HighThreshold int
	Vendors       []string
}

// ApplyFuzzy imputes calories for items still missing them by
// approximate title match against the reference corpus. Matches are
// accepted at the medium threshold or above; each item's decision is
// greedy and independent, so a reference entry can serve any number of
// items. The optional vendor filter restricts imputation to the named
// vendors (compared against normalized names). Items mutate in place.
func ApplyFuzzy(items []model.CanonicalItem, entries []model.ReferenceEntry, opts FuzzyOptions) FuzzyResult {
	var res FuzzyResult
	if len(entries) == 0 {
		return res
	}
	if opts.MedThreshold <= 0 {
		opts.MedThreshold = MedThreshold
	}
	if opts.HighThreshold <= 0 {
		opts.HighThreshold = HighThreshold
	}

	filter := make(map[string]struct{}, len(opts.Vendors))
	for _, v := range opts.Vendors {
		filter[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	if _, ok := filter[""]; ok {
		delete(filter, "")
	}

	var totalScore float64
	for i := range items {
		it := &items[i]
		if it.Calories != nil {
			continue // original value or an earlier stage wins
		}
		if len(filter) > 0 {
			if _, ok := filter[strings.ToLower(it.VendorName)]; !ok {
				continue
			}
		}
		query := feed.NormalizeText(it.Title)
		if query == "" {
			query = feed.NormalizeText(it.ItemID)
		}
		if query == "" {
			continue
		}

		name, score, calories := bestMatch(query, entries)
		if score < opts.MedThreshold || calories == nil {
			// Below threshold is not an error, just "no imputation".
			continue
		}

		cal := *calories
		conf := medConfidence
		if score >= opts.HighThreshold {
			conf = highConfidence
		}
		matchScore := float64(score)
		it.Calories = &cal
		it.CaloriesImputed = true
		it.CaloriesSource = model.CalorieSourceLocalNutrition
		it.CaloriesConfidence = &conf
		it.LocalMatchScore = &matchScore
		it.LocalMatchName = name

		res.Imputed++
		totalScore += matchScore
	}
	if res.Imputed > 0 {
		res.AvgScore = totalScore / float64(res.Imputed)
	}
	zap.L().Info("impute: fuzzy stage done",
		zap.Int("imputed", res.Imputed),
		zap.Float64("avg_score", res.AvgScore),
	)
	return res
}

// bestMatch scans the corpus for the highest weighted-token similarity.
// Ties keep the earliest entry so runs are deterministic.
func bestMatch(query string, entries []model.ReferenceEntry) (string, int, *float64) {
	bestScore := -1
	var bestName string
	var bestCal *float64
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		score := fuzzy.WRatio(query, e.Name)
		if score > bestScore {
			bestScore = score
			bestName = e.Name
			bestCal = e.Calories
		}
	}
	return bestName, bestScore, bestCal
}

// MissingCalories counts rows with a null calorie value.
func MissingCalories(items []model.CanonicalItem) int {
	var n int
	for _, it := range items {
		if it.Calories == nil {
			n++
		}
	}
	return n
}
