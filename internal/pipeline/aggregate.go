package pipeline

import (
	"math"
	"sort"

	"github.com/healthyplate/menu-cli/internal/model"
)

// Price bucket thresholds in minor currency units.
const (
	cheapUpperBound  = 100
	mediumUpperBound = 300
)

// BucketPrice assigns the categorical price tier for one item. A nil
// price is "unknown": it still counts toward the group denominator but
// toward none of the cheap/medium/expensive buckets.
func BucketPrice(priceCents *int64) model.PriceBucket {
	switch {
	case priceCents == nil:
		return model.PriceBucketUnknown
	case *priceCents < cheapUpperBound:
		return model.PriceBucketCheap
	case *priceCents < mediumUpperBound:
		return model.PriceBucketMedium
	default:
		return model.PriceBucketExpensive
	}
}

// ComputeVendorAggregates groups the canonical item table by vendor
// identity and computes the per-vendor statistics. Every statistic is
// computed over non-null inputs only; empty-after-filtering mean/median
// style fields stay nil while sum fields are 0. Output order is stable
// (vendor name, then id).
func ComputeVendorAggregates(items []model.CanonicalItem) []model.VendorAggregate {
	groups := make(map[string][]model.CanonicalItem)
	for _, it := range items {
		groups[it.VendorID] = append(groups[it.VendorID], it)
	}

	aggs := make([]model.VendorAggregate, 0, len(groups))
	for _, group := range groups {
		aggs = append(aggs, aggregateGroup(group))
	}
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].VendorName != aggs[j].VendorName {
			return aggs[i].VendorName < aggs[j].VendorName
		}
		return aggs[i].VendorID < aggs[j].VendorID
	})
	return aggs
}

func aggregateGroup(group []model.CanonicalItem) model.VendorAggregate {
	agg := model.VendorAggregate{
		VendorID:   group[0].VendorID,
		VendorName: group[0].VendorName,
		ItemCount:  len(group),
	}

	var calories, proteins, prices []float64
	var cheap, medium, expensive int
	for _, it := range group {
		if it.Calories != nil {
			calories = append(calories, *it.Calories)
		}
		if it.Protein != nil {
			proteins = append(proteins, *it.Protein)
		}
		if it.PriceCents != nil {
			prices = append(prices, float64(*it.PriceCents))
		}
		switch BucketPrice(it.PriceCents) {
		case model.PriceBucketCheap:
			cheap++
		case model.PriceBucketMedium:
			medium++
		case model.PriceBucketExpensive:
			expensive++
		}
	}

	total := float64(len(group))
	agg.ItemsWithNutritionCount = len(calories)
	agg.PercentWithNutrition = round2(100 * float64(len(calories)) / total)
	agg.AvgCalories = mean(calories)
	agg.MedianCalories = median(calories)
	agg.MinCalories = minOf(calories)
	agg.MaxCalories = maxOf(calories)
	agg.SumProtein = sum(proteins)
	agg.AvgProtein = mean(proteins)
	agg.PriceAvg = mean(prices)
	agg.PriceMedian = median(prices)
	agg.PriceStddev = stddevSample(prices)
	agg.CheapPct = round2(100 * float64(cheap) / total)
	agg.MediumPct = round2(100 * float64(medium) / total)
	agg.ExpensivePct = round2(100 * float64(expensive) / total)
	agg.MissingNutritionFlag = len(calories) == 0
	return agg
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := sum(vals) / float64(len(vals))
	return &m
}

// median of an even-sized set is the mean of the two middle values.
func median(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

func minOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Min(m, v)
	}
	return &m
}

func maxOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Max(m, v)
	}
	return &m
}

// stddevSample uses the sample (n-1) denominator. A single observation
// has no sample deviation and yields nil.
func stddevSample(vals []float64) *float64 {
	if len(vals) < 2 {
		return nil
	}
	m := *mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(vals)-1))
	return &sd
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
