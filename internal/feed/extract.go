package feed

import (
	"sort"
	"strconv"
	"strings"
)

// ParseFloat is the single parse-or-null coercion utility for the
// normalization paths. It accepts whatever a decoded JSON record may
// hold (float64, int, numeric string) and returns nil for anything it
// cannot read as a number. It never fails.
func ParseFloat(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case bool:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ParsePriceCents coerces a raw price value to integer minor units by
// float truncation. Empty or unparseable input yields nil, never zero:
// a missing price and a free item are different facts.
func ParsePriceCents(v any) *int64 {
	f := ParseFloat(v)
	if f == nil {
		return nil
	}
	p := int64(*f)
	return &p
}

// Macros holds the best-effort nutrition reading extracted from one raw
// item record. Each field is independently nullable.
type Macros struct {
	Calories *float64
	Protein  *float64
	Fat      *float64
	Carbs    *float64
}

// Alias tables for the macro fields, evaluated in priority order. Kept
// as data so the lookup rules are testable in isolation.
var (
	calorieAliases = []string{"calories", "cal", "energy", "kcal"}
	proteinAliases = []string{"protein", "prot"}
	fatAliases     = []string{"fat"}
	carbAliases    = []string{"carbs", "carbohydrates"}

	// Nested containers holding per-item macros, checked first.
	macroContainers = []string{"nutrition", "macros", "macro"}

	// OpenFoodFacts-style nutrient containers, checked second.
	nutrientContainers = []string{"nutriments", "nutrients"}

	// Exact calorie keys seen in nutrient containers before falling
	// back to any key containing "kcal" or "energy".
	nutrientCalorieKeys = []string{
		"energy-kcal_serving", "energy-kcal", "energy-kcal_100g", "energy_100g", "kcal",
	}
)

// ExtractMacros pulls calorie/protein/fat/carb readings out of an
// arbitrary item record. Lookup order per field, first non-nil wins:
// nested macro containers, nutrient containers, top-level keys. This
// never fails; it degrades to an empty Macros.
func ExtractMacros(rec map[string]any) Macros {
	var m Macros
	for _, container := range macroContainers {
		nested, ok := rec[container].(map[string]any)
		if !ok {
			continue
		}
		fillMacros(&m, nested)
	}
	for _, container := range nutrientContainers {
		nested, ok := rec[container].(map[string]any)
		if !ok {
			continue
		}
		if m.Calories == nil {
			m.Calories = nutrientCalories(nested)
		}
		fillMacros(&m, nested)
	}
	fillMacros(&m, rec)
	return m
}

func fillMacros(m *Macros, src map[string]any) {
	if m.Calories == nil {
		m.Calories = firstNumeric(src, calorieAliases)
	}
	if m.Protein == nil {
		m.Protein = firstNumeric(src, proteinAliases)
	}
	if m.Fat == nil {
		m.Fat = firstNumeric(src, fatAliases)
	}
	if m.Carbs == nil {
		m.Carbs = firstNumeric(src, carbAliases)
	}
}

func firstNumeric(src map[string]any, aliases []string) *float64 {
	for _, k := range aliases {
		if v, ok := src[k]; ok {
			if f := ParseFloat(v); f != nil {
				return f
			}
		}
	}
	return nil
}

// nutrientCalories reads a calorie value out of a nutriments/nutrients
// object: exact keys first, then any key whose name contains "kcal" or
// "energy".
func nutrientCalories(src map[string]any) *float64 {
	if f := firstNumeric(src, nutrientCalorieKeys); f != nil {
		return f
	}
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic pick across runs
	for _, k := range keys {
		if strings.Contains(k, "kcal") || strings.Contains(k, "energy") {
			if f := ParseFloat(src[k]); f != nil {
				return f
			}
		}
	}
	return nil
}

// referenceCalorieKeys are the top-level calorie keys recognized in
// reference nutrition corpus records.
var referenceCalorieKeys = []string{
	"calories", "energy_kcal", "energy_kcal_100g", "calorie", "energy", "kcal",
}

// ExtractReferenceCalories reads a calorie value from a reference
// corpus record: top-level keys, then macros.kcal, then an
// OpenFoodFacts-style nutrient container.
func ExtractReferenceCalories(rec map[string]any) *float64 {
	if f := firstNumeric(rec, referenceCalorieKeys); f != nil {
		return f
	}
	for _, container := range []string{"macros", "macro"} {
		if nested, ok := rec[container].(map[string]any); ok {
			if f := firstNumeric(nested, []string{"kcal"}); f != nil {
				return f
			}
		}
	}
	for _, container := range nutrientContainers {
		if nested, ok := rec[container].(map[string]any); ok {
			if f := nutrientCalories(nested); f != nil {
				return f
			}
		}
	}
	return nil
}
