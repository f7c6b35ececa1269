package impute

import (
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/model"
	"github.com/healthyplate/menu-cli/internal/textreg"
)

// modelConfidence is the fixed heuristic confidence of the regression
// tier; it is not derived from per-prediction uncertainty.
const modelConfidence = 0.7

// ApplyModel predicts calories for rows still null after the fuzzy
// tier and fills them in place. Rows any earlier tier already filled
// are never candidates, so the stage can never overwrite them.
func ApplyModel(items []model.CanonicalItem, m *textreg.Model) int {
	var candidates []int
	var texts []string
	for i := range items {
		if items[i].Calories != nil {
			continue
		}
		candidates = append(candidates, i)
		texts = append(texts, textreg.BuildText(items[i].Title, items[i].VendorName, items[i].Description))
	}
	if len(candidates) == 0 {
		zap.L().Info("impute: model stage has no rows to impute")
		return 0
	}

	preds := m.Predict(texts)
	for j, i := range candidates {
		pred := preds[j]
		conf := modelConfidence
		it := &items[i]
		it.Calories = &pred
		it.ModelPredCalories = &pred
		it.CaloriesImputedModel = true
		it.CaloriesSource = model.CalorieSourceModel
		it.CaloriesConfidence = &conf
	}
	zap.L().Info("impute: model stage done", zap.Int("imputed", len(candidates)))
	return len(candidates)
}
