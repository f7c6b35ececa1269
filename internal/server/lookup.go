package server

import (
	"net/http"
	"strings"
)

// lookupResponse is the tiered nutrition lookup result. Tier 1 is the
// vendor feed itself, tier 2 the reference corpus, tier 0 nothing.
type lookupResponse struct {
	Found  bool           `json:"found"`
	Tier   int            `json:"tier"`
	Source string         `json:"source,omitempty"`
	Macros map[string]any `json:"macros"`
}

func (s *Server) handleNutritionLookup(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	// Tier 1: the vendor feed's own nutrition objects.
	for _, vendor := range s.loadRecords(s.vendorFeedPath) {
		items, _ := vendor["items"].([]any)
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			title, _ := item["title"].(string)
			if title == "" || !strings.Contains(strings.ToLower(title), q) {
				continue
			}
			macros, _ := item["nutrition"].(map[string]any)
			vendorName, _ := vendor["vendorName"].(string)
			writeJSON(w, http.StatusOK, lookupResponse{
				Found:  true,
				Tier:   1,
				Source: "vendor:" + vendorName,
				Macros: map[string]any{
					"kcal":      macros["calories"],
					"protein_g": macros["protein"],
					"carbs_g":   macros["carbs"],
					"fat_g":     macros["fat"],
				},
			})
			return
		}
	}

	// Tier 2: the reference nutrition corpus.
	for _, rec := range s.loadRecords(s.corpusPath) {
		name, _ := rec["name"].(string)
		if name == "" || !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		writeJSON(w, http.StatusOK, lookupResponse{
			Found:  true,
			Tier:   2,
			Source: "local_nutrition_db",
			Macros: map[string]any{
				"kcal":      rec["calories"],
				"protein_g": rec["protein_g"],
				"carbs_g":   rec["carbs_g"],
				"fat_g":     rec["fat_g"],
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{Found: false, Tier: 0, Macros: map[string]any{}})
}
