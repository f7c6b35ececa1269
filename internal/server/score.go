package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
)

// scoreRequest is the rule-based scoring input: the diner's vitals, a
// candidate item, and an optional upstream model score.
type scoreRequest struct {
	Vitals   scoreVitals `json:"vitals"`
	Item     scoreItem   `json:"item"`
	LLMScore *float64    `json:"llmScore"`
}

type scoreVitals struct {
	BPSystolic          float64       `json:"bpSystolic"`
	BPDiastolic         float64       `json:"bpDiastolic"`
	CaloriesBurnedToday float64       `json:"calories_burned_today"`
	Analysis            scoreAnalysis `json:"analysis"`
}

type scoreAnalysis struct {
	ActivityLevel string `json:"activityLevel"`
}

type scoreItem struct {
	Tags   []string       `json:"tags"`
	Macros map[string]any `json:"macros"`
}

type scoreResponse struct {
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
	LLMScore float64  `json:"llmScore"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tags := make(map[string]bool, len(req.Item.Tags))
	for _, t := range req.Item.Tags {
		tags[strings.ToLower(t)] = true
	}
	macro := func(keys ...string) float64 {
		for _, k := range keys {
			if v, ok := req.Item.Macros[k].(float64); ok {
				return v
			}
		}
		return 0
	}

	reasons := []string{}
	score := 0.0

	if req.Vitals.BPSystolic >= 130 || req.Vitals.BPDiastolic >= 80 {
		if tags["low-sodium"] {
			score += 12
			reasons = append(reasons, "low-sodium fits elevated BP")
		}
		if tags["high-sodium"] {
			score -= 8
			reasons = append(reasons, "high-sodium not ideal for BP")
		}
	}

	if req.Vitals.CaloriesBurnedToday > 400 {
		if tags["high-protein"] || tags["high-protein-snack"] || macro("protein_g") >= 12 {
			score += 10
			reasons = append(reasons, "supports recovery after high activity")
		} else {
			score++
			reasons = append(reasons, "activity suggests slightly higher needs")
		}
	}

	if strings.ToLower(req.Vitals.Analysis.ActivityLevel) == "low" {
		if tags["light-clean"] || tags["low-calorie"] {
			score += 8
			reasons = append(reasons, "light meal suits low activity")
		} else {
			score -= 3
			reasons = append(reasons, "may be heavy for low activity")
		}
	}

	if macro("protein_g", "protein") >= 15 {
		score += 4
		reasons = append(reasons, "high protein content")
	}
	if kcal := macro("kcal", "calories"); kcal > 0 && kcal <= 200 {
		score += 3
		reasons = append(reasons, "low calorie per serving")
	}

	// Tag popularity prior: unseen tags score (0+1)/(0+2).
	for _, t := range req.Item.Tags {
		st := s.tagStats[strings.ToLower(t)]
		score += float64(st.Success+1) / float64(st.Shown+2) * 1.5
	}

	llm := 0.0
	if req.LLMScore != nil {
		llm = *req.LLMScore
		score += llm * 2
		reasons = append(reasons, "llm score applied")
	}

	score = math.Max(-20, math.Min(100, score))
	writeJSON(w, http.StatusOK, scoreResponse{
		Score:    math.Round(score*100) / 100,
		Reasons:  reasons,
		LLMScore: llm,
	})
}
