// Package textreg implements the last-resort calorie imputation tier: a
// TF-IDF bag-of-words representation of item text feeding a ridge
// regression. Training is offline and seeded; application is a pure
// function of the persisted artifacts.
package textreg

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer defaults matching the training contract: unigrams+bigrams,
// vocabulary capped at 10k terms.
const (
	DefaultNgramMin    = 1
	DefaultNgramMax    = 2
	DefaultMaxFeatures = 10000
)

// tokens of two or more word characters
var tokenPattern = regexp.MustCompile(`\w\w+`)

// Vectorizer maps text to L2-normalized TF-IDF feature vectors. The
// exported fields are the persisted learned state; the vocabulary
// mapping and IDF weights are what must round-trip between training and
// application.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramMin    int            `json:"ngram_min"`
	NgramMax    int            `json:"ngram_max"`
	MaxFeatures int            `json:"max_features"`
}

// NewVectorizer returns an unfitted vectorizer with default settings.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		NgramMin:    DefaultNgramMin,
		NgramMax:    DefaultNgramMax,
		MaxFeatures: DefaultMaxFeatures,
	}
}

// SparseVector is one document's feature weights keyed by vocabulary index.
type SparseVector map[int]float64

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

func (v *Vectorizer) terms(doc string) []string {
	tokens := tokenize(doc)
	var out []string
	for n := v.NgramMin; n <= v.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// Fit learns the vocabulary and IDF weights from the corpus. When the
// corpus yields more distinct terms than MaxFeatures, the most frequent
// terms win (ties broken lexicographically so fitting is deterministic).
func (v *Vectorizer) Fit(docs []string) {
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.terms(doc) {
			termCount[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(termCount))
	for term := range termCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termCount[terms[i]] != termCount[terms[j]] {
			return termCount[terms[i]] > termCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	// Vocabulary indices are assigned in lexicographic order of the
	// retained terms so the mapping is stable across runs.
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// smoothed idf
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
}

// Transform converts documents into L2-normalized TF-IDF vectors using
// the fitted vocabulary. Unknown terms are dropped.
func (v *Vectorizer) Transform(docs []string) []SparseVector {
	rows := make([]SparseVector, len(docs))
	for i, doc := range docs {
		row := make(SparseVector)
		for _, term := range v.terms(doc) {
			if idx, ok := v.Vocabulary[term]; ok {
				row[idx] += v.IDF[idx]
			}
		}
		var norm float64
		for _, w := range row {
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range row {
				row[idx] /= norm
			}
		}
		rows[i] = row
	}
	return rows
}

// NumFeatures returns the fitted vocabulary size.
func (v *Vectorizer) NumFeatures() int { return len(v.Vocabulary) }

// BuildText assembles the model input text for one item: title, vendor
// name and description (when present), space-joined. Training and
// application must agree on this representation.
func BuildText(title, vendorName, description string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{title, vendorName, description} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}
